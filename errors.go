package rpcio

import (
	"errors"
	"fmt"
)

// ErrPeerClosed is returned by the receive loop when a read returns zero
// bytes before the buffer is full.
var ErrPeerClosed = errors.New("peer closed connection")

// OpError is returned when a transfer loop stops before the whole buffer
// has been moved.
type OpError struct {
	Op string
	Fd int
	// Transferred is the number of bytes moved before the failure.
	// Always less than the requested length.
	Transferred int
	Err         error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s fd[%d] after %d bytes: %v", e.Op, e.Fd, e.Transferred, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsDisconnected reports whether err means the peer closed the connection
// in the middle of a receive.
func IsDisconnected(err error) bool {
	return errors.Is(err, ErrPeerClosed)
}
