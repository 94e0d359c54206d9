// Package rpcio moves whole buffers over stream sockets and descriptors,
// absorbing short transfers and interrupted calls.
package rpcio

import (
	"golang.org/x/sys/unix"
)

const (
	opRecv  = "recv"
	opSend  = "send"
	opWrite = "write"
)

// transferFunc moves at most len(p) bytes in a single call.
type transferFunc func(p []byte) (n int, err error)

// transfer calls fn until all of b is moved or a terminal condition occurs.
//
// return value:
//   - nil: len(b) bytes were moved.
//   - *OpError wrapping ErrPeerClosed: fn returned 0 with no error while
//     zeroReadIsEOF is set.
//   - *OpError wrapping the errno: any other failure.
func transfer(op string, fd int, b []byte, fn transferFunc, zeroReadIsEOF bool) error {
	var done int
	for done < len(b) {
		n, err := fn(b[done:])
		if err == unix.EINTR {
			// interrupted before anything was moved
			continue
		}
		if err != nil {
			return &OpError{Op: op, Fd: fd, Transferred: done, Err: err}
		}
		if n < 0 {
			return &OpError{Op: op, Fd: fd, Transferred: done, Err: unix.EIO}
		}
		if n == 0 && zeroReadIsEOF {
			return &OpError{Op: op, Fd: fd, Transferred: done, Err: ErrPeerClosed}
		}
		done += n
	}
	return nil
}

// RecvAll reads exactly len(b) bytes from the connected stream socket fd.
func RecvAll(fd int, b []byte) error {
	return NewChannel(fd).RecvAll(b)
}

// RecvAllStatus reads exactly len(b) bytes from the connected stream
// socket fd. disconnected is true only when the peer closed the
// connection before b was filled.
func RecvAllStatus(fd int, b []byte) (disconnected bool, err error) {
	return NewChannel(fd).RecvAllStatus(b)
}

// SendAll writes all of b to the connected stream socket fd. Sending to
// a closed peer fails with EPIPE instead of raising SIGPIPE.
func SendAll(fd int, b []byte) error {
	return NewChannel(fd).SendAll(b)
}

// WriteAll writes all of b to the descriptor fd.
func WriteAll(fd int, b []byte) error {
	return NewChannel(fd).WriteAll(b)
}
