package rpcio

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// Tracer receives one diagnostic line per reportable event.
// *trace.Tracer satisfies it.
type Tracer interface {
	Tracef(prefix, format string, args ...any)
}

// Channel is a connected stream socket or output descriptor that the
// transfer loops operate on. It never owns the descriptor: closing it
// is left to whoever supplied it.
type Channel struct {
	// file descriptor
	fd int
	// raw is set for descriptors managed by the Go runtime. Those are
	// non-blocking, so EAGAIN parks on the runtime poller instead of
	// failing the transfer.
	raw syscall.RawConn
	// tracer reports peer disconnection, may be nil.
	tracer Tracer
}

// NewChannel wraps a blocking descriptor handed over by accept or open
// logic.
func NewChannel(fd int) *Channel {
	return &Channel{fd: fd}
}

// ChannelOf wraps a descriptor owned by the Go runtime, such as
// *net.TCPConn, *net.UnixConn or *os.File. Deadlines set on conn apply
// to every single transfer call and end the loop with an error.
func ChannelOf(conn syscall.Conn) (*Channel, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}
	var c = &Channel{fd: -1, raw: raw}
	err = raw.Control(func(fd uintptr) {
		c.fd = int(fd)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Fd returns the underlying descriptor.
func (c *Channel) Fd() int {
	return c.fd
}

// SetTracer sets where the channel reports peer disconnection.
func (c *Channel) SetTracer(t Tracer) {
	c.tracer = t
}

// RecvAll implements the receive loop without the disconnection status.
func (c *Channel) RecvAll(b []byte) error {
	_, err := c.RecvAllStatus(b)
	return err
}

// RecvAllStatus reads exactly len(b) bytes. A zero-byte read before b is
// full means the peer closed the connection: the error wraps
// ErrPeerClosed and disconnected is true. Any other failure leaves
// disconnected false.
func (c *Channel) RecvAllStatus(b []byte) (disconnected bool, err error) {
	err = transfer(opRecv, c.fd, b, c.recv, true)
	if !IsDisconnected(err) {
		return false, err
	}
	if c.tracer != nil {
		c.tracer.Tracef("rpcio", "client fd: %d disconnected", c.fd)
	}
	return true, err
}

// SendAll writes all of b to the socket.
func (c *Channel) SendAll(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := prepareSend(c.fd); err != nil {
		return &OpError{Op: opSend, Fd: c.fd, Err: err}
	}
	return transfer(opSend, c.fd, b, c.send, false)
}

// WriteAll writes all of b to the descriptor with write(2).
func (c *Channel) WriteAll(b []byte) error {
	return transfer(opWrite, c.fd, b, c.write, false)
}

func (c *Channel) recv(p []byte) (n int, err error) {
	if c.raw == nil {
		return recv(c.fd, p)
	}
	err = c.wait(c.raw.Read, func(fd int) error {
		n, err = recv(fd, p)
		return err
	})
	return n, err
}

func (c *Channel) send(p []byte) (n int, err error) {
	if c.raw == nil {
		return send(c.fd, p)
	}
	err = c.wait(c.raw.Write, func(fd int) error {
		n, err = send(fd, p)
		return err
	})
	return n, err
}

func (c *Channel) write(p []byte) (n int, err error) {
	if c.raw == nil {
		return unix.Write(c.fd, p)
	}
	err = c.wait(c.raw.Write, func(fd int) error {
		n, err = unix.Write(fd, p)
		return err
	})
	return n, err
}

// wait runs one call through the runtime poller, retrying after the
// descriptor becomes ready whenever the call reports EAGAIN. The call's
// own error wins over the poller's.
func (c *Channel) wait(poll func(func(uintptr) bool) error, call func(fd int) error) error {
	var callErr error
	pollErr := poll(func(fd uintptr) bool {
		callErr = call(int(fd))
		return !errors.Is(callErr, unix.EAGAIN)
	})
	if callErr != nil && !errors.Is(callErr, unix.EAGAIN) {
		return callErr
	}
	return pollErr
}
