package rpcio

import (
	"golang.org/x/sys/unix"
)

func recv(fd int, p []byte) (n int, err error) {
	return unix.Read(fd, p)
}

func send(fd int, p []byte) (n int, err error) {
	return unix.Write(fd, p)
}

// prepareSend sets SO_NOSIGPIPE, darwin has no MSG_NOSIGNAL.
func prepareSend(fd int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}
