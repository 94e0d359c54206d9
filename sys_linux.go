package rpcio

import (
	"golang.org/x/sys/unix"
)

// recv issues one blocking read. On a connected stream socket this is
// recv(2) with no flags.
func recv(fd int, p []byte) (n int, err error) {
	return unix.Read(fd, p)
}

// send issues one blocking sendmsg(2) with MSG_NOSIGNAL, so a closed
// peer surfaces as EPIPE.
func send(fd int, p []byte) (n int, err error) {
	return unix.SendmsgN(fd, p, nil, nil, unix.MSG_NOSIGNAL)
}

// prepareSend is a no-op on linux, MSG_NOSIGNAL is passed per call.
func prepareSend(fd int) error {
	return nil
}
