//go:build linux
// +build linux

package tcpframe

import (
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// On Linux the client additionally caps TCP_USER_TIMEOUT at the response
// budget: if the simulator process dies mid-request, the written frame
// stays unacknowledged and the kernel would otherwise retransmit for
// minutes before surfacing an error. Keepalive probing stays at the system
// defaults, since a desk-side link does not silently vanish while idle the
// way a mobile radio link does.

// dialControl is the net.Dialer's Control function to set the socket option.
func dialControl(_, _ string, rawConn syscall.RawConn) (err error) {
	userTimeout := int(responseBudget / time.Millisecond)

	ctrlErr := rawConn.Control(func(fd uintptr) {
		err = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, userTimeout)
	})
	if ctrlErr != nil {
		return ctrlErr
	}

	return
}

// dial a new TCP connection with the socket option set.
func dial(address string) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout: dialTimeout,
		Control: dialControl,
	}
	return dialer.Dial("tcp", address)
}
