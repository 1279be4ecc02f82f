//go:build !linux
// +build !linux

package tcpframe

import "net"

// dial a new TCP connection for exchanging diagnostic frames. The deadline
// set per request in Client.Request covers slow responses, so the dialer
// only needs its connection timeout here.
func dial(address string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}
	return dialer.Dial("tcp", address)
}
