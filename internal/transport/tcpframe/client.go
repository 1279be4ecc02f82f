package tcpframe

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dtn7/cboring"
)

// dialTimeout bounds connection establishment. The simulator is a local or
// LAN peer; anything slower than this is down.
const dialTimeout = 2 * time.Second

// responseBudget mirrors the P2* response budget the server advertises in
// its diagnostic session control responses. A request without an answer
// inside this window is treated as failed.
const responseBudget = 5 * time.Second

// Client connects to a tcpframe Server and exchanges one request frame for
// one response frame at a time. Requests are serialized through a mutex, so
// a Client may be shared between goroutines.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	mutex  sync.Mutex
}

// Dial connects a new Client to the given address.
func Dial(address string) (*Client, error) {
	conn, err := dial(address)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// Request sends one request frame and waits for its response frame. A
// suppressed response arrives as an empty frame. The exchange must finish
// within the response budget.
func (client *Client) Request(frame []byte) (response []byte, err error) {
	defer func() {
		if r := recover(); r != nil && err == nil {
			err = fmt.Errorf("tcpframe client request: %v", r)
		}
	}()

	client.mutex.Lock()
	defer client.mutex.Unlock()

	if err = client.conn.SetDeadline(time.Now().Add(responseBudget)); err != nil {
		return
	}

	if err = cboring.WriteByteString(frame, client.conn); err != nil {
		return
	}
	return cboring.ReadByteString(client.reader)
}

// Close closes the underlying connection.
func (client *Client) Close() error {
	return client.conn.Close()
}
