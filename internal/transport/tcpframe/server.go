// Package tcpframe carries UDS frames over plain TCP connections. Each
// request and each response travels as a CBOR byte string with a definite
// length, so the stream needs no extra delimiter and a suppressed response
// is simply a zero-length byte string.
package tcpframe

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dtn7/cboring"

	"github.com/tbrandt/udssim/internal/transport"
)

// Server is a TCP frame transport which accepts requests from multiple
// connections and answers each one on the connection it arrived on.
type Server struct {
	listenAddress string
	processor     transport.Processor

	stopSyn chan struct{}
	stopAck chan struct{}
}

// NewServer creates a new Server for the given listen address, answering
// requests through the given Processor.
func NewServer(listenAddress string, processor transport.Processor) *Server {
	return &Server{
		listenAddress: listenAddress,
		processor:     processor,
		stopSyn:       make(chan struct{}),
		stopAck:       make(chan struct{}),
	}
}

// Start starts this Server and might return an error and a boolean
// indicating if another Start should be tried later.
func (serv *Server) Start() (error, bool) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", serv.listenAddress)
	if err != nil {
		return err, false
	}

	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return err, true
	}

	go func(ln *net.TCPListener) {
		for {
			select {
			case <-serv.stopSyn:
				_ = ln.Close()
				close(serv.stopAck)

				return

			default:
				_ = ln.SetDeadline(time.Now().Add(50 * time.Millisecond))
				if conn, err := ln.Accept(); err == nil {
					go serv.handleConn(conn)
				}
			}
		}
	}(ln)

	return nil, true
}

func (serv *Server) handleConn(conn net.Conn) {
	defer func() {
		_ = conn.Close()

		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"transport": serv,
				"conn":      conn.RemoteAddr(),
				"error":     r,
			}).Warn("TCP frame handler failed")
		}
	}()

	log.WithFields(log.Fields{
		"transport": serv,
		"conn":      conn.RemoteAddr(),
	}).Debug("TCP frame connection was established")

	reader := bufio.NewReader(conn)
	for {
		request, err := cboring.ReadByteString(reader)
		if err != nil {
			if err != io.EOF {
				log.WithFields(log.Fields{
					"transport": serv,
					"conn":      conn.RemoteAddr(),
					"error":     err,
				}).Warn("Reception of TCP frame failed, closing conn's handler")
			}
			return
		}

		response := serv.processor.Process(request)
		if err := cboring.WriteByteString(response, conn); err != nil {
			log.WithFields(log.Fields{
				"transport": serv,
				"conn":      conn.RemoteAddr(),
				"error":     err,
			}).Warn("Sending TCP frame response failed, closing conn's handler")
			return
		}
	}
}

// Close shuts this Server down.
func (serv *Server) Close() {
	close(serv.stopSyn)
	<-serv.stopAck
}

// Address returns this Server's unique address string.
func (serv *Server) Address() string {
	return fmt.Sprintf("tcp://%s", serv.listenAddress)
}

func (serv *Server) String() string {
	return serv.Address()
}
