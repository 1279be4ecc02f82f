// Package wsframe carries UDS frames over a WebSocket connection. Each
// binary message holds exactly one frame; every request message is answered
// by exactly one response message on the same connection, a suppressed
// response being an empty binary message so the pairing never skews.
package wsframe

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/tbrandt/udssim/internal/transport"
)

// Server is a WebSocket frame transport.
type Server struct {
	listenAddress string
	processor     transport.Processor

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer creates a new Server for the given listen address, answering
// requests through the given Processor. The WebSocket endpoint is /ws.
func NewServer(listenAddress string, processor transport.Processor) *Server {
	serv := &Server{
		listenAddress: listenAddress,
		processor:     processor,
		upgrader:      websocket.Upgrader{},
	}

	httpMux := http.NewServeMux()
	httpMux.HandleFunc("/ws", serv.websocketHandler)

	serv.httpServer = &http.Server{
		Addr:    listenAddress,
		Handler: httpMux,
	}

	return serv
}

func (serv *Server) log() *log.Entry {
	return log.WithField("wsframe", serv.listenAddress)
}

// Start starts this Server and might return an error and a boolean
// indicating if another Start should be tried later.
func (serv *Server) Start() (error, bool) {
	errChan := make(chan error)
	go func() {
		if err := serv.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err, true

	case <-time.After(100 * time.Millisecond):
		return nil, true
	}
}

// websocketHandler will be called for each HTTP request to /ws, our
// WebSocket endpoint.
func (serv *Server) websocketHandler(rw http.ResponseWriter, r *http.Request) {
	conn, connErr := serv.upgrader.Upgrade(rw, r, nil)
	if connErr != nil {
		serv.log().WithError(connErr).Warn("Upgrading HTTP request to WebSocket errored")
		return
	}
	defer conn.Close()

	serv.log().WithField("conn", conn.RemoteAddr()).Debug("WebSocket frame connection was established")

	for {
		messageType, request, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				serv.log().WithError(err).Debug("Reading WebSocket message errored")
			}
			return
		}

		if messageType != websocket.BinaryMessage {
			serv.log().WithField("type", messageType).Debug("Ignoring non-binary WebSocket message")
			continue
		}

		response := serv.processor.Process(request)
		if err := conn.WriteMessage(websocket.BinaryMessage, response); err != nil {
			serv.log().WithError(err).Warn("Writing WebSocket message errored")
			return
		}
	}
}

// Close shuts this Server down.
func (serv *Server) Close() {
	if err := serv.httpServer.Close(); err != nil {
		serv.log().WithError(err).Warn("Closing HTTP server errored")
	}
}

// Address returns this Server's unique address string.
func (serv *Server) Address() string {
	return fmt.Sprintf("ws://%s/ws", serv.listenAddress)
}

func (serv *Server) String() string {
	return serv.Address()
}
