// Package httpframe carries UDS frames over HTTP. A request frame is POSTed
// as the raw request body to /frame and the response frame comes back as
// the raw response body. This stays bytes-in, bytes-out: no JSON, no hex,
// no human-facing rendering.
package httpframe

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tbrandt/udssim/internal/transport"
)

const contentType = "application/octet-stream"

// Server is an HTTP frame transport.
type Server struct {
	listenAddress string
	processor     transport.Processor

	httpServer *http.Server
}

// NewServer creates a new Server for the given listen address, answering
// requests through the given Processor.
func NewServer(listenAddress string, processor transport.Processor) *Server {
	serv := &Server{
		listenAddress: listenAddress,
		processor:     processor,
	}

	r := mux.NewRouter()
	r.HandleFunc("/frame", serv.handleFrame).Methods(http.MethodPost)

	serv.httpServer = &http.Server{
		Addr:    listenAddress,
		Handler: r,
	}

	return serv
}

func (serv *Server) log() *log.Entry {
	return log.WithField("httpframe", serv.listenAddress)
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

func (serv *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	request, err := io.ReadAll(r.Body)
	if err != nil {
		serv.log().WithError(err).Warn("Reading frame request body errored")
		http.Error(w, "reading request body failed", http.StatusBadRequest)
		return
	}

	response := serv.processor.Process(request)
	if len(response) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(response); err != nil {
		serv.log().WithError(err).Warn("Writing frame response errored")
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
	return fmt.Sprintf("http://%s/frame", serv.listenAddress)
}

func (serv *Server) String() string {
	return serv.Address()
}
