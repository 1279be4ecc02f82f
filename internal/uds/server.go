// Package uds implements the UDS request dispatcher and the service
// handlers it routes to. A Server owns the ECU's data store and server
// state and exposes the single `Process(frame) []byte` entry point every
// transport adapter calls.
package uds

import (
	"crypto/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tbrandt/udssim/internal/constants"
	"github.com/tbrandt/udssim/internal/ecudata"
	"github.com/tbrandt/udssim/internal/response"
	"github.com/tbrandt/udssim/internal/serverstate"
	"github.com/tbrandt/udssim/internal/supervisor"
)

// handlerFunc is the shape of every service handler: given the full
// request frame (including its leading SID byte), it returns the full
// response frame.
type handlerFunc func(s *Server, frame []byte) []byte

// Server holds the ECU's data and state plus the SID-to-handler table. The
// zero value is not usable; construct with NewServer.
type Server struct {
	Store *ecudata.Store
	State *serverstate.State

	handlers map[constants.SID]handlerFunc
	sv       *supervisor.Supervisor
}

// NewServer builds a Server with a fresh data store and state, wired with
// a cryptographic seed source, and the full handler table registered.
func NewServer() *Server {
	return NewServerWithSeedSource(cryptoSeedSource)
}

// NewServerWithSeedSource builds a Server using a caller-supplied seed
// source, so tests can pin the seed instead of drawing from crypto/rand.
func NewServerWithSeedSource(seedSource serverstate.SeedSource) *Server {
	srv := &Server{
		Store: ecudata.NewStore(),
		State: serverstate.New(seedSource),
	}
	srv.handlers = map[constants.SID]handlerFunc{
		constants.DiagnosticSessionControl:        handleDiagnosticSessionControl,
		constants.ECUReset:                        handleECUReset,
		constants.SecurityAccess:                  handleSecurityAccess,
		constants.CommunicationControl:            handleCommunicationControl,
		constants.TesterPresent:                   handleTesterPresent,
		constants.ReadDataByIdentifier:            handleReadDataByIdentifier,
		constants.WriteDataByIdentifier:           handleWriteDataByIdentifier,
		constants.ReadMemoryByAddress:             handleReadMemoryByAddress,
		constants.WriteMemoryByAddress:            handleWriteMemoryByAddress,
		constants.ClearDiagnosticInformation:      handleClearDiagnosticInformation,
		constants.ReadDTCInformation:              handleReadDTCInformation,
		constants.InputOutputControlByIdentifier:  handleInputOutputControlByIdentifier,
		constants.RoutineControl:                  handleRoutineControl,
		constants.ControlDTCSetting:               handleControlDTCSetting,
		constants.ReadScalingDataByIdentifier:     handleUnsupported,
		constants.ReadDataByPeriodicIdentifier:    handleUnsupported,
		constants.DynamicallyDefineDataIdentifier: handleUnsupported,
		constants.RequestDownload:                 handleUnsupported,
		constants.RequestUpload:                   handleUnsupported,
		constants.TransferData:                    handleUnsupported,
		constants.RequestTransferExit:             handleUnsupported,
		constants.RequestFileTransfer:             handleUnsupported,
		constants.AccessTimingParameter:           handleUnsupported,
		constants.SecuredDataTransmission:         handleUnsupported,
		constants.ResponseOnEvent:                 handleUnsupported,
		constants.LinkControl:                     handleUnsupported,
	}
	return srv
}

// StartSupervisor spawns the session-timeout supervisor against this
// server's state. Starting twice without an intervening StopSupervisor is
// a programming error.
func (s *Server) StartSupervisor(timeout time.Duration) {
	if s.sv != nil {
		log.Warn("uds: supervisor is already running")
		return
	}
	s.sv = supervisor.New(s.State, timeout)
}

// StopSupervisor halts the supervisor and waits for it to exit. A no-op if
// none is running.
func (s *Server) StopSupervisor() {
	if s.sv == nil {
		return
	}
	s.sv.Stop()
	s.sv = nil
}

func cryptoSeedSource() [4]byte {
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		log.WithError(err).Warn("uds: crypto/rand read failed, returning zero seed")
	}
	return seed
}

// Process is the server's single entry point: it decodes a request frame,
// dispatches it to the matching service handler, and returns the response
// frame. It never panics across the transport boundary: an empty frame or
// an unregistered SID both produce a well-formed negative response.
func (s *Server) Process(frame []byte) []byte {
	if len(frame) == 0 {
		log.Debug("uds: empty request frame")
		return response.Negative(0x00, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	sid := constants.SID(frame[0])
	handler, ok := s.handlers[sid]
	if !ok {
		log.WithField("sid", sid).Debug("uds: unregistered service id")
		return response.Negative(sid, constants.ServiceNotSupported)
	}

	return handler(s, frame)
}
