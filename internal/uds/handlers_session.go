package uds

import (
	"github.com/tbrandt/udssim/internal/constants"
	"github.com/tbrandt/udssim/internal/response"
)

// handleDiagnosticSessionControl implements SID 0x10.
func handleDiagnosticSessionControl(s *Server, frame []byte) []byte {
	if len(frame) != 2 {
		return response.Negative(constants.DiagnosticSessionControl, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	session := constants.SessionType(frame[1])
	if !session.Valid() {
		return response.Negative(constants.DiagnosticSessionControl, constants.SubFunctionNotSupported)
	}

	s.State.SetSession(session)
	return response.Positive(constants.DiagnosticSessionControl, byte(session), 0x00, 0x32, 0x13, 0x88)
}

// handleECUReset implements SID 0x11.
func handleECUReset(s *Server, frame []byte) []byte {
	if len(frame) != 2 {
		return response.Negative(constants.ECUReset, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	resetType := constants.ResetType(frame[1])
	if !resetType.Valid() {
		return response.Negative(constants.ECUReset, constants.SubFunctionNotSupported)
	}

	if s.State.Session() == constants.ProgrammingSession && resetType != constants.HardReset {
		return response.Negative(constants.ECUReset, constants.RequestOutOfRange)
	}

	s.State.SetSession(constants.DefaultSession)
	s.State.ClearSecurity()
	return response.Positive(constants.ECUReset, byte(resetType))
}
