package uds

import (
	"encoding/binary"

	"github.com/tbrandt/udssim/internal/constants"
	"github.com/tbrandt/udssim/internal/response"
)

// maxKeyAttempts is the number of wrong keys tolerated before the service
// locks out. Only an ECU reset clears the counter again.
const maxKeyAttempts = 3

// handleSecurityAccess implements SID 0x27, the seed/key state
// machine over (seed_sent, unlocked, attempts).
func handleSecurityAccess(s *Server, frame []byte) []byte {
	if len(frame) < 2 {
		return response.Negative(constants.SecurityAccess, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	session := s.State.Session()
	if session != constants.ProgrammingSession && session != constants.ExtendedSession {
		return response.Negative(constants.SecurityAccess, constants.ConditionsNotCorrect)
	}

	sub := constants.SecuritySubFunction(frame[1])
	if !sub.IsSeedRequest() && !sub.IsSendKey() {
		return response.Negative(constants.SecurityAccess, constants.SubFunctionNotSupported)
	}

	sec := s.State.Security()
	switch {
	case sec.Attempts >= maxKeyAttempts:
		return response.Negative(constants.SecurityAccess, constants.ExceededNumberOfAttempts)
	case sec.Unlocked:
		return response.Negative(constants.SecurityAccess, constants.RequestSequenceError)
	case sub.IsSendKey() && !sec.SeedSent:
		return response.Negative(constants.SecurityAccess, constants.RequestSequenceError)
	case sub.IsSeedRequest() && sec.SeedSent:
		return response.Negative(constants.SecurityAccess, constants.RequestSequenceError)
	}

	if sub.IsSeedRequest() {
		seed := s.State.RequestSeed()
		return response.Positive(constants.SecurityAccess, frame[1], seed[0], seed[1], seed[2], seed[3])
	}

	if len(frame) != 6 {
		return response.Negative(constants.SecurityAccess, constants.IncorrectMessageLengthOrInvalidFormat)
	}
	key := binary.BigEndian.Uint32(frame[2:6])
	if !s.State.TrySendKey(key) {
		return response.Negative(constants.SecurityAccess, constants.SecurityAccessDenied)
	}
	return response.Positive(constants.SecurityAccess, frame[1])
}

// handleCommunicationControl implements SID 0x28.
func handleCommunicationControl(s *Server, frame []byte) []byte {
	if len(frame) < 3 {
		return response.Negative(constants.CommunicationControl, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	session := s.State.Session()
	if session != constants.ProgrammingSession && session != constants.ExtendedSession {
		return response.Negative(constants.CommunicationControl, constants.ConditionsNotCorrect)
	}

	ctrlType := constants.CommunicationControlType(frame[1])
	if !ctrlType.Valid() {
		return response.Negative(constants.CommunicationControl, constants.SubFunctionNotSupported)
	}

	commType := constants.CommunicationType(frame[2])
	if !commType.Valid() {
		return response.Negative(constants.CommunicationControl, constants.RequestOutOfRange)
	}

	s.State.SetCommunicationControl(constants.CommunicationControlType(commType))
	return response.Positive(constants.CommunicationControl, frame[1:]...)
}

// handleTesterPresent implements SID 0x3E.
func handleTesterPresent(s *Server, frame []byte) []byte {
	if len(frame) != 2 {
		return response.Negative(constants.TesterPresent, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	sub := constants.TesterPresentType(frame[1])
	if !sub.Valid() {
		return response.Negative(constants.TesterPresent, constants.SubFunctionNotSupported)
	}

	s.State.SetTesterPresent(true)

	if sub == constants.TesterPresentZeroSuppress {
		return response.Suppressed()
	}
	return response.Positive(constants.TesterPresent, frame[1])
}

// handleControlDTCSetting implements SID 0x85. Its flag gates
// ClearDiagnosticInformation.
func handleControlDTCSetting(s *Server, frame []byte) []byte {
	if len(frame) < 2 {
		return response.Negative(constants.ControlDTCSetting, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	setting := constants.ControlDTCSettingType(frame[1])
	if !setting.Valid() {
		return response.Negative(constants.ControlDTCSetting, constants.SubFunctionNotSupported)
	}

	s.State.SetDTCSetting(setting == constants.DTCSettingOn)
	return response.Positive(constants.ControlDTCSetting, frame[1])
}
