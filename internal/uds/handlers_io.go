package uds

import (
	"github.com/tbrandt/udssim/internal/constants"
	"github.com/tbrandt/udssim/internal/ecudata"
	"github.com/tbrandt/udssim/internal/response"
)

// handleInputOutputControlByIdentifier implements SID 0x2F.
func handleInputOutputControlByIdentifier(s *Server, frame []byte) []byte {
	if len(frame) < 4 {
		return response.Negative(constants.InputOutputControlByIdentifier, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	did := constants.DIDFromBytes(frame[1], frame[2])
	controlOption := frame[3]
	s.Store.SetIOStatus(did, controlOption)

	hi, lo := did.Bytes()[0], did.Bytes()[1]
	return response.Positive(constants.InputOutputControlByIdentifier, hi, lo)
}

// handleRoutineControl implements SID 0x31.
func handleRoutineControl(s *Server, frame []byte) []byte {
	if len(frame) < 4 {
		return response.Negative(constants.RoutineControl, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	sub := constants.RoutineSubFunction(frame[1])
	if !sub.Valid() {
		return response.Negative(constants.RoutineControl, constants.SubFunctionNotSupported)
	}

	routineID := uint16(frame[2])<<8 | uint16(frame[3])

	switch sub {
	case constants.RoutineStart:
		s.Store.SetRoutineStatus(routineID, ecudata.RoutineStarted)
		return response.Positive(constants.RoutineControl, frame[1], frame[2], frame[3])

	case constants.RoutineStop:
		s.Store.SetRoutineStatus(routineID, ecudata.RoutineStopped)
		return response.Positive(constants.RoutineControl, frame[1], frame[2], frame[3])

	case constants.RoutineRequestResult:
		if _, ok := s.Store.RoutineStatus(routineID); !ok {
			return response.Negative(constants.RoutineControl, constants.RequestOutOfRange)
		}
		return response.Positive(constants.RoutineControl, frame[1], frame[2], frame[3], 0x01, 0x02, 0x03)

	default:
		return response.Negative(constants.RoutineControl, constants.SubFunctionNotSupported)
	}
}
