package uds

import (
	"github.com/tbrandt/udssim/internal/constants"
	"github.com/tbrandt/udssim/internal/response"
)

// handleClearDiagnosticInformation implements SID 0x14.
func handleClearDiagnosticInformation(s *Server, frame []byte) []byte {
	if !s.State.DTCSettingOn() {
		return response.Negative(constants.ClearDiagnosticInformation, constants.ConditionsNotCorrect)
	}

	s.Store.ClearDTCs()
	return response.Positive(constants.ClearDiagnosticInformation)
}

// handleReadDTCInformation implements SID 0x19.
func handleReadDTCInformation(s *Server, frame []byte) []byte {
	if len(frame) < 2 {
		return response.Negative(constants.ReadDTCInformation, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	sub := constants.ReadDTCSubFunction(frame[1])
	statusMask := byte(0xFF)
	if len(frame) >= 3 {
		statusMask = frame[2]
	}

	switch sub {
	case constants.ReportNumberByStatusMask:
		count := s.Store.CountByStatusMask(statusMask)
		return response.Positive(constants.ReadDTCInformation, frame[1], statusMask, 0x01, byte(count))

	case constants.ReportByStatusMask:
		dtcs := s.Store.DTCsByStatusMask(statusMask)
		payload := []byte{frame[1], statusMask}
		for _, d := range dtcs {
			payload = append(payload, byte(d.Code>>16), byte(d.Code>>8), byte(d.Code), d.Status)
		}
		return response.Positive(constants.ReadDTCInformation, payload...)

	default:
		return response.Negative(constants.ReadDTCInformation, constants.SubFunctionNotSupported)
	}
}
