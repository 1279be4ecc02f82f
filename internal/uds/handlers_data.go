package uds

import (
	"encoding/binary"

	"github.com/tbrandt/udssim/internal/constants"
	"github.com/tbrandt/udssim/internal/response"
)

// handleReadDataByIdentifier implements SID 0x22.
func handleReadDataByIdentifier(s *Server, frame []byte) []byte {
	if len(frame) != 3 {
		return response.Negative(constants.ReadDataByIdentifier, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	did := constants.DIDFromBytes(frame[1], frame[2])
	hi, lo := did.Bytes()[0], did.Bytes()[1]

	if did == constants.ActiveDiagnosticSession {
		return response.Positive(constants.ReadDataByIdentifier, hi, lo, byte(s.State.Session()))
	}

	data, ok := s.Store.ReadDID(did)
	if !ok {
		return response.Negative(constants.ReadDataByIdentifier, constants.RequestOutOfRange)
	}
	return response.Positive(constants.ReadDataByIdentifier, append([]byte{hi, lo}, data...)...)
}

// handleWriteDataByIdentifier implements SID 0x2E.
func handleWriteDataByIdentifier(s *Server, frame []byte) []byte {
	if len(frame) < 4 {
		return response.Negative(constants.WriteDataByIdentifier, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	did := constants.DIDFromBytes(frame[1], frame[2])
	if !s.Store.IsWritable(did) {
		return response.Negative(constants.WriteDataByIdentifier, constants.RequestOutOfRange)
	}

	s.Store.WriteDID(did, frame[3:])
	hi, lo := did.Bytes()[0], did.Bytes()[1]
	return response.Positive(constants.WriteDataByIdentifier, hi, lo)
}

// handleReadMemoryByAddress implements SID 0x23.
func handleReadMemoryByAddress(s *Server, frame []byte) []byte {
	if len(frame) != 5 {
		return response.Negative(constants.ReadMemoryByAddress, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	addr := binary.BigEndian.Uint32(frame[1:5])
	data, ok := s.Store.ReadMemory(addr)
	if !ok {
		return response.Negative(constants.ReadMemoryByAddress, constants.RequestOutOfRange)
	}
	return response.Positive(constants.ReadMemoryByAddress, data...)
}

// handleWriteMemoryByAddress implements SID 0x3D.
func handleWriteMemoryByAddress(s *Server, frame []byte) []byte {
	if len(frame) < 6 {
		return response.Negative(constants.WriteMemoryByAddress, constants.IncorrectMessageLengthOrInvalidFormat)
	}

	addr := binary.BigEndian.Uint32(frame[1:5])
	s.Store.WriteMemory(addr, frame[5:])
	return response.Positive(constants.WriteMemoryByAddress)
}
