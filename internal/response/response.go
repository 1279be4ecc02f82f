// Package response builds the two frame shapes a UDS server ever returns:
// a positive response and a negative response. Construction only; callers
// are responsible for every validation that decides which one to send.
package response

import "github.com/tbrandt/udssim/internal/constants"

// Positive builds `[sid+0x40] ++ payload`.
func Positive(sid constants.SID, payload ...byte) []byte {
	frame := make([]byte, 0, 1+len(payload))
	frame = append(frame, sid.Positive())
	frame = append(frame, payload...)
	return frame
}

// Negative builds `[0x7F, sid, nrc]`.
func Negative(sid constants.SID, nrc constants.NRC) []byte {
	return []byte{byte(constants.NegativeResponse), byte(sid), byte(nrc)}
}

// Suppressed is the empty frame returned when a request asked for no
// response (e.g. TesterPresent's suppressPosRspMsgIndicationBit).
func Suppressed() []byte {
	return []byte{}
}
