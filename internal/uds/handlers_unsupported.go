package uds

import (
	"github.com/tbrandt/udssim/internal/constants"
	"github.com/tbrandt/udssim/internal/response"
)

// handleUnsupported serves every SID that is registered without behavior:
// the upload/download family (0x34-0x38), the scaling/periodic/dynamic data
// services (0x24/0x2A/0x2C) and the AccessTimingParameter/
// SecuredDataTransmission/ResponseOnEvent/LinkControl quartet
// (0x83/0x84/0x86/0x87). These SIDs route through the dispatcher and reject
// cleanly rather than appear unregistered.
func handleUnsupported(s *Server, frame []byte) []byte {
	return response.Negative(constants.SID(frame[0]), constants.ServiceNotSupported)
}
