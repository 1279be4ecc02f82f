// Package constants holds the enumerations shared by every service handler:
// Service IDs, Sub-Function IDs, Negative Response Codes and the known Data
// Identifiers. Nothing here carries behavior, only the wire-level vocabulary.
package constants

// SID is a UDS Service Identifier, the first byte of every request frame.
type SID byte

// Diagnostic and communication management.
const (
	DiagnosticSessionControl   SID = 0x10
	ECUReset                   SID = 0x11
	ClearDiagnosticInformation SID = 0x14
	ReadDTCInformation         SID = 0x19
	SecurityAccess             SID = 0x27
	CommunicationControl       SID = 0x28
	AccessTimingParameter      SID = 0x83
	SecuredDataTransmission    SID = 0x84
	ControlDTCSetting          SID = 0x85
	ResponseOnEvent            SID = 0x86
	LinkControl                SID = 0x87
)

// Data transmission.
const (
	ReadDataByIdentifier            SID = 0x22
	ReadMemoryByAddress             SID = 0x23
	ReadScalingDataByIdentifier     SID = 0x24
	ReadDataByPeriodicIdentifier    SID = 0x2A
	DynamicallyDefineDataIdentifier SID = 0x2C
	WriteDataByIdentifier           SID = 0x2E
	WriteMemoryByAddress            SID = 0x3D
)

// Input/output control and routines.
const (
	InputOutputControlByIdentifier SID = 0x2F
	RoutineControl                 SID = 0x31
)

// Upload/download family, declared supported but always rejected by a
// shared handler.
const (
	RequestDownload     SID = 0x34
	RequestUpload       SID = 0x35
	TransferData        SID = 0x36
	RequestTransferExit SID = 0x37
	RequestFileTransfer SID = 0x38
)

// TesterPresent keeps a session alive without touching other state.
const TesterPresent SID = 0x3E

// NegativeResponse prefixes every `[0x7F, sid, nrc]` frame.
const NegativeResponse SID = 0x7F

// responseOffset is added to a request SID to build its positive response.
const responseOffset = 0x40

// Positive returns the SID used in a positive response to a request of
// this SID.
func (s SID) Positive() byte {
	return byte(s) + responseOffset
}

func (s SID) String() string {
	if name, ok := sidNames[s]; ok {
		return name
	}
	return "unknown SID"
}

var sidNames = map[SID]string{
	DiagnosticSessionControl:        "DiagnosticSessionControl",
	ECUReset:                        "ECUReset",
	ClearDiagnosticInformation:      "ClearDiagnosticInformation",
	ReadDTCInformation:              "ReadDTCInformation",
	SecurityAccess:                  "SecurityAccess",
	CommunicationControl:            "CommunicationControl",
	AccessTimingParameter:           "AccessTimingParameter",
	SecuredDataTransmission:         "SecuredDataTransmission",
	ControlDTCSetting:               "ControlDTCSetting",
	ResponseOnEvent:                 "ResponseOnEvent",
	LinkControl:                     "LinkControl",
	ReadDataByIdentifier:            "ReadDataByIdentifier",
	ReadMemoryByAddress:             "ReadMemoryByAddress",
	ReadScalingDataByIdentifier:     "ReadScalingDataByIdentifier",
	ReadDataByPeriodicIdentifier:    "ReadDataByPeriodicIdentifier",
	DynamicallyDefineDataIdentifier: "DynamicallyDefineDataIdentifier",
	WriteDataByIdentifier:           "WriteDataByIdentifier",
	WriteMemoryByAddress:            "WriteMemoryByAddress",
	InputOutputControlByIdentifier:  "InputOutputControlByIdentifier",
	RoutineControl:                  "RoutineControl",
	RequestDownload:                 "RequestDownload",
	RequestUpload:                   "RequestUpload",
	TransferData:                    "TransferData",
	RequestTransferExit:             "RequestTransferExit",
	RequestFileTransfer:             "RequestFileTransfer",
	TesterPresent:                   "TesterPresent",
	NegativeResponse:                "NegativeResponse",
}
