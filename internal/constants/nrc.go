package constants

// NRC is a Negative Response Code, the third byte of a `0x7F`-prefixed
// negative response frame.
type NRC byte

const (
	GeneralReject                           NRC = 0x10
	ServiceNotSupported                     NRC = 0x11
	SubFunctionNotSupported                 NRC = 0x12
	IncorrectMessageLengthOrInvalidFormat   NRC = 0x13
	ResponseTooLong                         NRC = 0x14
	BusyRepeatRequest                       NRC = 0x21
	ConditionsNotCorrect                    NRC = 0x22
	RequestSequenceError                    NRC = 0x24
	NoResponseFromSubnetComponent           NRC = 0x25
	FailurePreventsExecution                NRC = 0x26
	RequestOutOfRange                       NRC = 0x31
	SecurityAccessDenied                    NRC = 0x33
	InvalidKey                              NRC = 0x35
	ExceededNumberOfAttempts                NRC = 0x36
	RequiredTimeDelayNotExpired             NRC = 0x37
	UploadDownloadNotAccepted               NRC = 0x70
	TransferDataSuspended                   NRC = 0x71
	GeneralProgrammingFailure               NRC = 0x72
	WrongBlockSequenceCounter               NRC = 0x73
	RequestCorrectlyReceivedResponsePending NRC = 0x78
	SubFunctionNotSupportedInActiveSession  NRC = 0x7E
	ServiceNotSupportedInActiveSession      NRC = 0x7F
	VoltageTooHigh                          NRC = 0x92
	VoltageTooLow                           NRC = 0x93
)

func (n NRC) String() string {
	if name, ok := nrcNames[n]; ok {
		return name
	}
	return "unknown NRC"
}

var nrcNames = map[NRC]string{
	GeneralReject:                           "generalReject",
	ServiceNotSupported:                     "serviceNotSupported",
	SubFunctionNotSupported:                 "subFunctionNotSupported",
	IncorrectMessageLengthOrInvalidFormat:   "incorrectMessageLengthOrInvalidFormat",
	ResponseTooLong:                         "responseTooLong",
	BusyRepeatRequest:                       "busyRepeatRequest",
	ConditionsNotCorrect:                    "conditionsNotCorrect",
	RequestSequenceError:                    "requestSequenceError",
	NoResponseFromSubnetComponent:           "noResponseFromSubnetComponent",
	FailurePreventsExecution:                "failurePreventsExecution",
	RequestOutOfRange:                       "requestOutOfRange",
	SecurityAccessDenied:                    "securityAccessDenied",
	InvalidKey:                              "invalidKey",
	ExceededNumberOfAttempts:                "exceededNumberOfAttempts",
	RequiredTimeDelayNotExpired:             "requiredTimeDelayNotExpired",
	UploadDownloadNotAccepted:               "uploadDownloadNotAccepted",
	TransferDataSuspended:                   "transferDataSuspended",
	GeneralProgrammingFailure:               "generalProgrammingFailure",
	WrongBlockSequenceCounter:               "wrongBlockSequenceCounter",
	RequestCorrectlyReceivedResponsePending: "requestCorrectlyReceivedResponsePending",
	SubFunctionNotSupportedInActiveSession:  "subFunctionNotSupportedInActiveSession",
	ServiceNotSupportedInActiveSession:      "serviceNotSupportedInActiveSession",
	VoltageTooHigh:                          "voltageTooHigh",
	VoltageTooLow:                           "voltageTooLow",
}
