package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeDatabaseError      ErrorCode = "COMMON_007"
	ErrCodeCacheError         ErrorCode = "COMMON_008"
	ErrCodeExternalService    ErrorCode = "COMMON_009"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_010"
)

// Tagging module error codes.
const (
	// ErrCodeTermListUnreadable marks a missing or unreadable target-term
	// file. Raised at tagger construction, before any document is processed.
	ErrCodeTermListUnreadable ErrorCode = "TAG_001"

	// ErrCodeRecognizerFailure marks a failed gene-recognition call. Fatal
	// for the document being tagged.
	ErrCodeRecognizerFailure ErrorCode = "TAG_002"

	// ErrCodeDocumentTagging wraps any failure surfaced while tagging one
	// document; the message names the document.
	ErrCodeDocumentTagging ErrorCode = "TAG_003"
)

// External service adapter error codes.
const (
	ErrCodeServiceNotOpen    ErrorCode = "SVC_001"
	ErrCodeServiceProtocol   ErrorCode = "SVC_002"
	ErrCodeServiceBadPayload ErrorCode = "SVC_003"
)

// Configuration error codes.
const (
	ErrCodeConfigError ErrorCode = "CFG_001"
)

// Corpus / dataset error codes.
const (
	ErrCodeCorpusParseFailed   ErrorCode = "CRP_001"
	ErrCodeEntityOffsetInvalid ErrorCode = "CRP_002"
)

// Feature generation error codes.
const (
	ErrCodeFeatureGeneration ErrorCode = "FEAT_001"
)

// Aliases kept short for call-site readability.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)
