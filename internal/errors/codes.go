package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code        ErrorCode
	Retryable   bool
	Description string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrParse: {
		Code:        ErrParse,
		Description: "Transcript filename or timestamp token does not match the expected shape",
	},
	ErrConfig: {
		Code:        ErrConfig,
		Description: "Required configuration value is missing",
	},
	ErrResolution: {
		Code:        ErrResolution,
		Description: "Prompt template or variant could not be resolved",
	},
	ErrModelInvocation: {
		Code:        ErrModelInvocation,
		Retryable:   true,
		Description: "Text model call failed (network or non-2xx)",
	},
	ErrMalformedModelOutput: {
		Code:        ErrMalformedModelOutput,
		Description: "Text model response is not a JSON object with every required key",
	},
	ErrMalformedTranscript: {
		Code:        ErrMalformedTranscript,
		Description: "Transcription payload is not valid JSON or has no segments",
	},
	ErrInvalidRecord: {
		Code:        ErrInvalidRecord,
		Description: "Extracted record is missing a field or holds a value the schema cannot encode",
	},
	ErrQuerySubmission: {
		Code:        ErrQuerySubmission,
		Retryable:   true,
		Description: "Destination rejected or failed to accept the statement",
	},
	ErrStorage: {
		Code:        ErrStorage,
		Retryable:   true,
		Description: "Object storage read failed",
	},
	ErrWorkflow: {
		Code:        ErrWorkflow,
		Retryable:   true,
		Description: "Workflow execution could not be started",
	},
	ErrTranscription: {
		Code:        ErrTranscription,
		Retryable:   true,
		Description: "Transcription service call failed",
	},
	ErrTimeout: {
		Code:        ErrTimeout,
		Retryable:   true,
		Description: "Operation exceeded time limit",
	},
	ErrContextCancelled: {
		Code:        ErrContextCancelled,
		Description: "Operation cancelled by caller",
	},
}
