package types

// Outcome is the result of processing one transcript during a backfill.
type Outcome struct {
	OutputKey   string           `json:"output_key"`
	Record      *ExtractedRecord `json:"record,omitempty"`
	ExecutionID string           `json:"execution_id,omitempty"`
	ErrorCode   string           `json:"error_code,omitempty"`
	Error       string           `json:"error,omitempty"`
	Retryable   bool             `json:"retryable,omitempty"`
	DurationMs  int64            `json:"duration_ms"`
}

// Succeeded reports whether the transcript was submitted.
func (o Outcome) Succeeded() bool {
	return o.Error == ""
}
