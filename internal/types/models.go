package types

// FilenameInfo is the identity carried by a transcript filename.
type FilenameInfo struct {
	CustomerID       string `json:"customer_id"`
	ConversationGUID string `json:"guid"`
	Agent            string `json:"agent"`
	TimestampToken   string `json:"conversation_time"`
	Remark           string `json:"remark"`
	Filename         string `json:"filename"`
}

// Segment is one time-bounded fragment of a transcription.
type Segment struct {
	ID               int      `json:"id"`
	Seek             int      `json:"seek"`
	Start            float64  `json:"start"`
	End              float64  `json:"end"`
	Text             string   `json:"text"`
	Tokens           []int64  `json:"tokens"`
	Temperature      float64  `json:"temperature"`
	AvgLogProb       float64  `json:"avg_logprob"`
	CompressionRatio float64  `json:"compression_ratio"`
	NoSpeechProb     float64  `json:"no_speech_prob"`
	Words            []string `json:"words"`
}

// TranscriptionPayload is the JSON document written by the speech service.
type TranscriptionPayload struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// InferenceParams are the text-generation knobs attached to a prompt variant.
type InferenceParams struct {
	MaxTokens     int      `json:"maxTokens" yaml:"maxTokens"`
	Temperature   float64  `json:"temperature" yaml:"temperature"`
	TopP          float64  `json:"topP" yaml:"topP"`
	StopSequences []string `json:"stopSequences,omitempty" yaml:"stopSequences,omitempty"`
}

// PromptTemplate is a resolved prompt variant ready to be filled in.
type PromptTemplate struct {
	Text       string          `json:"text"`
	SystemText string          `json:"system_text"`
	UserText   string          `json:"user_text"`
	ModelID    string          `json:"model_id"`
	Variant    string          `json:"variant"`
	Inference  InferenceParams `json:"inference"`
}
