package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ExtractedRecord is one row of the processed transcription table.
type ExtractedRecord struct {
	GUID                 string  `json:"guid"`
	FileName             string  `json:"file_name"`
	CallNature           string  `json:"call_nature"`
	Summary              string  `json:"summary"`
	Agent                string  `json:"agent"`
	CustomerID           string  `json:"customer_id"`
	ConversationTime     string  `json:"conversation_time"`
	ConversationDuration float64 `json:"conversation_duration"`
	ConversationLocation string  `json:"conversation_location"`
	LanguageCode         string  `json:"language_code"`

	RelatedProducts         StringList `json:"related_products"`
	RelatedLocation         StringList `json:"related_location"`
	ActionItemsDetectedText string     `json:"action_items_detected_text"`
	IssuesDetectedText      string     `json:"issues_detected_text"`
	OutcomesDetectedText    string     `json:"outcomes_detected_text"`
	CategoriesDetectedText  string     `json:"categories_detected_text"`
	CustomEntities          StringList `json:"custom_entities"`
	CategoriesDetected      StringList `json:"categories_detected"`

	CustomerSentimentScore float64 `json:"customer_sentiment_score"`
	AgentSentimentScore    float64 `json:"agent_sentiment_score"`
	CustomerTotalTimeSecs  float64 `json:"customer_total_time_secs"`
	AgentTotalTimeSecs     float64 `json:"agent_total_time_secs"`

	RawTranscriptText string    `json:"raw_transcript_text"`
	RawSegments       []Segment `json:"raw_segments"`

	SysS3Path      string `json:"sys_s3_path"`
	SysProcessTime string `json:"sys_process_time"`
}

// StringList holds a model field that may arrive either as a single string
// or as an array of strings.
type StringList []string

// UnmarshalJSON accepts a string, an array or null. Array elements that are
// not strings are kept in their JSON text form.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	out := make(StringList, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			s = string(bytes.TrimSpace(r))
		}
		out = append(out, s)
	}
	*l = out
	return nil
}
