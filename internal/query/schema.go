// Package query renders ExtractedRecords as INSERT statements for the
// processed transcription table.
package query

import "voc-insights-go/internal/types"

// ColumnType is the destination type of a column and picks its encoder.
type ColumnType string

const (
	TypeString       ColumnType = "string"
	TypeInt          ColumnType = "int"
	TypeDouble       ColumnType = "double"
	TypeTimestamp    ColumnType = "timestamp"
	TypeStringArray  ColumnType = "array<string>"
	TypeSegmentArray ColumnType = "array<struct<id:int,seek:int,start:double,end:double,text:string,tokens:array<bigint>,temperature:double,avg_logprob:double,compression_ratio:double,no_speech_prob:double,words:array<string>>>"
)

// Column is one destination column. Value reads the column's value from a
// record; Required columns may not be empty.
type Column struct {
	Name     string
	Type     ColumnType
	Required bool
	Value    func(*types.ExtractedRecord) any
}

// Schema is an ordered, versioned column list.
type Schema struct {
	Version string
	Columns []Column
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ProcessedTranscriptionV1 is the layout of voc_processed_transcription.
var ProcessedTranscriptionV1 = Schema{
	Version: "v1",
	Columns: []Column{
		{"guid", TypeString, true, func(r *types.ExtractedRecord) any { return r.GUID }},
		{"file_name", TypeString, true, func(r *types.ExtractedRecord) any { return r.FileName }},
		{"call_nature", TypeString, false, func(r *types.ExtractedRecord) any { return r.CallNature }},
		{"summary", TypeString, false, func(r *types.ExtractedRecord) any { return r.Summary }},
		{"agent", TypeString, true, func(r *types.ExtractedRecord) any { return r.Agent }},
		{"customer_id", TypeInt, true, func(r *types.ExtractedRecord) any { return r.CustomerID }},
		{"conversation_time", TypeTimestamp, true, func(r *types.ExtractedRecord) any { return r.ConversationTime }},
		{"conversation_duration", TypeDouble, false, func(r *types.ExtractedRecord) any { return r.ConversationDuration }},
		{"conversation_location", TypeString, false, func(r *types.ExtractedRecord) any { return r.ConversationLocation }},
		{"language_code", TypeString, false, func(r *types.ExtractedRecord) any { return r.LanguageCode }},
		{"related_products", TypeStringArray, false, func(r *types.ExtractedRecord) any { return []string(r.RelatedProducts) }},
		{"related_location", TypeStringArray, false, func(r *types.ExtractedRecord) any { return []string(r.RelatedLocation) }},
		{"action_items_detected_text", TypeString, false, func(r *types.ExtractedRecord) any { return r.ActionItemsDetectedText }},
		{"issues_detected_text", TypeString, false, func(r *types.ExtractedRecord) any { return r.IssuesDetectedText }},
		{"outcomes_detected_text", TypeString, false, func(r *types.ExtractedRecord) any { return r.OutcomesDetectedText }},
		{"categories_detected_text", TypeString, false, func(r *types.ExtractedRecord) any { return r.CategoriesDetectedText }},
		{"custom_entities", TypeStringArray, false, func(r *types.ExtractedRecord) any { return []string(r.CustomEntities) }},
		{"categories_detected", TypeStringArray, false, func(r *types.ExtractedRecord) any { return []string(r.CategoriesDetected) }},
		{"customer_sentiment_score", TypeDouble, false, func(r *types.ExtractedRecord) any { return r.CustomerSentimentScore }},
		{"agent_sentiment_score", TypeDouble, false, func(r *types.ExtractedRecord) any { return r.AgentSentimentScore }},
		{"customer_total_time_secs", TypeDouble, false, func(r *types.ExtractedRecord) any { return r.CustomerTotalTimeSecs }},
		{"agent_total_time_secs", TypeDouble, false, func(r *types.ExtractedRecord) any { return r.AgentTotalTimeSecs }},
		{"raw_transcript_text", TypeString, false, func(r *types.ExtractedRecord) any { return r.RawTranscriptText }},
		{"raw_segments", TypeSegmentArray, false, func(r *types.ExtractedRecord) any { return r.RawSegments }},
		{"sys_s3_path", TypeString, true, func(r *types.ExtractedRecord) any { return r.SysS3Path }},
		{"sys_process_time", TypeTimestamp, true, func(r *types.ExtractedRecord) any { return r.SysProcessTime }},
	},
}
