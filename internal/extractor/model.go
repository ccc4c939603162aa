package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"

	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/types"
)

// CallLogPlaceholder is replaced by the raw transcript in prompt templates.
const CallLogPlaceholder = "{{calllog}}"

// ModelInvoker calls a text-generation model with an opaque JSON body and
// returns the opaque JSON response body.
type ModelInvoker interface {
	InvokeTextModel(ctx context.Context, modelID string, body []byte) ([]byte, error)
}

// ModelRequest is the body sent to the text model.
type ModelRequest struct {
	Message     string  `json:"message"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	P           float64 `json:"p"`
}

// ModelResponse is the envelope the text model answers with; Text holds the
// extraction as a JSON document.
type ModelResponse struct {
	Text *string `json:"text"`
}

// ModelOutput is the decoded extraction.
type ModelOutput struct {
	RelatedProducts         types.StringList
	RelatedLocation         types.StringList
	ActionItemsDetectedText string
	IssuesDetectedText      string
	OutcomesDetectedText    string
	CategoriesDetectedText  string
	CustomEntities          types.StringList
	CategoriesDetected      types.StringList
	CallNature              string
	Summary                 string
}

// RequiredModelKeys lists every key the model response must carry.
var RequiredModelKeys = []string{
	"related_products",
	"related_location",
	"action_items_detected_text",
	"issues_detected_text",
	"outcomes_detected_text",
	"categories_detected_text",
	"custom_entities",
	"categories_detected",
	"call_nature",
	"summary",
}

// BuildModelRequest fills the template with the transcript and attaches the
// inference parameters.
func BuildModelRequest(tmpl types.PromptTemplate, transcript string) ([]byte, error) {
	return json.Marshal(ModelRequest{
		Message:     strings.ReplaceAll(tmpl.Text, CallLogPlaceholder, transcript),
		MaxTokens:   tmpl.Inference.MaxTokens,
		Temperature: tmpl.Inference.Temperature,
		P:           tmpl.Inference.TopP,
	})
}

// ParseModelResponse decodes the model envelope and validates the full key
// set at once, so a bad response fails with one precise error.
func ParseModelResponse(body []byte) (ModelOutput, error) {
	var env ModelResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return ModelOutput{}, malformed("response body is not JSON: %v", err)
	}
	if env.Text == nil {
		return ModelOutput{}, malformed("response body has no text field")
	}

	var fields map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(*env.Text))
	if err := dec.Decode(&fields); err != nil {
		return ModelOutput{}, malformed("model text is not a JSON object: %v", err)
	}
	if fields == nil {
		return ModelOutput{}, malformed("model text is not a JSON object")
	}
	if dec.More() {
		return ModelOutput{}, malformed("model text has trailing content after the JSON object")
	}

	var missing []string
	for _, k := range RequiredModelKeys {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return ModelOutput{}, malformed("model output missing keys: %s", strings.Join(missing, ", "))
	}

	var out ModelOutput
	lists := []struct {
		key string
		dst *types.StringList
	}{
		{"related_products", &out.RelatedProducts},
		{"related_location", &out.RelatedLocation},
		{"custom_entities", &out.CustomEntities},
		{"categories_detected", &out.CategoriesDetected},
	}
	for _, l := range lists {
		if err := json.Unmarshal(fields[l.key], l.dst); err != nil {
			return ModelOutput{}, malformed("%s: %v", l.key, err)
		}
	}

	for key, dst := range map[string]*string{"call_nature": &out.CallNature, "summary": &out.Summary} {
		raw := bytes.TrimSpace(fields[key])
		if bytes.Equal(raw, []byte("null")) {
			return ModelOutput{}, malformed("%s must be a string, got null", key)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return ModelOutput{}, malformed("%s must be a string: %v", key, err)
		}
	}

	out.ActionItemsDetectedText = flattenText(fields["action_items_detected_text"])
	out.IssuesDetectedText = flattenText(fields["issues_detected_text"])
	out.OutcomesDetectedText = flattenText(fields["outcomes_detected_text"])
	out.CategoriesDetectedText = flattenText(fields["categories_detected_text"])
	return out, nil
}

func malformed(format string, args ...any) error {
	return vocerr.New(vocerr.ErrMalformedModelOutput, "model", format, args...)
}

// trimBody shortens a response body for log lines.
func trimBody(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > 512 {
		return string(b[:512]) + "..."
	}
	return string(b)
}
