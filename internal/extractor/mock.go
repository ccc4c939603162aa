package extractor

import (
	"context"
	"encoding/json"
	"sync"
)

// MockModelOutput is the extraction returned by MockInvoker. Use
// USE_MOCK_LLM=true to run the pipeline offline.
const MockModelOutput = `{
  "related_products": ["手機服務"],
  "related_location": "Hong Kong",
  "action_items_detected_text": ["follow up on roaming charges"],
  "issues_detected_text": "unexpected roaming charges on the monthly bill",
  "outcomes_detected_text": "agent explained the charge and offered a waiver",
  "categories_detected_text": ["billing", "roaming"],
  "custom_entities": [],
  "categories_detected": ["billing"],
  "call_nature": "complaint",
  "summary": "Customer called about roaming charges; agent explained and offered a waiver."
}`

// MockInvoker answers every call with a fixed response and records the last
// request body.
type MockInvoker struct {
	mu        sync.Mutex
	Response  []byte
	Err       error
	LastModel string
	LastBody  []byte
	Calls     int
}

func (m *MockInvoker) InvokeTextModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastModel = modelID
	m.LastBody = body
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Response != nil {
		return m.Response, nil
	}
	text := MockModelOutput
	return json.Marshal(ModelResponse{Text: &text})
}
