package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GatewayInvoker calls an OpenAI-style chat completion gateway and answers
// with the same {"text": ...} envelope the hosted text model returns, so the
// extractor does not care which backend served the call.
//
// A call makes one attempt unless Retries is set. Under the pipeline the
// invoking workflow owns retries, so the app wiring leaves it at zero.
type GatewayInvoker struct {
	URL          string
	APIKey       string
	HTTPClient   *http.Client
	Retries      uint64
	MaxRetryTime time.Duration
	Log          *logrus.Entry
}

func NewGatewayInvoker(url, apiKey string, log *logrus.Entry) *GatewayInvoker {
	return &GatewayInvoker{
		URL:          url,
		APIKey:       apiKey,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		MaxRetryTime: 45 * time.Second,
		Log:          log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *GatewayInvoker) InvokeTextModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	if g.URL == "" || g.APIKey == "" {
		return nil, fmt.Errorf("llm gateway not configured")
	}

	var in ModelRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("decode model request: %w", err)
	}
	data, err := json.Marshal(chatRequest{
		Model:       modelID,
		Messages:    []chatMessage{{Role: "user", Content: in.Message}},
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
		TopP:        in.P,
	})
	if err != nil {
		return nil, err
	}

	log := g.logger().WithFields(logrus.Fields{"model_id": modelID, "req_id": uuid.New().String()})
	log.WithField("payload_len", len(data)).Debug("llm gateway request")

	var content string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client().Do(req)
		if err != nil {
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, trimBody(raw)))
		}
		if resp.StatusCode >= 500 {
			log.WithField("http_status", resp.StatusCode).Warn("llm gateway server error")
			return fmt.Errorf("llm gateway status %d: %s", resp.StatusCode, trimBody(raw))
		}

		var parsed chatResponse
		if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("unexpected llm response: %s", trimBody(raw)))
		}
		content = parsed.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = g.MaxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, g.Retries), ctx)); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("llm gateway: %w", ctx.Err())
		}
		return nil, fmt.Errorf("llm gateway: %w", err)
	}

	return json.Marshal(ModelResponse{Text: &content})
}

func (g *GatewayInvoker) client() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	return http.DefaultClient
}

func (g *GatewayInvoker) logger() *logrus.Entry {
	if g.Log != nil {
		return g.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
