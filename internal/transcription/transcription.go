// Package transcription calls the speech-to-text service that turns an
// uploaded recording into a transcription document in the output bucket.
package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	vocerr "voc-insights-go/internal/errors"
)

const stage = "transcribe"

// Response is the body of the /asr endpoint: either the key of the written
// transcription or an error message.
type Response struct {
	OutputKey string `json:"output_key"`
	Error     string `json:"error,omitempty"`
}

// Client posts recordings to the transcription service.
type Client struct {
	URL          string
	HTTPClient   *http.Client
	MaxRetryTime time.Duration
	Log          *logrus.Entry

	// Mock skips the network call and returns the key the service would
	// have written under OutputPrefix.
	Mock         bool
	OutputPrefix string
}

func NewClient(apiURL string, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		URL:          apiURL,
		HTTPClient:   &http.Client{Timeout: 100 * time.Second},
		MaxRetryTime: 3 * time.Minute,
		Log:          log.WithField("module", "transcription"),
		OutputPrefix: "TranscribedOutput",
	}
}

// OutputKeyFor is the key the service writes the transcription of key to.
func OutputKeyFor(prefix, key string) string {
	return prefix + "/" + path.Base(key) + ".json"
}

// Transcribe asks the service to transcribe s3://bucket/key and returns the
// output key of the transcription document.
func (c *Client) Transcribe(ctx context.Context, bucket, key string) (string, error) {
	if c.Mock {
		return OutputKeyFor(c.OutputPrefix, key), nil
	}
	if c.URL == "" {
		return "", vocerr.New(vocerr.ErrConfig, stage, "transcription api url not set")
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return "", vocerr.Wrap(err, vocerr.ErrConfig, stage, "parse transcription api url")
	}
	q := u.Query()
	q.Set("bucket", bucket)
	q.Set("key", key)
	u.RawQuery = q.Encode()

	log := c.Log.WithFields(logrus.Fields{"bucket": bucket, "key": key})

	var out Response
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.client().Do(req)
		if err != nil {
			log.WithError(err).Warn("transcription request failed")
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error %d: %s", resp.StatusCode, body)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("client error %d: %s", resp.StatusCode, body))
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("json decode error: %v body=%s", err, body))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.MaxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", vocerr.Wrap(err, vocerr.ErrTranscription, stage, "call transcription service")
	}
	if out.Error != "" {
		return "", vocerr.New(vocerr.ErrTranscription, stage, "transcription service: %s", out.Error)
	}
	if out.OutputKey == "" {
		return "", vocerr.New(vocerr.ErrTranscription, stage, "transcription service returned no output_key")
	}

	log.WithField("output_key", out.OutputKey).Info("transcription written")
	return out.OutputKey, nil
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
