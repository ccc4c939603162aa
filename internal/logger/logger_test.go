package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSONOutsideLocal(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("LOG_LEVEL", "")

	var buf bytes.Buffer
	log := NewWithOutput(&buf)
	log.WithRun("transcribedOutput/a.wav.json").Info("run started")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "run started", line["msg"])
	assert.Equal(t, "transcribedOutput/a.wav.json", line["output_key"])
	assert.Equal(t, "voc-insights-go", line["service"])
	assert.NotEmpty(t, line["run_id"])
}

func TestNewWithOutput_Level(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	log := NewWithOutput(&buf)
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithRequest_UsesHeaderID(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")

	var buf bytes.Buffer
	r := httptest.NewRequest("POST", "/extract", nil)
	r.Header.Set("X-Request-ID", "req-1")
	NewWithOutput(&buf).WithRequest(r).Info("hit")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["req_id"])
	assert.Equal(t, "/extract", line["path"])
}

func TestWithError(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")

	var buf bytes.Buffer
	log := NewWithOutput(&buf)
	log.WithError(errors.New("boom")).Error("failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)

	assert.Equal(t, log.Entry, log.WithError(nil))
}

func TestFromContext(t *testing.T) {
	base := logrus.NewEntry(logrus.New())
	fallback := base.WithField("component", "pipeline")

	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	run := base.WithFields(logrus.Fields{"run_id": "r-1", "component": "backfill"})
	got := FromContext(NewContext(context.Background(), run), fallback)
	assert.Equal(t, "r-1", got.Data["run_id"])
	assert.Equal(t, "backfill", got.Data["component"])

	assert.NotNil(t, FromContext(context.Background(), nil))
}
