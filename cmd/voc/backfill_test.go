package main

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voc-insights-go/internal/dataset"
	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/logger"
	"voc-insights-go/internal/pipeline"
	"voc-insights-go/internal/types"
)

type keyRunner struct {
	mu     sync.Mutex
	seen   []string
	tagged map[string]any
	fail   map[string]error
}

func (k *keyRunner) Run(ctx context.Context, ev pipeline.Event) (pipeline.Result, error) {
	k.mu.Lock()
	k.seen = append(k.seen, ev.OutputKey)
	k.tagged[ev.OutputKey] = logger.FromContext(ctx, nil).Data["output_key"]
	k.mu.Unlock()
	if err := k.fail[ev.OutputKey]; err != nil {
		return pipeline.Result{OutputKey: ev.OutputKey}, err
	}
	return pipeline.Result{OutputKey: ev.OutputKey, ExecutionID: "qe-" + ev.OutputKey, Record: &types.ExtractedRecord{SysS3Path: ev.OutputKey}}, nil
}

func TestRunAll_KeepsOrderAndContinuesAfterFailure(t *testing.T) {
	r := &keyRunner{tagged: map[string]any{}, fail: map[string]error{
		"b": vocerr.New(vocerr.ErrQuerySubmission, "submit", "throttled"),
		"d": vocerr.New(vocerr.ErrParse, "extract", "bad name"),
	}}
	entries := []dataset.ManifestEntry{{Row: 2, OutputKey: "a"}, {Row: 3, OutputKey: "b"}, {Row: 4, OutputKey: "c"}, {Row: 5, OutputKey: "d"}}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	out := runAll(context.Background(), r, entries, 3, func(key string) *logrus.Entry {
		return quiet.WithField("output_key", key)
	})

	require.Len(t, out, 4)
	assert.Len(t, r.seen, 4)
	for i, e := range entries {
		assert.Equal(t, e.OutputKey, out[i].OutputKey)
	}
	assert.True(t, out[0].Succeeded())
	assert.Equal(t, "qe-a", out[0].ExecutionID)
	assert.Equal(t, "query_submission_error", out[1].ErrorCode)
	assert.True(t, out[1].Retryable)
	assert.Nil(t, out[1].Record)
	assert.Equal(t, "parse_error", out[3].ErrorCode)
	assert.False(t, out[3].Retryable)
	for _, e := range entries {
		assert.Equal(t, e.OutputKey, r.tagged[e.OutputKey], "run logger reaches the pipeline")
	}
}
