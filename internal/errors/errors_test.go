package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, ErrStorage, "read", "boom"))
}

func TestWrap_DeadlineBecomesTimeout(t *testing.T) {
	err := Wrap(fmt.Errorf("invoke: %w", context.DeadlineExceeded), ErrModelInvocation, "model", "invoke model")

	require.Error(t, err)
	assert.Equal(t, ErrTimeout, CodeOf(err))
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWrap_Canceled(t *testing.T) {
	err := Wrap(context.Canceled, ErrQuerySubmission, "submit", "submit query")
	assert.Equal(t, ErrContextCancelled, CodeOf(err))
	assert.False(t, IsRetryable(err))
}

func TestWrap_KeepsExistingClassification(t *testing.T) {
	inner := New(ErrParse, "filename", "no match for %q", "x.wav")
	err := Wrap(inner, ErrStorage, "read", "outer")

	assert.Equal(t, ErrParse, CodeOf(err))
	assert.Same(t, inner, err)
}

func TestPipelineError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want string
	}{
		{"stage and message", New(ErrConfig, "config", "missing %s", "/voc/OUTPUT_BUCKET"), "config_error: config: missing /voc/OUTPUT_BUCKET"},
		{"cause only", &PipelineError{Code: ErrStorage, Cause: errors.New("no such key")}, "storage_error: no such key"},
		{"message and cause", &PipelineError{Code: ErrStorage, Stage: "read", Message: "get object", Cause: errors.New("denied")}, "storage_error: read: get object: denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrModelInvocation, "model", "503")))
	assert.True(t, IsRetryable(New(ErrQuerySubmission, "submit", "throttled")))
	assert.False(t, IsRetryable(New(ErrParse, "filename", "bad")))
	assert.False(t, IsRetryable(New(ErrMalformedModelOutput, "model", "bad json")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("run: %w", New(ErrResolution, "prompt", "variant missing"))
	assert.True(t, Is(err, ErrResolution))
	assert.False(t, Is(err, ErrParse))
	assert.False(t, Is(nil, ErrResolution))
}
