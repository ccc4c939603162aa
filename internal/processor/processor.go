// Package processor runs a recording end to end: transcription, then the
// extraction pipeline on the transcription it produced.
package processor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"voc-insights-go/internal/pipeline"
	"voc-insights-go/internal/types"
)

// Transcriber turns a recording into a transcription document and returns
// its output key.
type Transcriber interface {
	Transcribe(ctx context.Context, bucket, key string) (string, error)
}

// Runner runs the extraction pipeline for one output key.
type Runner interface {
	Run(ctx context.Context, ev pipeline.Event) (pipeline.Result, error)
}

// CallResult is returned by /process.
type CallResult struct {
	Bucket      string                 `json:"bucket"`
	Key         string                 `json:"key"`
	OutputKey   string                 `json:"output_key,omitempty"`
	Record      *types.ExtractedRecord `json:"record,omitempty"`
	Statement   string                 `json:"statement,omitempty"`
	ExecutionID string                 `json:"execution_id,omitempty"`
	DurationMs  int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
}

type Processor struct {
	transcriber Transcriber
	runner      Runner
	log         *logrus.Entry
}

func New(t Transcriber, r Runner, log *logrus.Entry) *Processor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Processor{transcriber: t, runner: r, log: log.WithField("component", "processor")}
}

// ProcessCall transcribes s3://bucket/key and extracts its record. The
// result is filled as far as the run got, also on error.
func (p *Processor) ProcessCall(ctx context.Context, bucket, key string) (CallResult, error) {
	start := time.Now()
	res := CallResult{Bucket: bucket, Key: key}
	log := p.log.WithFields(logrus.Fields{"bucket": bucket, "key": key})

	outputKey, err := p.transcriber.Transcribe(ctx, bucket, key)
	if err != nil {
		log.WithError(err).Error("transcription failed")
		res.Error = err.Error()
		res.DurationMs = time.Since(start).Milliseconds()
		return res, err
	}
	res.OutputKey = outputKey

	out, err := p.runner.Run(ctx, pipeline.Event{OutputKey: outputKey})
	res.Record = out.Record
	res.Statement = out.Statement
	res.ExecutionID = out.ExecutionID
	res.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	return res, nil
}
