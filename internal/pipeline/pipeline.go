// Package pipeline drives one transcript through extraction and into the
// analytics table.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"voc-insights-go/internal/config"
	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/filename"
	"voc-insights-go/internal/logger"
	"voc-insights-go/internal/metrics"
	"voc-insights-go/internal/query"
	"voc-insights-go/internal/types"
)

// BlobReader reads a whole object.
type BlobReader interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// BlobWriter stores a whole object.
type BlobWriter interface {
	WriteObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// QuerySubmitter starts a statement and returns its execution id without
// waiting for completion.
type QuerySubmitter interface {
	SubmitQuery(ctx context.Context, statement, database, workGroup string) (string, error)
}

// RecordPublisher announces a submitted record to downstream consumers.
type RecordPublisher interface {
	PublishRecord(ctx context.Context, rec *types.ExtractedRecord) error
}

// RecordExtractor builds an ExtractedRecord from a transcription payload.
type RecordExtractor interface {
	Extract(ctx context.Context, transcriptFilename string, payload types.TranscriptionPayload, promptIdentifier, promptVersion, promptVariant string) (*types.ExtractedRecord, error)
}

// Event is the workflow input of one run.
type Event struct {
	OutputKey string `json:"output_key"`
}

// Result is what a successful run produced.
type Result struct {
	OutputKey   string                 `json:"output_key"`
	Record      *types.ExtractedRecord `json:"record"`
	Statement   string                 `json:"statement"`
	ExecutionID string                 `json:"execution_id"`
	DurationMs  int64                  `json:"duration_ms"`
}

// Deps are the collaborators of a Driver. Publisher, Metrics and Log are
// optional.
type Deps struct {
	Parameters      config.ParameterGetter
	ParameterPrefix string
	Blobs           BlobReader
	Extractor       RecordExtractor
	Builder         *query.Builder
	Queries         QuerySubmitter
	Publisher       RecordPublisher
	QueryTimeout    time.Duration
	Metrics         *metrics.Metrics
	Log             *logrus.Entry
	Now             func() time.Time
}

// Driver runs the stages of one invocation strictly in order. It keeps no
// state between runs, so one Driver may serve concurrent invocations.
type Driver struct {
	Deps
}

func New(d Deps) *Driver {
	if d.Builder == nil {
		d.Builder = query.NewBuilder()
	}
	if d.QueryTimeout <= 0 {
		d.QueryTimeout = 30 * time.Second
	}
	if d.ParameterPrefix == "" {
		d.ParameterPrefix = "/voc"
	}
	if d.Log == nil {
		d.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Driver{Deps: d}
}

// Run processes the transcript at ev.OutputKey. Any stage failure ends the
// run; the statement is submitted only once the full record is built. A
// logger placed in ctx with logger.NewContext tags every line of the run.
func (d *Driver) Run(ctx context.Context, ev Event) (Result, error) {
	start := time.Now()
	log := logger.FromContext(ctx, d.Log).WithField("output_key", ev.OutputKey)
	res := Result{OutputKey: ev.OutputKey}

	res, err := d.run(ctx, ev, res, log)
	res.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		d.Metrics.ObserveRun("failure", time.Since(start))
		return res, err
	}
	d.Metrics.ObserveRun("success", time.Since(start))
	log.WithFields(logrus.Fields{
		"execution_id": res.ExecutionID,
		"duration_ms":  res.DurationMs,
	}).Info("transcript processed")
	return res, nil
}

func (d *Driver) run(ctx context.Context, ev Event, res Result, log *logrus.Entry) (Result, error) {
	if ev.OutputKey == "" {
		return res, d.fail(log, "event", vocerr.New(vocerr.ErrParse, "event", "output_key is empty"))
	}

	var params config.Parameters
	err := d.stage("config", log, func() (err error) {
		params, err = config.LoadParameters(ctx, d.Parameters, d.ParameterPrefix)
		return err
	})
	if err != nil {
		return res, err
	}

	var payload types.TranscriptionPayload
	err = d.stage("read", log, func() error {
		data, err := d.Blobs.ReadObject(ctx, params.OutputBucket, ev.OutputKey)
		if err != nil {
			return vocerr.Wrap(err, vocerr.ErrStorage, "read", "read transcription")
		}
		payload, err = DecodePayload(data)
		return err
	})
	if err != nil {
		return res, err
	}

	err = d.stage("extract", log, func() (err error) {
		res.Record, res.Statement, err = d.Render(ctx, ev.OutputKey, payload, params)
		return err
	})
	if err != nil {
		return res, err
	}

	err = d.stage("submit", log, func() (err error) {
		qctx, cancel := context.WithTimeout(ctx, d.QueryTimeout)
		defer cancel()
		res.ExecutionID, err = d.Queries.SubmitQuery(qctx, res.Statement, params.Database, params.WorkGroup)
		return vocerr.Wrap(err, vocerr.ErrQuerySubmission, "submit", "submit statement")
	})
	if err != nil {
		return res, err
	}

	if d.Publisher != nil {
		perr := d.Publisher.PublishRecord(ctx, res.Record)
		d.Metrics.RecordPublish(perr)
		if perr != nil {
			log.WithError(perr).Warn("record event not published")
		}
	}
	return res, nil
}

// Render extracts the record for key and builds its statement without
// submitting anything.
func (d *Driver) Render(ctx context.Context, key string, payload types.TranscriptionPayload, params config.Parameters) (*types.ExtractedRecord, string, error) {
	rec, err := d.Extractor.Extract(ctx, key, payload, params.PromptIdentifier, params.PromptVersion, params.PromptVariant)
	if err != nil {
		return nil, "", err
	}
	rec.SysS3Path = key
	rec.SysProcessTime = filename.FormatProcessTime(d.Now())

	stmt, err := d.Builder.Build(rec, params.Database, params.Table)
	if err != nil {
		return rec, "", err
	}
	return rec, stmt, nil
}

// DecodePayload parses a transcription document.
func DecodePayload(data []byte) (types.TranscriptionPayload, error) {
	var p types.TranscriptionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, vocerr.Wrap(err, vocerr.ErrMalformedTranscript, "read", "decode transcription")
	}
	return p, nil
}

func (d *Driver) stage(name string, log *logrus.Entry, fn func() error) error {
	start := time.Now()
	err := fn()
	d.Metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		return d.fail(log, name, err)
	}
	return nil
}

func (d *Driver) fail(log *logrus.Entry, stage string, err error) error {
	code := vocerr.CodeOf(err)
	d.Metrics.RecordError(stage, string(code))
	log.WithFields(logrus.Fields{
		"stage":     stage,
		"code":      code,
		"retryable": vocerr.IsRetryable(err),
	}).WithError(err).Error("pipeline stage failed")
	return err
}
