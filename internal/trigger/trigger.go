// Package trigger starts the processing workflow for newly uploaded
// recordings.
package trigger

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"

	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/metrics"
)

const stage = "trigger"

// S3Event is the subset of an S3 event notification the trigger reads.
type S3Event struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// Input is the workflow input of one recording.
type Input struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// WorkflowStarter starts a state machine execution and returns its id.
type WorkflowStarter interface {
	StartExecution(ctx context.Context, stateMachineARN string, input []byte) (string, error)
}

// ParseEvent reads the uploaded object from the first record of an S3
// event. Keys arrive URL-encoded.
func ParseEvent(data []byte) (Input, error) {
	var ev S3Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Input{}, vocerr.Wrap(err, vocerr.ErrParse, stage, "decode s3 event")
	}
	if len(ev.Records) == 0 {
		return Input{}, vocerr.New(vocerr.ErrParse, stage, "s3 event has no records")
	}
	rec := ev.Records[0].S3
	key, err := url.QueryUnescape(rec.Object.Key)
	if err != nil {
		return Input{}, vocerr.Wrap(err, vocerr.ErrParse, stage, "decode object key")
	}
	if rec.Bucket.Name == "" || key == "" {
		return Input{}, vocerr.New(vocerr.ErrParse, stage, "s3 event has no bucket or key")
	}
	return Input{Bucket: rec.Bucket.Name, Key: key}, nil
}

// Trigger hands uploads to the workflow.
type Trigger struct {
	starter         WorkflowStarter
	stateMachineARN string
	metrics         *metrics.Metrics
	log             *logrus.Entry
}

func New(starter WorkflowStarter, stateMachineARN string, m *metrics.Metrics, log *logrus.Entry) *Trigger {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Trigger{starter: starter, stateMachineARN: stateMachineARN, metrics: m, log: log.WithField("component", "trigger")}
}

// Start launches one execution for in and returns the execution id.
func (t *Trigger) Start(ctx context.Context, in Input) (string, error) {
	if t.stateMachineARN == "" {
		return "", vocerr.New(vocerr.ErrConfig, stage, "STATE_MACHINE_ARN not set")
	}
	body, err := json.Marshal(in)
	if err != nil {
		return "", vocerr.Wrap(err, vocerr.ErrWorkflow, stage, "encode workflow input")
	}
	arn, err := t.starter.StartExecution(ctx, t.stateMachineARN, body)
	t.metrics.RecordTrigger(err)
	if err != nil {
		err = vocerr.Wrap(err, vocerr.ErrWorkflow, stage, "start execution")
		t.log.WithError(err).WithField("key", in.Key).Error("workflow not started")
		return "", err
	}
	t.log.WithFields(logrus.Fields{"bucket": in.Bucket, "key": in.Key, "execution_arn": arn}).Info("workflow started")
	return arn, nil
}

// HandleEvent parses an S3 event and starts its execution.
func (t *Trigger) HandleEvent(ctx context.Context, data []byte) (string, error) {
	in, err := ParseEvent(data)
	if err != nil {
		return "", err
	}
	return t.Start(ctx, in)
}
