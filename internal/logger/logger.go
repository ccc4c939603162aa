package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

func New() *Logger {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput builds the service logger writing to w. Local env gets the
// pretty console format, every other env gets JSON.
func NewWithOutput(w io.Writer) *Logger {
	base := logrus.New()

	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     w == os.Stdout,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(w)

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Entry: logrus.NewEntry(base).WithField("service", "voc-insights-go")}
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.New().String()
	}

	return l.WithFields(logrus.Fields{
		"req_id":     reqID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithRun tags every line of one pipeline run with its storage key and a
// run id, so concurrent runs can be told apart.
func (l *Logger) WithRun(outputKey string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"run_id":     uuid.New().String(),
		"output_key": outputKey,
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying entry, so code deeper in a run
// logs with the run's fields.
func NewContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the entry stored by NewContext with any fields of
// fallback it lacks, or fallback when ctx carries none.
func FromContext(ctx context.Context, fallback *logrus.Entry) *logrus.Entry {
	e, ok := ctx.Value(ctxKey{}).(*logrus.Entry)
	if !ok || e == nil {
		if fallback == nil {
			return logrus.NewEntry(logrus.StandardLogger())
		}
		return fallback
	}
	if fallback == nil {
		return e
	}
	extra := logrus.Fields{}
	for k, v := range fallback.Data {
		if _, ok := e.Data[k]; !ok {
			extra[k] = v
		}
	}
	return e.WithFields(extra)
}
