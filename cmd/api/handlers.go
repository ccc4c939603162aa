package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/logger"
	"voc-insights-go/internal/pipeline"
	"voc-insights-go/internal/processor"
)

type runner interface {
	Run(ctx context.Context, ev pipeline.Event) (pipeline.Result, error)
}

type callProcessor interface {
	ProcessCall(ctx context.Context, bucket, key string) (processor.CallResult, error)
}

type eventHandler interface {
	HandleEvent(ctx context.Context, data []byte) (string, error)
}

type server struct {
	log       *logger.Logger
	runner    runner
	processor callProcessor
	trigger   eventHandler
	gatherer  prometheus.Gatherer
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /extract", s.extract)
	mux.HandleFunc("POST /process", s.process)
	mux.HandleFunc("POST /trigger", s.triggerEvent)
	return mux
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	s.log.WithRequest(r).Debug("health check")
	fmt.Fprint(w, "ok")
}

// extract runs the pipeline for an existing transcription. The key comes
// from ?output_key= or a {"output_key": ...} body.
func (s *server) extract(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "extract")

	ev := pipeline.Event{OutputKey: r.URL.Query().Get("output_key")}
	if ev.OutputKey == "" && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil && err != io.EOF {
			reqLog.WithError(err).Warn("invalid body")
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}
	if ev.OutputKey == "" {
		reqLog.Warn("missing output_key")
		http.Error(w, "missing output_key", http.StatusBadRequest)
		return
	}
	reqLog = reqLog.WithField("output_key", ev.OutputKey)
	reqLog.Info("extract request received")

	res, err := s.runner.Run(logger.NewContext(r.Context(), reqLog), ev)
	if err != nil {
		reqLog.WithError(err).Warn("pipeline returned error")
		writeError(w, err)
		return
	}
	reqLog.WithField("execution_id", res.ExecutionID).Info("extract finished")
	writeJSON(w, http.StatusOK, res)
}

func (s *server) process(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "process")

	bucket, key := r.URL.Query().Get("bucket"), r.URL.Query().Get("key")
	if bucket == "" || key == "" {
		reqLog.Warn("missing bucket or key")
		http.Error(w, "missing bucket or key", http.StatusBadRequest)
		return
	}
	reqLog = reqLog.WithField("bucket", bucket).WithField("key", key)
	reqLog.Info("process request received")

	res, err := s.processor.ProcessCall(logger.NewContext(r.Context(), reqLog), bucket, key)
	reqLog.WithField("duration_ms", res.DurationMs).Info("processor finished")
	if err != nil {
		reqLog.WithError(err).Warn("processor returned error")
		writeJSON(w, statusFor(err), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) triggerEvent(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "trigger")

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	arn, err := s.trigger.HandleEvent(r.Context(), body)
	if err != nil {
		reqLog.WithError(err).Warn("trigger failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"execution_arn": arn})
}

// statusFor maps a pipeline failure to a response code: bad input is 422,
// a transient collaborator failure is 503.
func statusFor(err error) int {
	switch vocerr.CodeOf(err) {
	case vocerr.ErrParse, vocerr.ErrMalformedTranscript, vocerr.ErrMalformedModelOutput, vocerr.ErrInvalidRecord:
		return http.StatusUnprocessableEntity
	}
	if vocerr.IsRetryable(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{
		Error:     err.Error(),
		Code:      string(vocerr.CodeOf(err)),
		Retryable: vocerr.IsRetryable(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
