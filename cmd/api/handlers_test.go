package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/logger"
	"voc-insights-go/internal/pipeline"
	"voc-insights-go/internal/processor"
)

type stubRunner struct {
	got pipeline.Event
	err error
}

func (s *stubRunner) Run(_ context.Context, ev pipeline.Event) (pipeline.Result, error) {
	s.got = ev
	if s.err != nil {
		return pipeline.Result{OutputKey: ev.OutputKey}, s.err
	}
	return pipeline.Result{OutputKey: ev.OutputKey, ExecutionID: "qe-1", Statement: "INSERT INTO x.y (a) VALUES (1)"}, nil
}

type stubProcessor struct {
	err error
}

func (s *stubProcessor) ProcessCall(_ context.Context, bucket, key string) (processor.CallResult, error) {
	res := processor.CallResult{Bucket: bucket, Key: key}
	if s.err != nil {
		res.Error = s.err.Error()
		return res, s.err
	}
	res.OutputKey = "TranscribedOutput/a.wav.json"
	return res, nil
}

type stubTrigger struct {
	body string
	err  error
}

func (s *stubTrigger) HandleEvent(_ context.Context, data []byte) (string, error) {
	s.body = string(data)
	return "arn:exec", s.err
}

func newTestServer(r *stubRunner, p *stubProcessor, tr *stubTrigger) *httptest.Server {
	s := &server{
		log:       logger.NewWithOutput(io.Discard),
		runner:    r,
		processor: p,
		trigger:   tr,
		gatherer:  prometheus.NewRegistry(),
	}
	return httptest.NewServer(s.routes())
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubRunner{}, &stubProcessor{}, &stubTrigger{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestExtract(t *testing.T) {
	r := &stubRunner{}
	srv := newTestServer(r, &stubProcessor{}, &stubTrigger{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/extract", "application/json", strings.NewReader(`{"output_key":"TranscribedOutput/a.json"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TranscribedOutput/a.json", r.got.OutputKey)

	var res pipeline.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "qe-1", res.ExecutionID)

	resp2, err := http.Post(srv.URL+"/extract?output_key=k2", "application/json", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, "k2", r.got.OutputKey)
}

func TestExtract_MissingKey(t *testing.T) {
	srv := newTestServer(&stubRunner{}, &stubProcessor{}, &stubTrigger{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/extract", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtract_ErrorStatus(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"bad filename":   {vocerr.New(vocerr.ErrParse, "extract", "bad name"), http.StatusUnprocessableEntity},
		"model output":   {vocerr.New(vocerr.ErrMalformedModelOutput, "extract", "not json"), http.StatusUnprocessableEntity},
		"athena down":    {vocerr.New(vocerr.ErrQuerySubmission, "submit", "throttled"), http.StatusServiceUnavailable},
		"missing config": {vocerr.New(vocerr.ErrConfig, "config", "no bucket"), http.StatusInternalServerError},
		"unclassified":   {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(&stubRunner{err: c.err}, &stubProcessor{}, &stubTrigger{})
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/extract?output_key=k", "application/json", nil)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, c.status, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, string(vocerr.CodeOf(c.err)), body.Code)
		})
	}
}

func TestProcess(t *testing.T) {
	srv := newTestServer(&stubRunner{}, &stubProcessor{}, &stubTrigger{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/process?bucket=voc-input&key=a.wav", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res processor.CallResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "TranscribedOutput/a.wav.json", res.OutputKey)

	resp2, err := http.Post(srv.URL+"/process?bucket=voc-input", "", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestProcess_TranscriptionFailure(t *testing.T) {
	p := &stubProcessor{err: vocerr.New(vocerr.ErrTranscription, "transcribe", "connection refused")}
	srv := newTestServer(&stubRunner{}, p, &stubTrigger{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/process?bucket=b&key=k", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var res processor.CallResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Contains(t, res.Error, "connection refused")
}

func TestTrigger(t *testing.T) {
	tr := &stubTrigger{}
	srv := newTestServer(&stubRunner{}, &stubProcessor{}, tr)
	defer srv.Close()

	event := `{"Records":[{"s3":{"bucket":{"name":"b"},"object":{"key":"a.wav"}}}]}`
	resp, err := http.Post(srv.URL+"/trigger", "application/json", strings.NewReader(event))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, event, tr.body)

	tr.err = vocerr.New(vocerr.ErrParse, "trigger", "no records")
	resp2, err := http.Post(srv.URL+"/trigger", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp2.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubRunner{}, &stubProcessor{}, &stubTrigger{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/extract?output_key=k")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
