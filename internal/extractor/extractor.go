// Package extractor turns a transcription payload into an ExtractedRecord:
// identity from the filename, timing from the segments, and categorical and
// free-text fields from a prompt-driven text model.
package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/filename"
	"voc-insights-go/internal/logger"
	"voc-insights-go/internal/metrics"
	"voc-insights-go/internal/types"
)

// ConversationLocation is stored for every call until location detection
// exists.
const ConversationLocation = "Hong Kong"

// TemplateResolver resolves a prompt variant.
type TemplateResolver interface {
	Resolve(ctx context.Context, identifier, version, variant string) (types.PromptTemplate, error)
}

// Extractor assembles ExtractedRecords. Collaborators are injected once and
// shared by every run; an Extractor holds no per-run state.
type Extractor struct {
	resolver     TemplateResolver
	invoker      ModelInvoker
	placeholder  Placeholder
	modelTimeout time.Duration
	metrics      *metrics.Metrics
	log          *logrus.Entry
}

// Option customizes an Extractor.
type Option func(*Extractor)

func WithPlaceholder(p Placeholder) Option {
	return func(e *Extractor) { e.placeholder = p }
}

func WithModelTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.modelTimeout = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

func WithLogger(l *logrus.Entry) Option {
	return func(e *Extractor) { e.log = l }
}

func New(resolver TemplateResolver, invoker ModelInvoker, opts ...Option) *Extractor {
	e := &Extractor{
		resolver:     resolver,
		invoker:      invoker,
		placeholder:  NewRandomPlaceholder(0),
		modelTimeout: 60 * time.Second,
		log:          logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.WithField("component", "extractor")
	return e
}

// Extract runs every extraction step in order; the first failure aborts the
// run and no partial record is returned.
func (e *Extractor) Extract(ctx context.Context, transcriptFilename string, payload types.TranscriptionPayload, promptIdentifier, promptVersion, promptVariant string) (*types.ExtractedRecord, error) {
	log := logger.FromContext(ctx, e.log).WithField("transcript", transcriptFilename)

	info, err := filename.Parse(transcriptFilename)
	if err != nil {
		log.WithError(err).Error("filename parse failed")
		return nil, err
	}
	conversationTime, err := filename.NormalizeTimestamp(info.TimestampToken)
	if err != nil {
		log.WithError(err).Error("timestamp normalize failed")
		return nil, err
	}

	duration, err := ConversationDuration(payload.Segments)
	if err != nil {
		log.WithError(err).Error("duration failed")
		return nil, err
	}

	scores := e.placeholder.Scores(payload.Text)

	tmpl, err := e.resolver.Resolve(ctx, promptIdentifier, promptVersion, promptVariant)
	if err != nil {
		log.WithError(err).Error("prompt resolve failed")
		return nil, err
	}

	out, err := e.invokeModel(ctx, tmpl, payload.Text, log)
	if err != nil {
		return nil, err
	}

	return &types.ExtractedRecord{
		GUID:                    info.ConversationGUID,
		FileName:                info.Filename,
		CallNature:              out.CallNature,
		Summary:                 out.Summary,
		Agent:                   info.Agent,
		CustomerID:              info.CustomerID,
		ConversationTime:        conversationTime,
		ConversationDuration:    duration,
		ConversationLocation:    ConversationLocation,
		LanguageCode:            payload.Language,
		RelatedProducts:         out.RelatedProducts,
		RelatedLocation:         out.RelatedLocation,
		ActionItemsDetectedText: out.ActionItemsDetectedText,
		IssuesDetectedText:      out.IssuesDetectedText,
		OutcomesDetectedText:    out.OutcomesDetectedText,
		CategoriesDetectedText:  out.CategoriesDetectedText,
		CustomEntities:          out.CustomEntities,
		CategoriesDetected:      out.CategoriesDetected,
		CustomerSentimentScore:  scores.CustomerSentiment,
		AgentSentimentScore:     scores.AgentSentiment,
		CustomerTotalTimeSecs:   scores.CustomerTotalSecs,
		AgentTotalTimeSecs:      scores.AgentTotalSecs,
		RawTranscriptText:       payload.Text,
		RawSegments:             payload.Segments,
	}, nil
}

func (e *Extractor) invokeModel(ctx context.Context, tmpl types.PromptTemplate, transcript string, log *logrus.Entry) (ModelOutput, error) {
	body, err := BuildModelRequest(tmpl, transcript)
	if err != nil {
		return ModelOutput{}, vocerr.Wrap(err, vocerr.ErrModelInvocation, "model", "encode model request")
	}

	ctx, cancel := context.WithTimeout(ctx, e.modelTimeout)
	defer cancel()

	start := time.Now()
	resp, err := e.invoker.InvokeTextModel(ctx, tmpl.ModelID, body)
	e.metrics.ObserveModel(tmpl.ModelID, time.Since(start), err)
	log = log.WithFields(logrus.Fields{"model_id": tmpl.ModelID, "duration_ms": time.Since(start).Milliseconds()})
	if err != nil {
		err = vocerr.Wrap(err, vocerr.ErrModelInvocation, "model", fmt.Sprintf("invoke %s", tmpl.ModelID))
		log.WithError(err).Error("model invocation failed")
		return ModelOutput{}, err
	}

	out, err := ParseModelResponse(resp)
	if err != nil {
		log.WithError(err).WithField("response", trimBody(resp)).Error("model output rejected")
		return ModelOutput{}, err
	}
	log.Debug("model output parsed")
	return out, nil
}

// ConversationDuration is the span from the first segment's start to the
// last segment's end.
func ConversationDuration(segments []types.Segment) (float64, error) {
	if len(segments) == 0 {
		return 0, vocerr.New(vocerr.ErrMalformedTranscript, "duration", "transcription has no segments")
	}
	return segments[len(segments)-1].End - segments[0].Start, nil
}
