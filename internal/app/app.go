// Package app wires the pipeline's collaborators from process settings.
package app

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	awsx "voc-insights-go/internal/aws"
	"voc-insights-go/internal/config"
	"voc-insights-go/internal/events"
	"voc-insights-go/internal/extractor"
	"voc-insights-go/internal/metrics"
	"voc-insights-go/internal/pipeline"
	"voc-insights-go/internal/processor"
	"voc-insights-go/internal/prompt"
	"voc-insights-go/internal/query"
	"voc-insights-go/internal/transcription"
	"voc-insights-go/internal/trigger"
)

// App holds the wired components shared by the HTTP service and the CLI.
type App struct {
	Settings   config.Settings
	Parameters config.ParameterGetter
	Blobs      pipeline.BlobWriter
	Driver     *pipeline.Driver
	Processor  *processor.Processor
	Trigger    *trigger.Trigger
	Publisher  *events.Publisher
	Metrics    *metrics.Metrics

	redis *redis.Client
}

// New builds every component. AWS clients are created lazily by the SDK, so
// a fully mocked setup never touches the network.
func New(ctx context.Context, s config.Settings, m *metrics.Metrics, log *logrus.Entry) (*App, error) {
	cfg, err := awsx.Load(ctx, s.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	a := &App{Settings: s, Metrics: m}

	if s.UseEnvParameters {
		a.Parameters = config.EnvParameters{}
	} else {
		a.Parameters = awsx.NewParameters(cfg)
	}

	var store prompt.TemplateStore = awsx.NewPrompts(cfg)
	if s.PromptDir != "" {
		store = prompt.FileStore{Dir: s.PromptDir}
	}
	var cache prompt.Cache = prompt.NewMemoryCache()
	if s.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		cache = prompt.NewRedisCache(a.redis, s.PromptCacheTTL)
	}
	resolver := prompt.NewResolver(store, cache, log)

	ext := extractor.New(resolver, modelInvoker(s, cfg, log),
		extractor.WithModelTimeout(s.ModelTimeout),
		extractor.WithMetrics(m),
		extractor.WithLogger(log),
	)

	a.Publisher = events.New(events.Config{
		Brokers: s.KafkaBrokers,
		Topic:   s.KafkaTopic,
		Enabled: len(s.KafkaBrokers) > 0,
	}, log, uuid.NewString)

	objects := awsx.NewObjects(cfg)
	a.Blobs = objects
	a.Driver = pipeline.New(pipeline.Deps{
		Parameters:      a.Parameters,
		ParameterPrefix: s.ParameterPrefix,
		Blobs:           objects,
		Extractor:       ext,
		Builder:         query.NewBuilder(),
		Queries:         awsx.NewQueries(cfg),
		Publisher:       a.Publisher,
		QueryTimeout:    s.QueryTimeout,
		Metrics:         m,
		Log:             log.WithField("component", "pipeline"),
	})

	client := transcription.NewClient("", log)
	client.Mock = s.UseMockTranscribe
	a.Processor = processor.New(&paramTranscriber{base: client, params: a.Parameters, prefix: s.ParameterPrefix}, a.Driver, log)

	a.Trigger = trigger.New(awsx.NewWorkflows(cfg), s.StateMachineARN, m, log)
	return a, nil
}

func modelInvoker(s config.Settings, cfg sdkaws.Config, log *logrus.Entry) extractor.ModelInvoker {
	switch {
	case s.UseMockLLM:
		log.Info("using mock text model")
		return &extractor.MockInvoker{}
	case s.LLMGatewayURL != "":
		log.WithField("url", s.LLMGatewayURL).Info("using llm gateway")
		return extractor.NewGatewayInvoker(s.LLMGatewayURL, s.LLMAPIKey, log)
	default:
		return awsx.NewModels(cfg)
	}
}

func (a *App) Close() error {
	err := a.Publisher.Close()
	if a.redis != nil {
		if cerr := a.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// paramTranscriber reads the service url and output prefix from the
// parameter store on every call, so a parameter change needs no restart.
type paramTranscriber struct {
	base   *transcription.Client
	params config.ParameterGetter
	prefix string
}

func (t *paramTranscriber) Transcribe(ctx context.Context, bucket, key string) (string, error) {
	p, err := config.LoadParameters(ctx, t.params, t.prefix)
	if err != nil {
		return "", err
	}
	c := *t.base
	c.URL = p.TranscriptionAPIURL
	c.OutputPrefix = p.OutputTranscribeKey
	return c.Transcribe(ctx, bucket, key)
}
