// Package config loads process settings from the environment and run
// parameters from the parameter store.
package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	vocerr "voc-insights-go/internal/errors"
)

// Settings are the process-level knobs read once at startup.
type Settings struct {
	Environment       string
	Port              string
	AWSRegion         string
	ParameterPrefix   string
	ModelTimeout      time.Duration
	QueryTimeout      time.Duration
	StateMachineARN   string
	RedisAddr         string
	PromptCacheTTL    time.Duration
	PromptDir         string
	KafkaBrokers      []string
	KafkaTopic        string
	LLMGatewayURL     string
	LLMAPIKey         string
	UseMockLLM        bool
	UseMockTranscribe bool
	UseEnvParameters  bool
}

// Load reads Settings from the environment, falling back to defaults on
// missing or unparsable values.
func Load() Settings {
	return Settings{
		Environment:       envOr("ENVIRONMENT", "local"),
		Port:              envOr("PORT", "8080"),
		AWSRegion:         envOr("AWS_REGION", "ap-east-1"),
		ParameterPrefix:   strings.TrimRight(envOr("PARAMETER_PREFIX", "/voc"), "/"),
		ModelTimeout:      envDuration("MODEL_TIMEOUT", 60*time.Second),
		QueryTimeout:      envDuration("QUERY_TIMEOUT", 30*time.Second),
		StateMachineARN:   os.Getenv("STATE_MACHINE_ARN"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		PromptCacheTTL:    envDuration("PROMPT_CACHE_TTL", 10*time.Minute),
		PromptDir:         os.Getenv("PROMPT_DIR"),
		KafkaBrokers:      envList("KAFKA_BROKERS"),
		KafkaTopic:        envOr("KAFKA_TOPIC", "voc.processed-transcription"),
		LLMGatewayURL:     os.Getenv("LLM_GATEWAY_URL"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		UseMockLLM:        envBool("USE_MOCK_LLM", false),
		UseMockTranscribe: envBool("USE_MOCK_TRANSCRIBE", false),
		UseEnvParameters:  envBool("USE_ENV_PARAMETERS", false),
	}
}

// ParameterGetter fetches named values from a parameter store. Names that
// do not exist are simply absent from the returned map.
type ParameterGetter interface {
	GetParameters(ctx context.Context, names []string) (map[string]string, error)
}

// Parameters are the per-run values kept in the parameter store.
type Parameters struct {
	OutputBucket        string
	Database            string
	Table               string
	PromptIdentifier    string
	PromptVersion       string
	PromptVariant       string
	WorkGroup           string
	TranscriptionAPIURL string
	OutputTranscribeKey string
}

const (
	ParamOutputBucket        = "OUTPUT_BUCKET"
	ParamDatabase            = "GLUE_DB"
	ParamTable               = "GLUE_TABLE_PROCESSED_TRANSCRIPTION"
	ParamPromptIdentifier    = "EXTRACT_ENTITY_PROMPT_IDENTIFIER"
	ParamPromptVersion       = "EXTRACT_ENTITY_PROMPT_VERSION"
	ParamPromptVariant       = "EXTRACT_ENTITY_PROMPT_VARIANT"
	ParamWorkGroup           = "ATHENA_WORKGROUP"
	ParamTranscriptionAPIURL = "TRANSCRIPTION_API_URL"
	ParamOutputTranscribeKey = "OUTPUT_TRANSCRIBE_KEY"
)

var parameterDefaults = map[string]string{
	ParamDatabase:            "voc_db",
	ParamTable:               "voc_processed_transcription",
	ParamPromptIdentifier:    "CI94EO0SIQ",
	ParamPromptVersion:       "6",
	ParamWorkGroup:           "primary",
	ParamTranscriptionAPIURL: "http://11.0.0.125:8000/asr",
	ParamOutputTranscribeKey: "TranscribedOutput",
}

var requiredParameters = []string{ParamOutputBucket}

// Optional parameters without a default. An unset prompt variant selects
// the prompt's declared default variant.
var optionalParameters = []string{ParamPromptVariant}

// LoadParameters fetches every run parameter under prefix. A missing
// required parameter is a config_error; optional ones take their defaults.
func LoadParameters(ctx context.Context, store ParameterGetter, prefix string) (Parameters, error) {
	names := append([]string{ParamOutputBucket}, optionalParameters...)
	for n := range parameterDefaults {
		names = append(names, n)
	}
	full := make([]string, len(names))
	for i, n := range names {
		full[i] = prefix + "/" + n
	}

	values, err := store.GetParameters(ctx, full)
	if err != nil {
		return Parameters{}, vocerr.Wrap(err, vocerr.ErrConfig, "config", "fetch parameters")
	}

	get := func(name string) string {
		if v := strings.TrimSpace(values[prefix+"/"+name]); v != "" {
			return v
		}
		return parameterDefaults[name]
	}
	for _, n := range requiredParameters {
		if get(n) == "" {
			return Parameters{}, vocerr.New(vocerr.ErrConfig, "config", "required parameter %s/%s not found", prefix, n)
		}
	}

	return Parameters{
		OutputBucket:        get(ParamOutputBucket),
		Database:            get(ParamDatabase),
		Table:               get(ParamTable),
		PromptIdentifier:    get(ParamPromptIdentifier),
		PromptVersion:       get(ParamPromptVersion),
		PromptVariant:       get(ParamPromptVariant),
		WorkGroup:           get(ParamWorkGroup),
		TranscriptionAPIURL: get(ParamTranscriptionAPIURL),
		OutputTranscribeKey: get(ParamOutputTranscribeKey),
	}, nil
}

// EnvParameters serves parameter lookups from environment variables, using
// the last path element of each name ("/voc/GLUE_DB" reads VOC_GLUE_DB).
type EnvParameters struct{}

func (EnvParameters) GetParameters(_ context.Context, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v := os.Getenv(envName(n)); v != "" {
			out[n] = v
		}
	}
	return out, nil
}

func envName(param string) string {
	s := strings.Trim(param, "/")
	s = strings.ReplaceAll(s, "/", "_")
	return strings.ToUpper(s)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envList(k string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(k), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
