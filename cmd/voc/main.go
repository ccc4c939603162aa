// Command voc runs the voice-of-customer pipeline from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"voc-insights-go/internal/app"
	"voc-insights-go/internal/config"
	"voc-insights-go/internal/logger"
	"voc-insights-go/internal/metrics"
)

var (
	outputFormat string
	mockLLM      bool
	mockASR      bool
	envParams    bool
	promptDir    string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "voc",
		Short: "Voice-of-customer transcript pipeline",
		Long: `voc extracts structured insights from call transcriptions and loads them
into the analytics table.

Settings are read from the environment (and a .env file if present). Run
parameters come from the parameter store under PARAMETER_PREFIX, or from
VOC_* environment variables with --env-params.

COMMON WORKFLOWS:
  One transcript:   voc extract TranscribedOutput/<name>.wav.json
  Dry run:          voc render ./<name>.wav.json --mock-llm --env-params
  Audio to table:   voc process <bucket> <key>
  Bulk reprocess:   voc backfill manifest.xlsx --report report.xlsx`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "Output format: json or yaml")
	root.PersistentFlags().BoolVar(&mockLLM, "mock-llm", false, "Use the canned model response")
	root.PersistentFlags().BoolVar(&mockASR, "mock-transcribe", false, "Skip the transcription service")
	root.PersistentFlags().BoolVar(&envParams, "env-params", false, "Read run parameters from VOC_* environment variables")
	root.PersistentFlags().StringVar(&promptDir, "prompt-dir", "", "Read prompt definitions from this directory")

	root.AddCommand(
		newExtractCommand(),
		newRenderCommand(),
		newProcessCommand(),
		newTriggerCommand(),
		newBackfillCommand(),
	)
	return root
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// settings applies the persistent flags on top of the environment.
func settings() config.Settings {
	s := config.Load()
	s.UseMockLLM = s.UseMockLLM || mockLLM
	s.UseMockTranscribe = s.UseMockTranscribe || mockASR
	s.UseEnvParameters = s.UseEnvParameters || envParams
	if promptDir != "" {
		s.PromptDir = promptDir
	}
	return s
}

// newApp wires the pipeline for one command invocation. Logs go to stderr
// so stdout carries only the command's output.
func newApp(ctx context.Context) (*app.App, *logger.Logger, error) {
	log := logger.NewWithOutput(os.Stderr)
	a, err := app.New(ctx, settings(), metrics.New(prometheus.NewRegistry()), log.Entry)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

func printResult(w io.Writer, v any) error {
	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(toYAMLValue(v))
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}

// toYAMLValue round-trips v through JSON so yaml output uses the json field
// names.
func toYAMLValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}
