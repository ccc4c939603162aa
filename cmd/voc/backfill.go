package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voc-insights-go/internal/aggregator"
	"voc-insights-go/internal/dataset"
	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/logger"
	"voc-insights-go/internal/pipeline"
	"voc-insights-go/internal/types"
)

type backfillOutput struct {
	Report  string             `json:"report,omitempty"`
	Summary aggregator.Summary `json:"summary"`
}

func newBackfillCommand() *cobra.Command {
	var (
		report      string
		concurrency int
		limit       int
	)
	cmd := &cobra.Command{
		Use:   "backfill <manifest.xlsx>",
		Short: "Run the pipeline for every transcript listed in a manifest",
		Long: `Backfill reads transcript keys from the first sheet of an xlsx manifest and
runs the pipeline for each. A failed transcript does not stop the others.

With --report the per-transcript outcomes and the aggregate summary are
written to an xlsx workbook.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := dataset.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			a, log, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			log.WithField("transcripts", len(entries)).Info("backfill started")

			outcomes := runAll(cmd.Context(), a.Driver, entries, concurrency, func(key string) *logrus.Entry {
				return log.WithRun(key)
			})
			summary := aggregator.Aggregate(outcomes)

			if report != "" {
				if err := dataset.WriteReport(report, outcomes, summary); err != nil {
					return err
				}
			}
			if err := printResult(cmd.OutOrStdout(), backfillOutput{Report: report, Summary: summary}); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d transcripts failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&report, "report", "", "Write an xlsx report to this path")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Transcripts processed in parallel")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process at most this many transcripts")
	return cmd
}

type runner interface {
	Run(ctx context.Context, ev pipeline.Event) (pipeline.Result, error)
}

// runAll runs every entry and returns outcomes in manifest order.
func runAll(ctx context.Context, r runner, entries []dataset.ManifestEntry, concurrency int, runLog func(string) *logrus.Entry) []types.Outcome {
	if concurrency < 1 {
		concurrency = 1
	}
	outcomes := make([]types.Outcome, len(entries))

	var g errgroup.Group
	g.SetLimit(concurrency)
	var mu sync.Mutex
	done := 0
	for i, e := range entries {
		g.Go(func() error {
			start := time.Now()
			log := runLog(e.OutputKey).WithField("row", e.Row)
			res, err := r.Run(logger.NewContext(ctx, log), pipeline.Event{OutputKey: e.OutputKey})
			o := types.Outcome{
				OutputKey:   e.OutputKey,
				Record:      res.Record,
				ExecutionID: res.ExecutionID,
				DurationMs:  time.Since(start).Milliseconds(),
			}
			if err != nil {
				o.Record = nil
				o.Error = err.Error()
				o.ErrorCode = string(vocerr.CodeOf(err))
				o.Retryable = vocerr.IsRetryable(err)
			}
			outcomes[i] = o

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			log.WithFields(logrus.Fields{
				"progress": fmt.Sprintf("%d/%d", n, len(entries)),
				"ok":       err == nil,
			}).Info("transcript done")
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
