package main

import (
	"github.com/spf13/cobra"

	"voc-insights-go/internal/pipeline"
)

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <output-key>",
		Short: "Run the pipeline for one stored transcription",
		Long: `Read the transcription at <output-key> from the output bucket, extract its
record with the configured prompt, and submit the INSERT statement.

The key must follow the recording naming convention, for example:
  TranscribedOutput/CUST_00001_GUID_0000_AGENT_MelodyL_DT_2024-10-01T14-02-40_ChinaTelecomWong.wav.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Driver.Run(cmd.Context(), pipeline.Event{OutputKey: args[0]})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}
