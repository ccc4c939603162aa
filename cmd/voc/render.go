package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"voc-insights-go/internal/config"
	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/pipeline"
)

type renderOutput struct {
	Record    any    `json:"record"`
	Statement string `json:"statement"`
	Uploaded  string `json:"uploaded,omitempty"`
}

func newRenderCommand() *cobra.Command {
	var key, upload string
	cmd := &cobra.Command{
		Use:   "render <transcription.json>",
		Short: "Extract a local transcription and print the statement without submitting",
		Long: `Render reads a transcription document from disk, runs extraction and prints
the record with the INSERT statement it would submit. Nothing is written.

The file name is parsed as the transcript key unless --key is given. With
--upload the statement is also written to that key in the output bucket, so
it can be reviewed or run by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcription: %w", err)
			}
			payload, err := pipeline.DecodePayload(data)
			if err != nil {
				return err
			}

			a, _, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			params, err := config.LoadParameters(cmd.Context(), a.Parameters, a.Settings.ParameterPrefix)
			if err != nil {
				return err
			}
			if key == "" {
				key = filepath.Base(args[0])
			}
			rec, stmt, err := a.Driver.Render(cmd.Context(), key, payload, params)
			if err != nil {
				return err
			}
			out := renderOutput{Record: rec, Statement: stmt}
			if upload != "" {
				if err := uploadStatement(cmd.Context(), a.Blobs, params.OutputBucket, upload, stmt); err != nil {
					return err
				}
				out.Uploaded = "s3://" + params.OutputBucket + "/" + upload
			}
			return printResult(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Transcript key to record instead of the file name")
	cmd.Flags().StringVar(&upload, "upload", "", "Also write the statement to this key in the output bucket")
	return cmd
}

func uploadStatement(ctx context.Context, w pipeline.BlobWriter, bucket, key, stmt string) error {
	if err := w.WriteObject(ctx, bucket, key, []byte(stmt+";\n"), "application/sql"); err != nil {
		return vocerr.Wrap(err, vocerr.ErrStorage, "render", "upload statement")
	}
	return nil
}
