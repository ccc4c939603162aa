package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"voc-insights-go/internal/trigger"
)

func newTriggerCommand() *cobra.Command {
	var eventFile string
	cmd := &cobra.Command{
		Use:   "trigger [<bucket> <key>]",
		Short: "Start the workflow for an uploaded recording",
		Long: `Start one workflow execution, either for <bucket> <key> or for the object
named in an S3 event notification read from --event ("-" for stdin).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if eventFile == "" && len(args) != 2 {
				return fmt.Errorf("requires <bucket> <key> or --event")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var arn string
			if eventFile != "" {
				data, err := readEvent(cmd.InOrStdin(), eventFile)
				if err != nil {
					return err
				}
				arn, err = a.Trigger.HandleEvent(cmd.Context(), data)
				if err != nil {
					return err
				}
			} else {
				arn, err = a.Trigger.Start(cmd.Context(), trigger.Input{Bucket: args[0], Key: args[1]})
				if err != nil {
					return err
				}
			}
			return printResult(cmd.OutOrStdout(), map[string]string{"execution_arn": arn})
		},
	}
	cmd.Flags().StringVar(&eventFile, "event", "", "S3 event JSON file, or - for stdin")
	return cmd
}

func readEvent(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
