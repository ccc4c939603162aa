package main

import (
	"github.com/spf13/cobra"
)

func newProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process <bucket> <key>",
		Short: "Transcribe a recording and run the pipeline on the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Processor.ProcessCall(cmd.Context(), args[0], args[1])
			if perr := printResult(cmd.OutOrStdout(), res); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
}
