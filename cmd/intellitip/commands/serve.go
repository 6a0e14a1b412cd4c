package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/intellitip/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	var opts app.ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer newline-delimited JSON hover requests on stdin",
		Long: "Read one JSON hover request per line from stdin and write one JSON response\n" +
			"per line to stdout. Responses carry the id of their request and may arrive\n" +
			"out of order when --concurrency is above one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := c.app.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 4, "Maximum number of requests handled at once")
	cmd.Flags().BoolVar(&opts.JSONLogs, "json-logs", false, "Write diagnostic logs to stderr as JSON lines")

	return cmd
}
