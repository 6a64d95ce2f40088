package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sportanalyzer/internal/logging"
	"sportanalyzer/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var sessionID string
	var raw bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Logging.Dir) == "" {
				return errors.New("logging.dir is not configured; set it to keep a log file")
			}
			path := filepath.Join(cfg.Logging.Dir, logging.LogFileName)

			opts := logs.TailOptions{Lines: lines, Follow: follow}
			if sessionID != "" {
				opts.Match = logs.SessionFilter(sessionID)
			}
			out := cmd.OutOrStdout()
			err = logs.Tail(cmd.Context(), path, opts, func(line string) {
				if !raw {
					if entry, ok := logs.ParseEntry(line); ok {
						line = entry.Format()
					}
				}
				fmt.Fprintln(out, line)
			})
			if follow && errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only show records for this session id")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw JSON records")
	return cmd
}
