package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/eps-fdir/epsfdir/internal/database"
	"github.com/eps-fdir/epsfdir/internal/digest"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 10

// historyTimeLayout formats run start times.
const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous chart runs and model exports",
		Long: `History lists the chart runs and model exports recorded in the local
history database, newest first.

Examples:
  # Show the last 10 runs
  epsfdir history

  # Show the last 3 runs with every file they wrote
  epsfdir history -n 3 --files`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list")
	cmd.Flags().Bool("files", false,
		"List the files of every run")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("invalid limit %d: must be positive", limit)
	}
	files, err := cmd.Flags().GetBool("files")
	if err != nil {
		return err
	}

	setupLogger(cmd, cfg.Verbose)
	return runHistory(cmd.Context(), cfg.DBDir, limit, files, cmd.OutOrStdout())
}

// runHistory prints up to limit recorded runs from the database in dbDir.
func runHistory(ctx context.Context, dbDir string, limit int, files bool, out io.Writer) error {
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runs, err := db.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(out, "#%-4d %-7s %s (%s)  saved %d, failed %d, cancelled %d\n",
			r.ID, r.Kind,
			r.StartedAt.Local().Format(historyTimeLayout), humanize.Time(r.StartedAt),
			r.Saved, r.Failed, r.Cancelled)
		fmt.Fprintf(out, "      %s\n", r.OutputDir)
		if r.Detail != "" {
			fmt.Fprintf(out, "      %s\n", r.Detail)
		}
		if !files {
			continue
		}

		artifacts, err := db.RunArtifacts(ctx, r.ID)
		if err != nil {
			return err
		}
		for _, a := range artifacts {
			line := fmt.Sprintf("      - %-6s %-9s %s", a.Role, a.Status, a.Name)
			if a.Bytes > 0 {
				line += ", " + humanize.IBytes(uint64(a.Bytes))
			}
			if a.Digest != "" {
				line += ", sha3 " + digest.Short(a.Digest)
			}
			if a.Error != "" {
				line += ": " + a.Error
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
