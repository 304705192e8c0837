package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/eps-fdir/epsfdir/internal/artifact"
	"github.com/eps-fdir/epsfdir/internal/config"
	"github.com/eps-fdir/epsfdir/internal/database"
	"github.com/eps-fdir/epsfdir/internal/exporter"
	"github.com/eps-fdir/epsfdir/internal/model"
	"github.com/eps-fdir/epsfdir/internal/report"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the newest trained model as C source",
		Long: `Export selects the newest model artifact matching the model kind,
pruning tag and panel, translates it into a self-contained C scoring
function and writes it for the flight software build.

Artifacts are named <kind>_<pruning>_<panel>_<timestamp>.<ext>, for example
voltage_rf_pruned50_+X_20230215.json. The newest timestamp wins.

Nothing in the firmware is changed. The command prints the integration
checklist to follow by hand.

Examples:
  # Export the newest voltage_rf_pruned50 model for panel +X
  epsfdir export

  # Export the -Y panel model under a different function name
  epsfdir export --panel -Y --function score_voltage_my

  # Write only the source file, without header and preview
  epsfdir export --no-header --preview-lines 0`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("artifact-dir", "a", config.DefaultArtifactDir,
		"Directory containing the model artifacts")
	cmd.Flags().StringP("kind", "k", config.DefaultModelKind,
		"Model kind prefix of the artifact name")
	cmd.Flags().String("pruning", config.DefaultPruning,
		"Pruning tag following the model kind (empty for none)")
	cmd.Flags().StringP("panel", "p", config.DefaultPanel,
		"Panel identifier the artifact name must contain")
	cmd.Flags().StringP("c-code-dir", "d", config.DefaultCCodeDir,
		"Directory the C source is written to (created if missing)")
	cmd.Flags().StringP("output-file", "o", config.DefaultOutputFile,
		"File name of the generated C source")
	cmd.Flags().StringP("function", "f", config.DefaultFunctionName,
		"Name of the generated scoring function")
	cmd.Flags().IntP("preview-lines", "n", config.DefaultPreviewLines,
		"Number of generated lines to print (0 to disable)")
	cmd.Flags().Bool("no-header", false,
		"Do not write a header next to the source")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write a Markdown export summary next to the source")
	cmd.Flags().Bool("no-history", false,
		"Do not record this export in the history database")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildExportConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.ValidateExport(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runExport(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildExportConfig overlays the export flags that were set on the command
// line onto the file configuration.
func buildExportConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	stringFlags := []struct {
		flag string
		dst  *string
	}{
		{"artifact-dir", &cfg.ArtifactDir},
		{"kind", &cfg.ModelKind},
		{"pruning", &cfg.Pruning},
		{"panel", &cfg.Panel},
		{"c-code-dir", &cfg.CCodeDir},
		{"output-file", &cfg.OutputFile},
		{"function", &cfg.FunctionName},
	}
	for _, s := range stringFlags {
		if !flagChanged(cmd, s.flag) {
			continue
		}
		if *s.dst, err = flags.GetString(s.flag); err != nil {
			return nil, err
		}
	}

	if flagChanged(cmd, "preview-lines") {
		if cfg.PreviewLines, err = flags.GetInt("preview-lines"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "markdown") {
		if cfg.ExportSummary, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}
	noHeader, err := flags.GetBool("no-header")
	if err != nil {
		return nil, err
	}
	if noHeader {
		cfg.WriteHeader = false
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	return cfg, nil
}

// exportOptions returns the exporter options described by cfg.
func exportOptions(cfg *config.Config) exporter.Options {
	return exporter.Options{
		ArtifactDir: cfg.ArtifactDir,
		Filter: artifact.Filter{
			Kind:    cfg.ModelKind,
			Pruning: cfg.Pruning,
			Panel:   cfg.Panel,
		},
		CCodeDir:     cfg.CCodeDir,
		OutputFile:   cfg.OutputFile,
		FunctionName: cfg.FunctionName,
		PreviewLines: cfg.PreviewLines,
		WriteHeader:  cfg.WriteHeader,
	}
}

// runExport exports one model and prints the status and checklist.
// Nothing is written when no artifact matches or it cannot be loaded.
func runExport(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	exportReport, err := exporter.New(exporter.WithLogger(logger)).Export(ctx, exportOptions(cfg))
	if err != nil {
		return err
	}

	if _, err := report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)).WriteExport(exportReport); err != nil {
		return err
	}

	if cfg.ExportSummary {
		path := cfg.ExportSummaryPath()
		if err := writeExportSummary(path, exportReport); err != nil {
			logger.Error("failed to write summary", "path", path, "error", err)
		} else {
			fmt.Fprintf(out, "Summary: %s\n", path)
		}
	}

	if cfg.SaveHistory {
		if err := saveExport(context.WithoutCancel(ctx), cfg.DBDir, exportReport, logger); err != nil {
			logger.Error("failed to record export", "error", err)
		}
	}
	return nil
}

// writeExportSummary writes the Markdown export summary to path.
func writeExportSummary(path string, exportReport *model.ExportReport) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // The summary is shared with the source
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	if _, err := report.NewMarkdownWriter(f).WriteExport(exportReport); err != nil {
		_ = f.Close() //nolint:errcheck // Write error takes precedence
		return err
	}
	return f.Close()
}

// saveExport records the export in the history database.
func saveExport(ctx context.Context, dbDir string, exportReport *model.ExportReport, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveExport(ctx, exportReport)
	if err != nil {
		return err
	}
	logger.Debug("export recorded", "id", runID, "db", db.Path())
	return nil
}
