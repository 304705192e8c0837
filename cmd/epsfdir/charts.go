package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eps-fdir/epsfdir/internal/charts"
	"github.com/eps-fdir/epsfdir/internal/config"
	"github.com/eps-fdir/epsfdir/internal/database"
	"github.com/eps-fdir/epsfdir/internal/dataset"
	"github.com/eps-fdir/epsfdir/internal/model"
	"github.com/eps-fdir/epsfdir/internal/pipeline"
	"github.com/eps-fdir/epsfdir/internal/report"
	"github.com/spf13/cobra"
)

// summaryFileName is the Markdown run summary written with --markdown.
const summaryFileName = "summary.md"

// NewChartsCmd creates the charts command.
func NewChartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Render the six synthesis charts",
		Long: `Charts reads the analysis result tables and writes six PNG charts:

  stage_progression_comparison   averaged MAE per feature stage and model
  panel_specific_performance     stage 3 vs stage 4 MAE and improvement per panel
  temporal_generalization        train/validation/test MAE per panel (log scale)
  multitarget_performance        MAE and inference time per target quantity
  resource_requirements          flight resource budget (illustrative)
  cross_satellite_deployment     bias correction on a new satellite (illustrative)

Every chart is rendered on its own. A missing or broken table fails only the
charts that read it; the others are still written and every failure is
listed at the end. The command exits non-zero when any chart was not saved.

Examples:
  # Read tables from the current directory, write to figures/synthesis
  epsfdir charts

  # Read tables from results/, render four charts at a time
  epsfdir charts -i results -j 4

  # Stop at the first failing chart and write a Markdown summary
  epsfdir charts --fail-fast --markdown`,
		Args: cobra.NoArgs,
		RunE: runChartsCmd,
	}

	cmd.Flags().StringP("input-dir", "i", config.DefaultInputDir,
		"Directory containing the result tables")
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory the charts are written to (created if missing)")
	cmd.Flags().Float64("dpi", config.DefaultDPI,
		"Chart resolution in dots per inch")
	cmd.Flags().IntP("jobs", "j", config.DefaultJobs,
		"Number of charts rendered concurrently")
	cmd.Flags().Bool("fail-fast", false,
		"Stop at the first failing chart")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write "+summaryFileName+" next to the charts")
	cmd.Flags().String("model-column", config.DefaultModelColumn,
		"Model compared in the panel chart")
	cmd.Flags().String("illustrative", "",
		"YAML file replacing the built-in illustrative figures")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runChartsCmd executes the charts command.
func runChartsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildChartsConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.ValidateCharts(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runCharts(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildChartsConfig overlays the charts flags that were set on the command
// line onto the file configuration.
func buildChartsConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flagChanged(cmd, "input-dir") {
		if cfg.InputDir, err = flags.GetString("input-dir"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "dpi") {
		if cfg.DPI, err = flags.GetFloat64("dpi"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "jobs") {
		if cfg.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "fail-fast") {
		if cfg.FailFast, err = flags.GetBool("fail-fast"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "markdown") {
		if cfg.MarkdownSummary, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "model-column") {
		if cfg.ModelColumn, err = flags.GetString("model-column"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "illustrative") {
		if cfg.IllustrativeFile, err = flags.GetString("illustrative"); err != nil {
			return nil, err
		}
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

// chartInputs returns the chart inputs described by cfg.
func chartInputs(cfg *config.Config) charts.Inputs {
	return charts.Inputs{
		Sources: dataset.Sources{
			StageComparison: cfg.TablePath(cfg.Tables.StageComparison),
			Stage3:          cfg.TablePath(cfg.Tables.Stage3),
			Stage4:          cfg.TablePath(cfg.Tables.Stage4),
			Temporal:        cfg.TablePath(cfg.Tables.Temporal),
			MultiTarget:     cfg.TablePath(cfg.Tables.MultiTarget),
		},
		DPI:              cfg.DPI,
		ModelColumn:      cfg.ModelColumn,
		StageLabels:      cfg.StageLabels,
		Targets:          cfg.Targets,
		IllustrativeFile: cfg.IllustrativeFile,
	}
}

// runCharts renders every chart, printing one line per chart as soon as it
// is done. It returns the pipeline's *pipeline.RunError when any chart was
// not saved.
func runCharts(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	writer := report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))

	p := pipeline.New(cfg.OutputDir,
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(!cfg.FailFast),
		pipeline.WithConcurrency(cfg.Jobs),
		pipeline.WithProgress(func(r model.ChartResult) {
			if _, err := writer.WriteResult(r); err != nil {
				logger.Error("failed to print result", "chart", r.Name, "error", err)
			}
		}),
	)
	p.AddSteps(pipeline.NewChartSteps(chartInputs(cfg))...)

	if _, err := writer.WriteRunHeader(); err != nil {
		return err
	}

	runReport, runErr := p.Execute(ctx)
	if runReport == nil {
		return runErr
	}

	if _, err := writer.WriteRunFooter(runReport); err != nil {
		return err
	}

	if cfg.MarkdownSummary {
		path := filepath.Join(cfg.OutputDir, summaryFileName)
		if err := writeRunSummary(path, runReport); err != nil {
			logger.Error("failed to write summary", "path", path, "error", err)
		} else {
			fmt.Fprintf(out, "Summary: %s\n", path)
		}
	}

	if cfg.SaveHistory {
		// The run is recorded even when it was interrupted.
		if err := saveRun(context.WithoutCancel(ctx), cfg.DBDir, runReport, logger); err != nil {
			logger.Error("failed to record run", "error", err)
		}
	}

	return runErr
}

// writeRunSummary writes the Markdown run summary to path.
func writeRunSummary(path string, runReport *model.RunReport) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // The summary is shared with the charts
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	if _, err := report.NewMarkdownWriter(f).WriteRun(runReport); err != nil {
		_ = f.Close() //nolint:errcheck // Write error takes precedence
		return err
	}
	return f.Close()
}

// saveRun records the run in the history database and logs charts whose
// image did not change since the previous run.
func saveRun(ctx context.Context, dbDir string, runReport *model.RunReport, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, runReport)
	if err != nil {
		return err
	}
	logger.Debug("run recorded", "id", runID, "db", db.Path())

	for _, c := range runReport.Charts {
		if c.Status != model.StatusSaved {
			continue
		}
		prev, ok, err := db.LastDigest(ctx, c.Name, runID)
		if err != nil {
			return err
		}
		if ok && prev == c.Digest {
			logger.Debug("chart unchanged since previous run", "chart", c.Name)
		}
	}
	return nil
}
