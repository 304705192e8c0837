package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eps-fdir/epsfdir/internal/digest"
	"github.com/eps-fdir/epsfdir/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// timeLayout is used for every timestamp in Markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"

// MarkdownWriter outputs reports in Markdown format.
// The charts command writes it to summary.md next to the images.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteRun outputs the charts run in Markdown format.
func (w *MarkdownWriter) WriteRun(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Chart Run Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Output Directory", "`" + report.OutputDir + "`"},
			{"Started", report.StartedAt.Format(timeLayout)},
			{"Duration", report.EndedAt.Sub(report.StartedAt).Round(time.Millisecond).String()},
			{"Status", runStatusText(report)},
		},
	})
	md.PlainText("")

	w.writeCharts(md, report)
	w.writeRunPieChart(md, report)
	w.writeFailures(md, report)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Images marked illustrative are drawn from representative estimates, not hardware measurements.*")

	return len(md.String()), md.Build()
}

func runStatusText(report *model.RunReport) string {
	if report.HasFailures() {
		return "❌ " + strconv.Itoa(len(report.Charts)-report.Count(model.StatusSaved)) +
			" of " + strconv.Itoa(len(report.Charts)) + " not saved"
	}
	return "✅ Complete"
}

// writeCharts writes one table row per chart in chart order.
func (w *MarkdownWriter) writeCharts(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Charts")
	md.PlainText("")

	rows := make([][]string, len(report.Charts))
	for i, c := range report.Charts {
		size, sum := "-", "-"
		if c.Status == model.StatusSaved {
			size = humanize.IBytes(uint64(max(c.Bytes, 0)))
			sum = "`" + digest.Short(c.Digest) + "`"
		}
		rows[i] = []string{c.Name, statusIcon(c.Status), dataSource(c), size, sum}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Chart", "Status", "Data", "Size", "SHA3-256"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRunPieChart writes a mermaid pie chart of the chart outcomes.
func (w *MarkdownWriter) writeRunPieChart(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Charts) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Chart Outcomes"),
		piechart.WithShowData(true),
	)
	for _, s := range []model.Status{model.StatusSaved, model.StatusFailed, model.StatusCancelled} {
		if n := report.Count(s); n > 0 {
			chart.LabelAndIntValue(statusLabel(s), uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailures writes an alert with the cause of every chart not saved.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	failures := report.Failures()
	if len(failures) == 0 {
		md.Tip("Every chart was rendered and saved.")
		md.PlainText("")
		return
	}

	md.Cautionf("%d chart(s) were not saved.", len(failures))
	md.PlainText("")

	md.H2("Failures")
	md.PlainText("")
	items := make([]string, len(failures))
	for i, f := range failures {
		items[i] = "**" + f.Name + "**: " + truncateString(reason(f), 200)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// WriteExport outputs the model export in Markdown format.
func (w *MarkdownWriter) WriteExport(report *model.ExportReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Model Export")
	md.PlainText("")

	header := report.HeaderPath
	if header == "" {
		header = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Artifact", "`" + report.ArtifactPath + "`"},
			{"SHA3-256", "`" + report.ArtifactDigest + "`"},
			{"Estimator", report.Estimator},
			{"Trees", strconv.Itoa(report.Trees)},
			{"Features", strconv.Itoa(report.Features)},
			{"Function", "`" + report.Signature + "`"},
			{"Source", "`" + report.SourcePath + "`"},
			{"Header", header},
			{"Size", humanize.IBytes(uint64(max(report.SourceBytes, 0)))},
			{"Exported", report.ExportedAt.Format(timeLayout)},
		},
	})
	md.PlainText("")

	if len(report.Preview) > 0 {
		md.H2("Preview")
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight("c"), strings.Join(report.Preview, "\n"))
		md.PlainText("")
	}

	if len(report.Checklist) > 0 {
		md.H2("Integration Checklist")
		md.PlainText("")
		md.Note("The checklist is not applied automatically. Each step is a manual edit.")
		md.PlainText("")
		md.BulletList(report.Checklist...)
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusSaved:
		return "✅ saved"
	case model.StatusCancelled:
		return "⏹️ cancelled"
	default:
		return "❌ failed"
	}
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusSaved:
		return "Saved"
	case model.StatusCancelled:
		return "Cancelled"
	default:
		return "Failed"
	}
}

// dataSource tells measured charts from illustrative ones.
func dataSource(c model.ChartResult) string {
	if c.Illustrative {
		return "⚠️ illustrative"
	}
	return "measured"
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
