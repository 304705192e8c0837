// Package report formats run and export results for people.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Plain text for the terminal, including the per-chart
//     progress lines printed while charts are rendered
//   - MarkdownWriter: A Markdown summary with tables and a mermaid pie chart
//
// The result structures live in the model package; writers only format
// them. Nothing here prints machine-readable output.
package report
