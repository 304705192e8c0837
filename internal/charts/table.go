package charts

import (
	"errors"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// tableChart draws a titled grid of text cells. The first row is the
// header; RowFills optionally colors data rows by index.
type tableChart struct {
	Title    string
	DPI      float64
	Width    int
	Height   int
	Rows     [][]string
	RowFills map[int]drawing.Color
}

// Render draws the table with a renderer from rp and writes it to w.
func (t tableChart) Render(rp chart.RendererProvider, w io.Writer) error {
	if len(t.Rows) == 0 {
		return errors.New("table has no rows")
	}
	r, err := rp(t.Width, t.Height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetDPI(t.DPI)

	chart.Draw.Box(r, chart.Box{Right: t.Width, Bottom: t.Height}, chart.Style{
		FillColor:   colorWhite,
		StrokeColor: colorWhite,
		StrokeWidth: 0,
	})

	titleStyle := chart.Style{Font: font, FontSize: fontTitle, FontColor: colorBlack}
	tb := chart.Draw.MeasureText(r, t.Title, titleStyle)
	top := px(0.15, t.DPI)
	chart.Draw.Text(r, t.Title, (t.Width-tb.Width())/2, top+tb.Height(), titleStyle)

	margin := px(0.15, t.DPI)
	gridTop := top + tb.Height() + margin
	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	rowHeight := min((t.Height-gridTop-margin)/len(t.Rows), px(0.45, t.DPI))
	colWidth := (t.Width - 2*margin) / cols

	cellText := chart.Style{
		Font:                font,
		FontSize:            fontTableCell,
		FontColor:           colorBlack,
		TextHorizontalAlign: chart.TextHorizontalAlignCenter,
		TextVerticalAlign:   chart.TextVerticalAlignMiddle,
		TextWrap:            chart.TextWrapWord,
	}
	for i, row := range t.Rows {
		fill := colorWhite
		switch c, ok := t.RowFills[i]; {
		case i == 0:
			fill = colorHeaderRow
		case ok:
			fill = c
		}
		for j := 0; j < cols; j++ {
			cell := chart.Box{
				Top:    gridTop + i*rowHeight,
				Left:   margin + j*colWidth,
				Bottom: gridTop + (i+1)*rowHeight,
				Right:  margin + (j+1)*colWidth,
			}
			chart.Draw.Box(r, cell, chart.Style{FillColor: fill, StrokeColor: colorBlack, StrokeWidth: 1})
			if j < len(row) && row[j] != "" {
				chart.Draw.TextWithin(r, row[j], cell, cellText)
			}
		}
	}
	return r.Save(w)
}
