package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// illustrativeNote is printed under every chart drawn from the
// illustrative dataset.
const illustrativeNote = "Illustrative data: representative estimates, not hardware measurements"

// renderable is satisfied by chart.Chart, chart.PieChart and tableChart.
type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// plot renders one figure panel at the given pixel size.
type plot func(width, height int) (image.Image, error)

// rasterize renders r into an in-memory image.
func rasterize(r renderable) (image.Image, error) {
	var iw chart.ImageWriter
	if err := r.Render(chart.PNG, &iw); err != nil {
		return nil, err
	}
	return iw.Image()
}

// chartPlot sizes a chart to the panel and rasterizes it.
func chartPlot(c chart.Chart) plot {
	return func(width, height int) (image.Image, error) {
		ch := c
		ch.Width, ch.Height = width, height
		ch.Elements = append(append([]chart.Renderable(nil), c.Elements...), chart.Legend(&ch))
		return rasterize(ch)
	}
}

// chartPlotNoLegend is chartPlot for single-series charts.
func chartPlotNoLegend(c chart.Chart) plot {
	return func(width, height int) (image.Image, error) {
		c.Width, c.Height = width, height
		return rasterize(c)
	}
}

// piePlot sizes a pie chart to the panel and rasterizes it.
func piePlot(c chart.PieChart) plot {
	return func(width, height int) (image.Image, error) {
		c.Width, c.Height = width, height
		return rasterize(c)
	}
}

// tablePlot sizes a table to the panel and rasterizes it.
func tablePlot(t tableChart) plot {
	return func(width, height int) (image.Image, error) {
		t.Width, t.Height = width, height
		return rasterize(t)
	}
}

// cell places a plot on the figure grid.
type cell struct {
	Row     int
	Col     int
	ColSpan int
	Name    string
	Plot    plot
}

// figure lays plots out on a Rows x Cols grid below an optional
// suptitle and above an optional footnote.
type figure struct {
	Title    string
	Footnote string
	DPI      float64
	Width    int
	Height   int
	Rows     int
	Cols     int
	Cells    []cell
}

// single is a figure with one plot filling the canvas.
func single(name string, widthIn, heightIn, dpi float64, p plot) figure {
	return figure{
		DPI:    dpi,
		Width:  px(widthIn, dpi),
		Height: px(heightIn, dpi),
		Rows:   1,
		Cols:   1,
		Cells:  []cell{{Name: name, Plot: p}},
	}
}

// render draws every panel and encodes the figure as PNG.
// A failing panel fails the figure with the panel name in the error.
func (f figure) render() ([]byte, error) {
	if f.Rows < 1 || f.Cols < 1 || f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid figure layout %dx%d at %dx%d px", ErrRender, f.Rows, f.Cols, f.Width, f.Height)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	top := 0
	if f.Title != "" {
		strip := px(0.6, f.DPI)
		img, err := titleStrip(f.Title, f.Width, strip, f.DPI)
		if err != nil {
			return nil, fmt.Errorf("%w: suptitle: %v", ErrRender, err)
		}
		draw.Draw(canvas, image.Rect(0, 0, f.Width, strip), img, image.Point{}, draw.Src)
		top = strip
	}
	bottom := f.Height
	if f.Footnote != "" {
		bottom -= basicfont.Face7x13.Metrics().Height.Ceil() + 8
	}

	cellW := f.Width / f.Cols
	cellH := (bottom - top) / f.Rows
	for _, c := range f.Cells {
		span := max(c.ColSpan, 1)
		w, h := cellW*span, cellH
		img, err := c.Plot(w, h)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRender, c.Name, err)
		}
		x0, y0 := c.Col*cellW, top+c.Row*cellH
		draw.Draw(canvas, image.Rect(x0, y0, x0+w, y0+h), img, img.Bounds().Min, draw.Src)
	}

	if f.Footnote != "" {
		drawFootnote(canvas, f.Footnote)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// titleStrip renders a centered suptitle with the chart font.
func titleStrip(title string, width, height int, dpi float64) (image.Image, error) {
	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	f, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}
	r.SetDPI(dpi)
	chart.Draw.Box(r, chart.Box{Right: width, Bottom: height}, chart.Style{
		FillColor:   colorWhite,
		StrokeColor: colorWhite,
	})
	style := chart.Style{Font: f, FontSize: fontSuptitle, FontColor: colorBlack}
	tb := chart.Draw.MeasureText(r, title, style)
	chart.Draw.Text(r, title, (width-tb.Width())/2, (height+tb.Height())/2, style)

	var iw chart.ImageWriter
	if err := r.Save(&iw); err != nil {
		return nil, err
	}
	return iw.Image()
}

// drawFootnote writes text at the bottom left of img in a fixed bitmap
// font, readable at any DPI.
func drawFootnote(img *image.RGBA, text string) {
	b := img.Bounds()
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 90, G: 90, B: 90, A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(b.Min.X + 8), Y: fixed.I(b.Max.Y - 6)},
	}
	d.DrawString(text)
}
