package charts

import (
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Named colors used across charts.
var (
	colorSkyBlue        = drawing.ColorFromHex("87ceeb")
	colorCoral          = drawing.ColorFromHex("ff7f50")
	colorLightGreen     = drawing.ColorFromHex("90ee90")
	colorOrange         = drawing.ColorFromHex("ffa500")
	colorLightCoral     = drawing.ColorFromHex("f08080")
	colorSteelBlue      = drawing.ColorFromHex("4682b4")
	colorDarkOrange     = drawing.ColorFromHex("ff8c00")
	colorMediumSeaGreen = drawing.ColorFromHex("3cb371")
	colorGreen          = drawing.ColorFromHex("2e8b57")
	colorRed            = drawing.ColorFromHex("d62728")
	colorBlue           = drawing.ColorFromHex("1f77b4")
	colorGrid           = drawing.ColorFromHex("dddddd")
	colorBlack          = drawing.ColorBlack
	colorWhite          = drawing.ColorWhite

	colorFull   = drawing.ColorFromHex("ff6b6b")
	colorPruned = drawing.ColorFromHex("4ecdc4")

	colorRegressionRow  = drawing.ColorFromHex("ffcccc")
	colorImprovementRow = drawing.ColorFromHex("ccffcc")
	colorHeaderRow      = drawing.ColorFromHex("e6e6e6")
)

// modelPalette colors the models of the stage progression chart in row order.
var modelPalette = []drawing.Color{
	drawing.ColorFromHex("f77189"),
	drawing.ColorFromHex("50b131"),
	drawing.ColorFromHex("3ba3ec"),
	drawing.ColorFromHex("bb9832"),
	drawing.ColorFromHex("36ada4"),
	drawing.ColorFromHex("e866f4"),
}

// targetPalette colors the multi-target panels in target order.
var targetPalette = []drawing.Color{colorSteelBlue, colorDarkOrange, colorMediumSeaGreen}

// ramPalette colors the RAM components.
var ramPalette = []drawing.Color{
	drawing.ColorFromHex("3498db"),
	drawing.ColorFromHex("9b59b6"),
	drawing.ColorFromHex("e74c3c"),
	drawing.ColorFromHex("2ecc71"),
	drawing.ColorFromHex("f39c12"),
}

func pick(palette []drawing.Color, i int) drawing.Color {
	return palette[i%len(palette)]
}

// Font sizes in points. go-chart scales them with the chart DPI, so they
// keep their physical size at any resolution.
const (
	fontTitle     = 12.0
	fontSuptitle  = 16.0
	fontAxis      = 9.0
	fontValue     = 8.0
	fontTableCell = 9.0
)

// px converts inches to pixels at dpi.
func px(inches, dpi float64) int {
	return int(inches*dpi + 0.5)
}

// gridStyle draws light horizontal or vertical grid lines.
func gridStyle() chart.Style {
	return chart.Style{
		StrokeColor: colorGrid,
		StrokeWidth: 1,
	}
}

// newPlot returns a chart with the common frame: a title with room
// reserved above the canvas, value grid lines and the given axes.
func newPlot(title string, dpi float64, xa chart.XAxis, ya chart.YAxis) chart.Chart {
	return chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: fontTitle},
		DPI:        dpi,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    px(0.45, dpi),
				Left:   px(0.2, dpi),
				Right:  px(0.1, dpi),
				Bottom: px(0.1, dpi),
			},
		},
		XAxis: xa,
		YAxis: ya,
	}
}
