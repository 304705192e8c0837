package charts

import (
	"fmt"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
)

// niceTicks returns about n ticks with a 1, 2, 2.5 or 5 step covering
// [lo, hi]. The first tick is <= lo and the last is >= hi.
func niceTicks(lo, hi float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if hi <= lo {
		hi = lo + 1
	}
	span := hi - lo
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil(span / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}

	start := math.Floor(lo/bestStep) * bestStep
	end := math.Ceil(hi/bestStep) * bestStep
	var ticks []chart.Tick
	for i := 0; ; i++ {
		v := start + float64(i)*bestStep
		if v > end+bestStep/2 || len(ticks) > 100 {
			break
		}
		// Avoid "-0" from floating point drift around zero.
		if math.Abs(v) < bestStep*1e-9 {
			v = 0
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: tickLabel(v)})
	}
	return ticks
}

// valueTicks returns ticks for a linear value axis showing every finite
// value in values plus zero, with headroom for value labels.
func valueTicks(values ...[]float64) []chart.Tick {
	lo, hi := 0.0, 0.0
	for _, vs := range values {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	span := hi - lo
	if span == 0 {
		return niceTicks(0, 1, 6)
	}
	if hi > 0 {
		hi += span * 0.12
	}
	if lo < 0 {
		lo -= span * 0.12
	}
	return niceTicks(lo, hi, 6)
}

// tickRange returns the range spanned by ticks.
func tickRange(ticks []chart.Tick) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: ticks[0].Value, Max: ticks[len(ticks)-1].Value}
}

// categoryTicks places one labelled tick per category at 0..n-1 and two
// unlabelled ticks half a slot outside, so the first and last groups are
// not cut by the canvas edge.
func categoryTicks(labels []string) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, l := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	last := float64(len(labels)) - 0.5
	if len(labels) == 0 {
		last = 0.5
	}
	ticks = append(ticks, chart.Tick{Value: last})
	return ticks
}

// categoryXAxis returns an x-axis with one slot per label and no grid.
func categoryXAxis(name string, labels []string) chart.XAxis {
	return chart.XAxis{
		Name:           name,
		Ticks:          categoryTicks(labels),
		TickStyle:      chart.Style{FontSize: fontAxis},
		GridMajorStyle: chart.Hidden(),
		GridMinorStyle: chart.Hidden(),
	}
}

// categoryYAxis returns a y-axis with one slot per label and no grid.
func categoryYAxis(name string, labels []string) chart.YAxis {
	return chart.YAxis{
		Name:           name,
		Ticks:          categoryTicks(labels),
		TickStyle:      chart.Style{FontSize: fontAxis},
		GridMajorStyle: chart.Hidden(),
		GridMinorStyle: chart.Hidden(),
	}
}

// linearYAxis returns a value y-axis with grid lines at every tick.
func linearYAxis(name string, ticks []chart.Tick) chart.YAxis {
	return chart.YAxis{
		Name:           name,
		Range:          tickRange(ticks),
		Ticks:          ticks,
		TickStyle:      chart.Style{FontSize: fontAxis},
		GridMajorStyle: gridStyle(),
		GridMinorStyle: gridStyle(),
	}
}

// linearXAxis returns a value x-axis with grid lines at every tick.
func linearXAxis(name string, ticks []chart.Tick) chart.XAxis {
	return chart.XAxis{
		Name:           name,
		Range:          tickRange(ticks),
		Ticks:          ticks,
		TickStyle:      chart.Style{FontSize: fontAxis},
		GridMajorStyle: gridStyle(),
		GridMinorStyle: gridStyle(),
	}
}

// logRange maps values onto a log10 scale.
// Min and Max must be positive; values at or below zero translate to the
// bottom of the domain.
type logRange struct {
	Min    float64
	Max    float64
	Domain int
}

// String implements chart.Range.
func (r *logRange) String() string {
	return fmt.Sprintf("LogRange [%g,%g] => %d", r.Min, r.Max, r.Domain)
}

// IsZero implements chart.Range.
func (r *logRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0 && r.Domain == 0
}

// GetMin implements chart.Range.
func (r *logRange) GetMin() float64 { return r.Min }

// SetMin implements chart.Range.
func (r *logRange) SetMin(v float64) { r.Min = v }

// GetMax implements chart.Range.
func (r *logRange) GetMax() float64 { return r.Max }

// SetMax implements chart.Range.
func (r *logRange) SetMax(v float64) { r.Max = v }

// GetDelta implements chart.Range.
func (r *logRange) GetDelta() float64 { return r.Max - r.Min }

// GetDomain implements chart.Range.
func (r *logRange) GetDomain() int { return r.Domain }

// SetDomain implements chart.Range.
func (r *logRange) SetDomain(d int) { r.Domain = d }

// IsDescending implements chart.Range.
func (r *logRange) IsDescending() bool { return false }

// Translate implements chart.Range.
func (r *logRange) Translate(v float64) int {
	if v <= 0 || r.Min <= 0 || r.Max <= r.Min {
		return 0
	}
	lo, hi := math.Log10(r.Min), math.Log10(r.Max)
	ratio := (math.Log10(v) - lo) / (hi - lo)
	return int(math.Ceil(ratio * float64(r.Domain)))
}

// decadeBounds returns the enclosing powers of ten of the finite values,
// so that no value falls outside [10^lo, 10^hi]. A value within a quarter
// decade of either bound gets one more decade, so bars starting at the
// bottom of the axis stay visible and labels above them fit.
// Non-positive values cannot be placed on a log axis and yield ErrRender.
func decadeBounds(values ...[]float64) (lo, hi int, err error) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			if math.IsNaN(v) {
				continue
			}
			if v <= 0 || math.IsInf(v, 0) {
				return 0, 0, fmt.Errorf("%w: value %g cannot be drawn on a log axis", ErrRender, v)
			}
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}
	}
	if math.IsInf(minV, 1) {
		return 0, 1, nil
	}
	lo = int(math.Floor(math.Log10(minV)))
	hi = int(math.Ceil(math.Log10(maxV)))
	if math.Log10(minV)-float64(lo) < 0.25 {
		lo--
	}
	if float64(hi)-math.Log10(maxV) < 0.25 {
		hi++
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi, nil
}

// decadeTicks returns one tick per power of ten from 10^lo to 10^hi.
func decadeTicks(lo, hi int) []chart.Tick {
	ticks := make([]chart.Tick, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		v := math.Pow(10, float64(k))
		label := grouped(v)
		if k < 0 {
			label = strconv.FormatFloat(v, 'g', -1, 64)
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: label})
	}
	return ticks
}

// logYAxis returns a log10 value y-axis covering the decades.
func logYAxis(name string, lo, hi int) chart.YAxis {
	ticks := decadeTicks(lo, hi)
	return chart.YAxis{
		Name:           name,
		Range:          &logRange{Min: ticks[0].Value, Max: ticks[len(ticks)-1].Value},
		Ticks:          ticks,
		TickStyle:      chart.Style{FontSize: fontAxis},
		GridMajorStyle: gridStyle(),
		GridMinorStyle: gridStyle(),
	}
}

// logXAxis returns a log10 value x-axis covering the decades.
func logXAxis(name string, lo, hi int) chart.XAxis {
	ticks := decadeTicks(lo, hi)
	return chart.XAxis{
		Name:           name,
		Range:          &logRange{Min: ticks[0].Value, Max: ticks[len(ticks)-1].Value},
		Ticks:          ticks,
		TickStyle:      chart.Style{FontSize: fontAxis},
		GridMajorStyle: gridStyle(),
		GridMinorStyle: gridStyle(),
	}
}
