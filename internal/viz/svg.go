// Package viz renders chart requests as self-contained SVG documents and
// recommends chart kinds from column types.
package viz

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strconv"
	"strings"

	"datalens/domain/chart"
	"datalens/domain/core"
	"datalens/domain/table"

	"github.com/montanaflynn/stats"
)

var palette = []string{
	"#4C78A8", "#F58518", "#54A24B", "#E45756",
	"#72B7B2", "#EECA3B", "#B279A2", "#9D755D",
}

// Renderer renders charts as SVG. One renderer is safe for concurrent use;
// it holds only layout constants.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer with the default canvas size
func NewRenderer() *Renderer {
	return &Renderer{width: 640, height: 420}
}

// plot margins: title strip at the top, axis labels left and bottom
const (
	marginLeft   = 60
	marginRight  = 24
	marginTop    = 44
	marginBottom = 52
)

// Render validates the request against the table and renders the SVG.
// Incompatible requests return core.ErrInvalidChartRequest.
func (r *Renderer) Render(t *table.Table, req chart.Request) (string, error) {
	if err := req.Validate(t); err != nil {
		return "", err
	}
	if t.RowCount() == 0 {
		return "", core.ErrEmptyDataset
	}

	switch req.Kind {
	case chart.KindBar:
		return r.renderBar(t, req)
	case chart.KindLine:
		return r.renderLine(t, req, false)
	case chart.KindArea:
		return r.renderLine(t, req, true)
	case chart.KindHistogram:
		return r.renderHistogram(t, req)
	case chart.KindPie:
		return r.renderPie(t, req)
	case chart.KindBox:
		return r.renderBox(t, req)
	case chart.KindScatter:
		return r.renderScatter(t, req)
	default:
		return "", core.NewInvalidChartRequestError(fmt.Sprintf("unknown chart kind %q", req.Kind))
	}
}

// labeledValue is one aggregated (dimension, sum of metric) pair
type labeledValue struct {
	Label string
	Value float64
}

// aggregate groups rows by dimension value and sums the metric. Order is
// first appearance, or ascending by label when sorted is set.
func aggregate(t *table.Table, metric, dimension string, sorted bool) []labeledValue {
	mi := t.ColumnIndex(metric)
	di := t.ColumnIndex(dimension)

	sums := make(map[string]float64)
	var order []string
	for _, row := range t.Rows {
		label := row[di]
		if label == "" {
			continue
		}
		v, ok := parseFloat(row[mi])
		if !ok {
			continue
		}
		if _, seen := sums[label]; !seen {
			order = append(order, label)
		}
		sums[label] += v
	}

	if sorted {
		sort.Strings(order)
	}

	out := make([]labeledValue, 0, len(order))
	for _, label := range order {
		out = append(out, labeledValue{Label: label, Value: sums[label]})
	}
	return out
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (r *Renderer) renderBar(t *table.Table, req chart.Request) (string, error) {
	series := aggregate(t, req.Metric, req.Dimension, false)
	if len(series) == 0 {
		return "", core.ErrEmptyDataset
	}

	var b strings.Builder
	r.open(&b, req.Title())

	maxVal := 0.0
	for _, p := range series {
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}
	r.yAxis(&b, 0, maxVal)

	pw := float64(r.width - marginLeft - marginRight)
	ph := float64(r.height - marginTop - marginBottom)
	slot := pw / float64(len(series))
	barW := slot * 0.7

	for i, p := range series {
		h := 0.0
		if maxVal > 0 {
			h = p.Value / maxVal * ph
		}
		x := float64(marginLeft) + float64(i)*slot + (slot-barW)/2
		y := float64(marginTop) + ph - h
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			x, y, barW, h, palette[0])
		r.xLabel(&b, x+barW/2, p.Label)
	}

	r.close(&b)
	return b.String(), nil
}

func (r *Renderer) renderLine(t *table.Table, req chart.Request, area bool) (string, error) {
	series := aggregate(t, req.Metric, req.Dimension, true)
	if len(series) == 0 {
		return "", core.ErrEmptyDataset
	}

	var b strings.Builder
	r.open(&b, req.Title())

	minVal, maxVal := series[0].Value, series[0].Value
	for _, p := range series {
		minVal = math.Min(minVal, p.Value)
		maxVal = math.Max(maxVal, p.Value)
	}
	if minVal > 0 {
		minVal = 0
	}
	r.yAxis(&b, minVal, maxVal)

	pw := float64(r.width - marginLeft - marginRight)
	ph := float64(r.height - marginTop - marginBottom)
	step := pw
	if len(series) > 1 {
		step = pw / float64(len(series)-1)
	}

	points := make([]string, 0, len(series))
	labelEvery := 1 + (len(series)-1)/8 // at most ~8 x labels
	for i, p := range series {
		x := float64(marginLeft) + float64(i)*step
		y := float64(marginTop) + ph - scale(p.Value, minVal, maxVal, ph)
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
		if i%labelEvery == 0 {
			r.xLabel(&b, x, p.Label)
		}
	}

	if area {
		baseline := float64(marginTop) + ph - scale(0, minVal, maxVal, ph)
		polygon := fmt.Sprintf("%.1f,%.1f %s %.1f,%.1f",
			float64(marginLeft), baseline, strings.Join(points, " "),
			float64(marginLeft)+pw, baseline)
		fmt.Fprintf(&b, `<polygon points="%s" fill="%s" fill-opacity="0.35"/>`+"\n", polygon, palette[0])
	}
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		strings.Join(points, " "), palette[0])

	r.close(&b)
	return b.String(), nil
}

func (r *Renderer) renderHistogram(t *table.Table, req chart.Request) (string, error) {
	values, err := t.NumericValues(req.Metric)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", core.ErrEmptyDataset
	}

	minVal, _ := stats.Min(values)
	maxVal, _ := stats.Max(values)

	// Sturges' rule for the bin count
	binCount := int(math.Ceil(math.Log2(float64(len(values))))) + 1
	if binCount < 1 {
		binCount = 1
	}
	width := (maxVal - minVal) / float64(binCount)
	if width == 0 {
		width = 1
		binCount = 1
	}

	bins := make([]int, binCount)
	for _, v := range values {
		idx := int((v - minVal) / width)
		if idx >= binCount {
			idx = binCount - 1
		}
		bins[idx]++
	}

	var b strings.Builder
	r.open(&b, req.Title())

	maxCount := 0
	for _, n := range bins {
		if n > maxCount {
			maxCount = n
		}
	}
	r.yAxis(&b, 0, float64(maxCount))

	pw := float64(r.width - marginLeft - marginRight)
	ph := float64(r.height - marginTop - marginBottom)
	slot := pw / float64(binCount)

	for i, n := range bins {
		h := float64(n) / float64(maxCount) * ph
		x := float64(marginLeft) + float64(i)*slot
		y := float64(marginTop) + ph - h
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="#fff"/>`+"\n",
			x, y, slot, h, palette[0])
		r.xLabel(&b, x+slot/2, formatTick(minVal+float64(i)*width))
	}

	r.close(&b)
	return b.String(), nil
}

func (r *Renderer) renderPie(t *table.Table, req chart.Request) (string, error) {
	series := aggregate(t, req.Metric, req.Dimension, false)
	if len(series) == 0 {
		return "", core.ErrEmptyDataset
	}

	total := 0.0
	for _, p := range series {
		if p.Value > 0 {
			total += p.Value
		}
	}
	if total == 0 {
		return "", core.NewInvalidChartRequestError("pie requires positive metric values")
	}

	var b strings.Builder
	r.open(&b, req.Title())

	cx := float64(r.width) * 0.38
	cy := float64(marginTop) + float64(r.height-marginTop-marginBottom)/2
	radius := math.Min(float64(r.width)*0.28, float64(r.height-marginTop-marginBottom)/2*0.9)

	angle := -math.Pi / 2 // start at 12 o'clock
	legendY := float64(marginTop)
	for i, p := range series {
		if p.Value <= 0 {
			continue
		}
		frac := p.Value / total
		next := angle + frac*2*math.Pi

		x1, y1 := cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)
		x2, y2 := cx+radius*math.Cos(next), cy+radius*math.Sin(next)
		large := 0
		if frac > 0.5 {
			large = 1
		}
		color := palette[i%len(palette)]

		if frac >= 1 {
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", cx, cy, radius, color)
		} else {
			fmt.Fprintf(&b, `<path d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d 1 %.1f,%.1f Z" fill="%s" stroke="#fff"/>`+"\n",
				cx, cy, x1, y1, radius, radius, large, x2, y2, color)
		}

		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="10" height="10" fill="%s"/>`+"\n",
			float64(r.width)*0.72, legendY, color)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="11">%s (%.1f%%)</text>`+"\n",
			float64(r.width)*0.72+14, legendY+9, html.EscapeString(truncate(p.Label, 18)), frac*100)
		legendY += 16
		angle = next
	}

	r.close(&b)
	return b.String(), nil
}

func (r *Renderer) renderBox(t *table.Table, req chart.Request) (string, error) {
	groups, err := boxGroups(t, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	r.open(&b, req.Title())

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, g := range groups {
		minVal = math.Min(minVal, g.Min)
		maxVal = math.Max(maxVal, g.Max)
	}
	r.yAxis(&b, minVal, maxVal)

	pw := float64(r.width - marginLeft - marginRight)
	ph := float64(r.height - marginTop - marginBottom)
	slot := pw / float64(len(groups))
	boxW := math.Min(slot*0.5, 80)

	y := func(v float64) float64 {
		return float64(marginTop) + ph - scale(v, minVal, maxVal, ph)
	}

	for i, g := range groups {
		cx := float64(marginLeft) + float64(i)*slot + slot/2
		left := cx - boxW/2
		color := palette[i%len(palette)]

		// whiskers
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#555"/>`+"\n", cx, y(g.Min), cx, y(g.Q1))
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#555"/>`+"\n", cx, y(g.Q3), cx, y(g.Max))
		// box and median
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.6" stroke="#555"/>`+"\n",
			left, y(g.Q3), boxW, y(g.Q1)-y(g.Q3), color)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#222" stroke-width="2"/>`+"\n",
			left, y(g.Median), left+boxW, y(g.Median))

		r.xLabel(&b, cx, g.Label)
	}

	r.close(&b)
	return b.String(), nil
}

// boxStats is the five-number summary of one box group
type boxStats struct {
	Label                   string
	Min, Q1, Median, Q3, Max float64
}

func boxGroups(t *table.Table, req chart.Request) ([]boxStats, error) {
	grouped := make(map[string][]float64)
	var order []string

	mi := t.ColumnIndex(req.Metric)
	di := -1
	if req.Dimension != "" {
		di = t.ColumnIndex(req.Dimension)
	}

	for _, row := range t.Rows {
		label := req.Metric
		if di >= 0 {
			label = row[di]
			if label == "" {
				continue
			}
		}
		v, ok := parseFloat(row[mi])
		if !ok {
			continue
		}
		if _, seen := grouped[label]; !seen {
			order = append(order, label)
		}
		grouped[label] = append(grouped[label], v)
	}

	groups := make([]boxStats, 0, len(order))
	for _, label := range order {
		values := grouped[label]
		if len(values) == 0 {
			continue
		}
		minVal, _ := stats.Min(values)
		maxVal, _ := stats.Max(values)
		q1, _ := stats.Percentile(values, 25)
		median, _ := stats.Median(values)
		q3, _ := stats.Percentile(values, 75)
		groups = append(groups, boxStats{Label: label, Min: minVal, Q1: q1, Median: median, Q3: q3, Max: maxVal})
	}
	if len(groups) == 0 {
		return nil, core.ErrEmptyDataset
	}
	return groups, nil
}

func (r *Renderer) renderScatter(t *table.Table, req chart.Request) (string, error) {
	mi := t.ColumnIndex(req.Metric)
	di := t.ColumnIndex(req.Dimension)

	type pt struct{ x, y float64 }
	var pts []pt
	for _, row := range t.Rows {
		x, okX := parseFloat(row[di])
		y, okY := parseFloat(row[mi])
		if okX && okY {
			pts = append(pts, pt{x, y})
		}
	}
	if len(pts) == 0 {
		return "", core.ErrEmptyDataset
	}

	minX, maxX := pts[0].x, pts[0].x
	minY, maxY := pts[0].y, pts[0].y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}

	var b strings.Builder
	r.open(&b, req.Title())
	r.yAxis(&b, minY, maxY)

	pw := float64(r.width - marginLeft - marginRight)
	ph := float64(r.height - marginTop - marginBottom)

	for _, p := range pts {
		x := float64(marginLeft) + scale(p.x, minX, maxX, pw)
		y := float64(marginTop) + ph - scale(p.y, minY, maxY, ph)
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3.5" fill="%s" fill-opacity="0.7"/>`+"\n", x, y, palette[0])
	}
	r.xLabel(&b, float64(marginLeft), formatTick(minX))
	r.xLabel(&b, float64(marginLeft)+pw, formatTick(maxX))

	r.close(&b)
	return b.String(), nil
}

// open writes the SVG header, background and title
func (r *Renderer) open(b *strings.Builder, title string) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="Helvetica, Arial, sans-serif">`+"\n",
		r.width, r.height, r.width, r.height)
	fmt.Fprintf(b, `<rect width="%d" height="%d" fill="#ffffff"/>`+"\n", r.width, r.height)
	fmt.Fprintf(b, `<text x="%d" y="24" font-size="15" font-weight="bold">%s</text>`+"\n",
		marginLeft, html.EscapeString(title))
}

func (r *Renderer) close(b *strings.Builder) {
	// plot border on the left and bottom
	fmt.Fprintf(b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#999"/>`+"\n",
		marginLeft, marginTop, marginLeft, r.height-marginBottom)
	fmt.Fprintf(b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#999"/>`+"\n",
		marginLeft, r.height-marginBottom, r.width-marginRight, r.height-marginBottom)
	b.WriteString("</svg>\n")
}

// yAxis draws five horizontal gridlines with tick labels
func (r *Renderer) yAxis(b *strings.Builder, minVal, maxVal float64) {
	if maxVal == minVal {
		maxVal = minVal + 1
	}
	ph := float64(r.height - marginTop - marginBottom)
	for i := 0; i <= 4; i++ {
		v := minVal + (maxVal-minVal)*float64(i)/4
		y := float64(marginTop) + ph - scale(v, minVal, maxVal, ph)
		fmt.Fprintf(b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#eee"/>`+"\n",
			marginLeft, y, r.width-marginRight, y)
		fmt.Fprintf(b, `<text x="%d" y="%.1f" font-size="10" text-anchor="end">%s</text>`+"\n",
			marginLeft-6, y+3, formatTick(v))
	}
}

// xLabel draws one label under the x axis
func (r *Renderer) xLabel(b *strings.Builder, x float64, label string) {
	fmt.Fprintf(b, `<text x="%.1f" y="%d" font-size="10" text-anchor="middle">%s</text>`+"\n",
		x, r.height-marginBottom+16, html.EscapeString(truncate(label, 12)))
}

func scale(v, min, max, span float64) float64 {
	if max == min {
		return span / 2
	}
	return (v - min) / (max - min) * span
}

func formatTick(v float64) string {
	switch {
	case math.Abs(v) >= 1000:
		return fmt.Sprintf("%.0f", v)
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
