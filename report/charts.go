package report

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/evaluation"
	"github.com/datar-psa/answereval/heuristic"
)

// Chart file names written by WriteCharts
const (
	DashboardFile = "llm_evaluation_dashboard.png"
	DetailedFile  = "llm_evaluation_detailed.png"
)

const (
	chartDPI       = 100
	detailedCols   = 5
	goodLine       = 0.8
	acceptableLine = 0.6
)

var (
	fieldColors = []color.Color{
		color.RGBA{R: 0xf7, G: 0x75, B: 0x6d, A: 0xff},
		color.RGBA{R: 0x3c, G: 0xb3, B: 0x71, A: 0xff},
		color.RGBA{R: 0x61, G: 0x9c, B: 0xff, A: 0xff},
	}
	chartCategoryColors = map[evaluation.Category]color.Color{
		evaluation.Excellent:        color.RGBA{R: 0x1a, G: 0x98, B: 0x50, A: 0xff},
		evaluation.Good:             color.RGBA{R: 0x91, G: 0xcf, B: 0x60, A: 0xff},
		evaluation.Acceptable:       color.RGBA{R: 0xfe, G: 0xe0, B: 0x8b, A: 0xff},
		evaluation.NeedsImprovement: color.RGBA{R: 0xd7, G: 0x30, B: 0x27, A: 0xff},
	}
	goodColor       = color.RGBA{G: 0x80, A: 0xff}
	acceptableColor = color.RGBA{R: 0xff, G: 0xa5, A: 0xff}
	edgeColor       = color.Black
)

// WriteCharts renders the dashboard and the per-test breakdown as PNG files in dir.
// An empty run has nothing to plot and yields no files.
func WriteCharts(dir string, run *evaluation.Run) ([]string, error) {
	if len(run.Scores) == 0 {
		return nil, nil
	}

	charts := []struct {
		name   string
		render func(io.Writer, *evaluation.Run) error
	}{
		{DashboardFile, Dashboard},
		{DetailedFile, Detailed},
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		var buf bytes.Buffer
		if err := c.render(&buf, run); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, c.name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", c.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Dashboard writes a six panel PNG: mean score per field, a field by test heat map,
// overall score per test, mean metrics per field, response time against overall
// score with its correlation, and a summary statistics table.
func Dashboard(w io.Writer, run *evaluation.Run) error {
	if len(run.Scores) == 0 {
		return fmt.Errorf("cannot chart an empty run")
	}

	builders := []func(*evaluation.Run) (*plot.Plot, error){
		fieldMeansPlot,
		heatMapPlot,
		overallPlot,
		metricBreakdownPlot,
		responseTimePlot,
		summaryPlot,
	}
	plots := make([]*plot.Plot, len(builders))
	for i, build := range builders {
		p, err := build(run)
		if err != nil {
			return fmt.Errorf("failed to build dashboard panel %d: %w", i+1, err)
		}
		plots[i] = p
	}

	return renderTiles(w, plots, 3, 18*vg.Inch, 12*vg.Inch)
}

// Detailed writes one bar chart per test with its three field scores
func Detailed(w io.Writer, run *evaluation.Run) error {
	if len(run.Scores) == 0 {
		return fmt.Errorf("cannot chart an empty run")
	}

	plots := make([]*plot.Plot, len(run.Scores))
	for i, s := range run.Scores {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("Test %d\n%s", i+1, truncate(s.TestName, 30))
		p.Y.Label.Text = "Score"

		values := make(plotter.Values, len(api.Fields))
		for j, f := range api.Fields {
			values[j] = s.Field(f).Score
		}
		if err := addFieldBars(p, values, vg.Points(20), "%.2f"); err != nil {
			return fmt.Errorf("failed to chart %s: %w", s.TestName, err)
		}
		if err := addThresholds(p, false, -0.5, float64(len(api.Fields))-0.5); err != nil {
			return err
		}
		unitRange(&p.Y)
		plots[i] = p
	}

	cols := min(detailedCols, len(plots))
	rows := (len(plots) + cols - 1) / cols
	return renderTiles(w, plots, cols, vg.Length(cols)*4*vg.Inch, vg.Length(rows)*4*vg.Inch)
}

func renderTiles(w io.Writer, plots []*plot.Plot, cols int, width, height vg.Length) error {
	rows := (len(plots) + cols - 1) / cols
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(chartDPI))
	dc := draw.New(img)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 8,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	for i, p := range plots {
		p.Draw(tiles.At(dc, i%cols, i/cols))
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return nil
}

func fieldLabels() []string {
	labels := make([]string, len(api.Fields))
	for i, f := range api.Fields {
		labels[i] = FieldLabel(f)
	}
	return labels
}

// addFieldBars draws one coloured bar per answer field with its value on top
func addFieldBars(p *plot.Plot, values plotter.Values, width vg.Length, format string) error {
	for i, v := range values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, width)
		if err != nil {
			return err
		}
		bar.XMin = float64(i)
		bar.Color = fieldColors[i%len(fieldColors)]
		bar.LineStyle.Color = edgeColor
		p.Add(bar)
	}
	p.NominalX(fieldLabels()...)

	xys := make(plotter.XYs, len(values))
	text := make([]string, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
		text[i] = fmt.Sprintf(format, v)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
	}
	labels.Offset = vg.Point{Y: vg.Points(3)}
	p.Add(labels)
	return nil
}

// addThresholds marks the good and acceptable score levels between from and to.
// vertical draws them as vertical lines for charts with scores on the X axis.
func addThresholds(p *plot.Plot, vertical bool, from, to float64) error {
	for _, t := range []struct {
		level float64
		color color.Color
		name  string
	}{
		{goodLine, goodColor, "Good (0.8)"},
		{acceptableLine, acceptableColor, "Acceptable (0.6)"},
	} {
		xys := plotter.XYs{{X: from, Y: t.level}, {X: to, Y: t.level}}
		if vertical {
			xys = plotter.XYs{{X: t.level, Y: from}, {X: t.level, Y: to}}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.LineStyle.Color = t.color
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(t.name, line)
	}
	p.Legend.Top = true
	return nil
}

func unitRange(a *plot.Axis) {
	a.Min = 0
	a.Max = 1.05
}

func fieldMeansPlot(run *evaluation.Run) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Average Scores by Component"
	p.Y.Label.Text = "Average Score"

	means := make(plotter.Values, len(api.Fields))
	for i, f := range api.Fields {
		means[i] = run.FieldStats(f).Mean
	}
	if err := addFieldBars(p, means, vg.Points(50), "%.3f"); err != nil {
		return nil, err
	}
	if err := addThresholds(p, false, -0.5, float64(len(api.Fields))-0.5); err != nil {
		return nil, err
	}
	unitRange(&p.Y)
	return p, nil
}

// scoreGrid is the field by test matrix of scores. Columns are tests, rows are fields.
type scoreGrid struct {
	run *evaluation.Run
}

func (g scoreGrid) Dims() (c, r int)   { return len(g.run.Scores), len(api.Fields) }
func (g scoreGrid) Z(c, r int) float64 { return g.run.Scores[c].Field(api.Fields[r]).Score }
func (g scoreGrid) X(c int) float64    { return float64(c) }
func (g scoreGrid) Y(r int) float64    { return float64(r) }

func heatMapPlot(run *evaluation.Run) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Score Heatmap Across Tests"
	p.X.Label.Text = "Test Number"
	p.Y.Label.Text = "Component"

	pal, err := brewer.GetPalette(brewer.TypeDiverging, "RdYlGn", 11)
	if err != nil {
		return nil, err
	}
	grid := scoreGrid{run: run}
	heat := plotter.NewHeatMap(grid, pal)
	heat.Min = 0
	heat.Max = 1
	p.Add(heat)

	cols, rows := grid.Dims()
	xys := make(plotter.XYs, 0, cols*rows)
	text := make([]string, 0, cols*rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			text = append(text, fmt.Sprintf("%.2f", grid.Z(c, r)))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	p.NominalX(testNumbers(cols)...)
	p.NominalY(fieldLabels()...)
	return p, nil
}

func testNumbers(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("T%d", i+1)
	}
	return names
}

func overallPlot(run *evaluation.Run) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Overall Score by Test"
	p.X.Label.Text = "Overall Score"
	p.Y.Label.Text = "Test"

	for i, s := range run.Scores {
		bar, err := plotter.NewBarChart(plotter.Values{s.Overall}, vg.Points(12))
		if err != nil {
			return nil, err
		}
		bar.Horizontal = true
		bar.XMin = float64(i)
		bar.Color = chartCategoryColors[evaluation.Categorize(s.Overall)]
		bar.LineStyle.Color = edgeColor
		p.Add(bar)
	}
	if err := addThresholds(p, true, -0.5, float64(len(run.Scores))-0.5); err != nil {
		return nil, err
	}
	p.NominalY(testNumbers(len(run.Scores))...)
	unitRange(&p.X)
	return p, nil
}

func metricBreakdownPlot(run *evaluation.Run) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Metric Breakdown by Component"
	p.Y.Label.Text = "Average Score"

	metrics := []struct {
		label string
		value func(heuristic.Metrics) float64
	}{
		{"Keyword Overlap", func(m heuristic.Metrics) float64 { return m.KeywordOverlap }},
		{"Sequence Similarity", func(m heuristic.Metrics) float64 { return m.SequenceSimilarity }},
		{"Technical Match", func(m heuristic.Metrics) float64 { return m.TechnicalTermMatch }},
	}

	width := vg.Points(18)
	for i, f := range api.Fields {
		means := make(plotter.Values, len(metrics))
		for j, m := range metrics {
			var sum float64
			for _, s := range run.Scores {
				sum += m.value(s.Field(f).Metrics)
			}
			means[j] = sum / float64(len(run.Scores))
		}
		bars, err := plotter.NewBarChart(means, width)
		if err != nil {
			return nil, err
		}
		bars.Offset = vg.Length(i-1) * width
		bars.Color = fieldColors[i%len(fieldColors)]
		bars.LineStyle.Color = edgeColor
		p.Add(bars)
		p.Legend.Add(FieldLabel(f), bars)
	}
	p.Legend.Top = true

	labels := make([]string, len(metrics))
	for j, m := range metrics {
		labels[j] = m.label
	}
	p.NominalX(labels...)
	unitRange(&p.Y)
	return p, nil
}

func responseTimePlot(run *evaluation.Run) (*plot.Plot, error) {
	p := plot.New()
	r, ok := run.Correlation()
	if ok {
		p.Title.Text = fmt.Sprintf("Response Time vs Quality (r = %.3f)", r)
	} else {
		p.Title.Text = "Response Time vs Quality (r = n/a)"
	}
	p.X.Label.Text = "Response Time (seconds)"
	p.Y.Label.Text = "Overall Score"

	xys := make(plotter.XYs, len(run.Scores))
	for i, s := range run.Scores {
		xys[i] = plotter.XY{X: s.ResponseTime, Y: s.Overall}
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  chartCategoryColors[evaluation.Categorize(run.Scores[i].Overall)],
			Radius: vg.Points(6),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(scatter, plotter.NewGrid())
	unitRange(&p.Y)
	return p, nil
}

func summaryPlot(run *evaluation.Run) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Summary Statistics"
	p.HideAxes()

	rows := [][]string{{"Metric", "Mean", "Std Dev", "Min", "Max"}}
	stat := func(name string, s evaluation.Stats) []string {
		return []string{name, fmtScore(s.Mean), fmtScore(s.Std), fmtScore(s.Min), fmtScore(s.Max)}
	}
	for _, f := range api.Fields {
		rows = append(rows, stat(FieldLabel(f), run.FieldStats(f)))
	}
	rows = append(rows, stat("Overall", run.OverallStats()))

	var xys plotter.XYs
	var text []string
	for r, row := range rows {
		for c, cell := range row {
			xys = append(xys, plotter.XY{X: float64(c) + 0.5, Y: float64(len(rows)-r) - 0.5})
			text = append(text, cell)
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	p.X.Min, p.X.Max = 0, float64(len(rows[0]))
	p.Y.Min, p.Y.Max = 0, float64(len(rows))
	return p, nil
}

func fmtScore(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
