package components

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"estoque/internal/core"
	"estoque/internal/format"
)

// ChartKind is the closed set of supported chart variants.
type ChartKind int

const (
	ChartLine ChartKind = iota + 1
	ChartBar
	ChartArea
	ChartPie
)

var chartKindNames = map[ChartKind]string{
	ChartLine: "line",
	ChartBar:  "bar",
	ChartArea: "area",
	ChartPie:  "pie",
}

func (k ChartKind) String() string {
	if s, ok := chartKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ChartKind(%d)", int(k))
}

// ParseChartKind maps "line", "bar", "area" and "pie" to a ChartKind.
func ParseChartKind(s string) (ChartKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range chartKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

const (
	DefaultChartType   = "line"
	DefaultChartHeight = 300
	DefaultXAxisKey    = "date"
	DefaultPieValueKey = "value"
	PieNameKey         = "name"

	// 0.3 opacity as a hex alpha suffix
	areaFillAlpha = "4D"

	chartUnsupportedText = "Tipo de gráfico não suportado"
)

// StatisticsChartProps configures a chart. Type is kept as a string so an
// unknown value renders the unsupported notice instead of failing; an empty
// Type is DefaultChartType.
type StatisticsChartProps struct {
	Data     []core.Record
	Type     string
	DataKeys []core.SeriesSpec
	XAxisKey string
	Height   int
	Loading  bool
	Title    string
	// OnLoad is fetched once after the chart placeholder is shown.
	OnLoad string
}

// ChartConfig is the Chart.js configuration handed to the browser.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label            string    `json:"label"`
	Data             []float64 `json:"data"`
	BorderColor      any       `json:"borderColor,omitempty"`
	BackgroundColor  any       `json:"backgroundColor,omitempty"`
	Fill             bool      `json:"fill,omitempty"`
	Tension          float64   `json:"tension,omitempty"`
	BorderWidth      int       `json:"borderWidth,omitempty"`
	PointRadius      int       `json:"pointRadius,omitempty"`
	PointHoverRadius int       `json:"pointHoverRadius,omitempty"`
	BorderRadius     int       `json:"borderRadius,omitempty"`
	// Tooltips holds preformatted per-point tooltip lines, read by app.js.
	Tooltips []string `json:"tooltips,omitempty"`
}

type ChartOptions struct {
	Responsive          bool         `json:"responsive"`
	MaintainAspectRatio bool         `json:"maintainAspectRatio"`
	Plugins             ChartPlugins `json:"plugins"`
	Scales              *ChartScales `json:"scales,omitempty"`
}

type ChartPlugins struct {
	Legend ChartLegend `json:"legend"`
}

type ChartLegend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

type ChartScales struct {
	Y ChartAxis `json:"y"`
}

type ChartAxis struct {
	BeginAtZero bool `json:"beginAtZero"`
}

// LegendEntry is a server-rendered legend line, shown under pie charts.
type LegendEntry struct {
	Label string
	Color string
}

// StatisticsChartView is what the template renders.
type StatisticsChartView struct {
	State   ViewState
	OnLoad  string
	Title   string
	Height  int
	Kind    string
	Message string
	Config  ChartConfig
	Legend  []LegendEntry
}

// ConfigJSON returns the Chart.js configuration as JSON.
func (v StatisticsChartView) ConfigJSON() (string, error) {
	raw, err := json.Marshal(v.Config)
	if err != nil {
		return "", fmt.Errorf("marshal chart config: %w", err)
	}
	return string(raw), nil
}

// BuildStatisticsChart derives the chart view from its props.
func BuildStatisticsChart(p StatisticsChartProps) StatisticsChartView {
	v := StatisticsChartView{OnLoad: p.OnLoad, Title: p.Title, Height: p.Height}
	if v.Height <= 0 {
		v.Height = DefaultChartHeight
	}
	if p.XAxisKey == "" {
		p.XAxisKey = DefaultXAxisKey
	}

	switch {
	case p.Loading:
		v.State = StateLoading
		return v
	case len(p.Data) == 0:
		v.State = StateEmpty
		return v
	}

	if strings.TrimSpace(p.Type) == "" {
		p.Type = DefaultChartType
	}
	kind, ok := ParseChartKind(p.Type)
	if !ok {
		v.State = StateUnsupported
		v.Message = chartUnsupportedText
		return v
	}

	v.State = StatePopulated
	v.Kind = kind.String()
	switch kind {
	case ChartLine:
		v.Config = lineConfig(p, false)
	case ChartArea:
		v.Config = lineConfig(p, true)
	case ChartBar:
		v.Config = barConfig(p)
	case ChartPie:
		v.Config, v.Legend = pieConfig(p)
	}
	return v
}

// StatisticsChart renders the chart.
func (r *Renderer) StatisticsChart(w io.Writer, p StatisticsChartProps) error {
	return r.Render(w, TemplateStatisticsChart, BuildStatisticsChart(p))
}

func cartesianOptions() ChartOptions {
	return ChartOptions{
		Responsive:          true,
		MaintainAspectRatio: false,
		Plugins:             ChartPlugins{Legend: ChartLegend{Display: true, Position: "bottom"}},
		Scales:              &ChartScales{Y: ChartAxis{BeginAtZero: true}},
	}
}

func labels(data []core.Record, key string) []string {
	out := make([]string, len(data))
	for i, rec := range data {
		out[i] = rec.Text(key)
	}
	return out
}

func values(data []core.Record, key string) []float64 {
	out := make([]float64, len(data))
	for i, rec := range data {
		out[i] = rec.Number(key)
	}
	return out
}

func seriesColor(s core.SeriesSpec) string {
	if s.Color != "" {
		return s.Color
	}
	return core.ChartColors.Primary
}

// withAlpha appends a hex alpha to #rrggbb colours and leaves anything else alone.
func withAlpha(color, alpha string) string {
	if len(color) == 7 && color[0] == '#' {
		return color + alpha
	}
	return color
}

func lineConfig(p StatisticsChartProps, filled bool) ChartConfig {
	cfg := ChartConfig{
		Type:    "line",
		Data:    ChartData{Labels: labels(p.Data, p.XAxisKey)},
		Options: cartesianOptions(),
	}
	for _, s := range p.DataKeys {
		color := seriesColor(s)
		ds := Dataset{
			Label:            s.Label(),
			Data:             values(p.Data, s.Key),
			BorderColor:      color,
			BackgroundColor:  color,
			Tension:          0.4,
			BorderWidth:      2,
			PointRadius:      4,
			PointHoverRadius: 6,
		}
		if filled {
			ds.Fill = true
			ds.BackgroundColor = withAlpha(color, areaFillAlpha)
			ds.PointRadius = 0
		}
		cfg.Data.Datasets = append(cfg.Data.Datasets, ds)
	}
	return cfg
}

func barConfig(p StatisticsChartProps) ChartConfig {
	cfg := ChartConfig{
		Type:    "bar",
		Data:    ChartData{Labels: labels(p.Data, p.XAxisKey)},
		Options: cartesianOptions(),
	}
	for i, s := range p.DataKeys {
		ds := Dataset{
			Label:           s.Label(),
			Data:            values(p.Data, s.Key),
			BackgroundColor: seriesColor(s),
			BorderRadius:    4,
		}
		if i == 0 {
			ds.Tooltips = make([]string, len(ds.Data))
			for j, val := range ds.Data {
				ds.Tooltips[j] = "Quantidade: " + format.Quantity(val)
			}
		}
		cfg.Data.Datasets = append(cfg.Data.Datasets, ds)
	}
	return cfg
}

func pieConfig(p StatisticsChartProps) (ChartConfig, []LegendEntry) {
	valueKey := DefaultPieValueKey
	if len(p.DataKeys) > 0 && p.DataKeys[0].Key != "" {
		valueKey = p.DataKeys[0].Key
	}

	vals := values(p.Data, valueKey)
	var total float64
	for _, val := range vals {
		total += val
	}

	n := len(p.Data)
	sliceLabels := make([]string, n)
	colors := make([]string, n)
	legend := make([]LegendEntry, n)
	for i, rec := range p.Data {
		pct := 0
		if total != 0 {
			pct = format.Percent(vals[i] / total)
		}
		sliceLabels[i] = fmt.Sprintf("%s: %d%%", rec.Text(PieNameKey), pct)

		colors[i] = core.CategoryColor(i)
		if i < len(p.DataKeys) && p.DataKeys[i].Color != "" {
			colors[i] = p.DataKeys[i].Color
		}
		legend[i] = LegendEntry{Label: sliceLabels[i], Color: colors[i]}
	}

	return ChartConfig{
		Type: "pie",
		Data: ChartData{
			Labels: sliceLabels,
			Datasets: []Dataset{{
				Label:           valueKey,
				Data:            vals,
				BackgroundColor: colors,
			}},
		},
		Options: ChartOptions{
			Responsive:          true,
			MaintainAspectRatio: false,
			Plugins:             ChartPlugins{Legend: ChartLegend{Display: false}},
		},
	}, legend
}
