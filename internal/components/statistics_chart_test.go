package components

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/core"
)

func dailyRecords() []core.Record {
	return []core.Record{
		{"date": "2025-01-01", "entrada": 1500.0, "saida": 5.0},
		{"date": "2025-01-02", "entrada": 15.0, "saida": "bad"},
		{"date": "2025-01-03"},
	}
}

func TestParseChartKind(t *testing.T) {
	for _, s := range []string{"line", "bar", "area", "pie", " PIE "} {
		k, ok := ParseChartKind(s)
		assert.True(t, ok, s)
		assert.NotZero(t, k)
	}
	_, ok := ParseChartKind("radar")
	assert.False(t, ok)
	assert.Equal(t, "area", ChartArea.String())
	assert.Equal(t, "ChartKind(0)", ChartKind(0).String())
}

func TestChartStatesPrecedence(t *testing.T) {
	loading := BuildStatisticsChart(StatisticsChartProps{Loading: true, Type: "radar", Data: dailyRecords()})
	assert.Equal(t, StateLoading, loading.State)
	assert.Equal(t, DefaultChartHeight, loading.Height)

	empty := BuildStatisticsChart(StatisticsChartProps{Type: "radar"})
	assert.Equal(t, StateEmpty, empty.State)

	unsupported := BuildStatisticsChart(StatisticsChartProps{Type: "radar", Data: dailyRecords()})
	assert.Equal(t, StateUnsupported, unsupported.State)
	assert.Equal(t, "Tipo de gráfico não suportado", unsupported.Message)
}

func TestEmptyChartTypeDefaultsToLine(t *testing.T) {
	v := BuildStatisticsChart(StatisticsChartProps{Data: dailyRecords(), DataKeys: []core.SeriesSpec{{Key: "entrada"}}})
	assert.Equal(t, StatePopulated, v.State)
	assert.Equal(t, "line", v.Kind)
	assert.Empty(t, v.Message)
}

func TestLineChartConfig(t *testing.T) {
	v := BuildStatisticsChart(StatisticsChartProps{
		Type:     "line",
		Data:     dailyRecords(),
		DataKeys: []core.SeriesSpec{{Key: "entrada", Color: "#4caf50", Name: "Entradas"}, {Key: "saida"}},
		Height:   220,
	})
	require.Equal(t, StatePopulated, v.State)
	assert.Equal(t, 220, v.Height)

	cfg := v.Config
	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 2)

	assert.Equal(t, "Entradas", cfg.Data.Datasets[0].Label)
	assert.Equal(t, "#4caf50", cfg.Data.Datasets[0].BorderColor)
	assert.Equal(t, []float64{1500, 15, 0}, cfg.Data.Datasets[0].Data)

	assert.Equal(t, "saida", cfg.Data.Datasets[1].Label, "label falls back to key")
	assert.Equal(t, core.ChartColors.Primary, cfg.Data.Datasets[1].BorderColor)
	assert.Equal(t, []float64{5, 0, 0}, cfg.Data.Datasets[1].Data, "non-numeric and missing values read as zero")
	assert.False(t, cfg.Data.Datasets[1].Fill)
}

func TestAreaChartIsFilledLine(t *testing.T) {
	v := BuildStatisticsChart(StatisticsChartProps{
		Type:     "area",
		Data:     dailyRecords(),
		DataKeys: []core.SeriesSpec{{Key: "entrada", Color: "#4caf50"}, {Key: "saida", Color: "tomato"}},
	})
	ds := v.Config.Data.Datasets
	assert.Equal(t, "line", v.Config.Type)
	assert.Equal(t, "area", v.Kind)
	assert.True(t, ds[0].Fill)
	assert.Equal(t, "#4caf504D", ds[0].BackgroundColor)
	assert.Equal(t, "tomato", ds[1].BackgroundColor)
}

func TestBarChartTooltips(t *testing.T) {
	v := BuildStatisticsChart(StatisticsChartProps{
		Type:     "bar",
		Data:     dailyRecords(),
		DataKeys: []core.SeriesSpec{{Key: "entrada"}, {Key: "saida"}},
	})
	ds := v.Config.Data.Datasets
	require.Len(t, ds, 2)
	assert.Equal(t, []string{"Quantidade: 1.5 kg", "Quantidade: 15.0 un", "Quantidade: 0.00 un"}, ds[0].Tooltips)
	assert.Empty(t, ds[1].Tooltips)
	assert.Equal(t, 4, ds[0].BorderRadius)
}

func TestPieChartLabelsAndColors(t *testing.T) {
	v := BuildStatisticsChart(StatisticsChartProps{
		Type: "pie",
		Data: []core.Record{{"name": "A", "value": 10}, {"name": "B", "value": 20}},
	})
	require.Equal(t, StatePopulated, v.State)
	assert.Equal(t, []string{"A: 33%", "B: 67%"}, v.Config.Data.Labels)
	assert.Equal(t, []string{core.CategoryColors[0], core.CategoryColors[1]}, v.Config.Data.Datasets[0].BackgroundColor)
	require.Len(t, v.Legend, 2)
	assert.Equal(t, "A: 33%", v.Legend[0].Label)

	custom := BuildStatisticsChart(StatisticsChartProps{
		Type:     "pie",
		Data:     []core.Record{{"name": "x", "qty": 1}, {"name": "y", "qty": 0}},
		DataKeys: []core.SeriesSpec{{Key: "qty", Color: "#000000"}},
	})
	assert.Equal(t, []string{"x: 100%", "y: 0%"}, custom.Config.Data.Labels)
	assert.Equal(t, []string{"#000000", core.CategoryColors[1]}, custom.Config.Data.Datasets[0].BackgroundColor)

	zero := BuildStatisticsChart(StatisticsChartProps{Type: "pie", Data: []core.Record{{"name": "z"}}})
	assert.Equal(t, []string{"z: 0%"}, zero.Config.Data.Labels)
}

func TestPieColorsCycle(t *testing.T) {
	data := make([]core.Record, 10)
	for i := range data {
		data[i] = core.Record{"name": "i", "value": 1}
	}
	v := BuildStatisticsChart(StatisticsChartProps{Type: "pie", Data: data})
	colors := v.Config.Data.Datasets[0].BackgroundColor.([]string)
	assert.Equal(t, core.CategoryColors[0], colors[8])
	assert.Equal(t, core.CategoryColors[1], colors[9])
}

func TestCustomXAxisKey(t *testing.T) {
	v := BuildStatisticsChart(StatisticsChartProps{
		Type:     "bar",
		XAxisKey: "item_name",
		Data:     []core.Record{{"item_name": "Arroz", "total_quantity": 3}},
		DataKeys: []core.SeriesSpec{{Key: "total_quantity"}},
	})
	assert.Equal(t, []string{"Arroz"}, v.Config.Data.Labels)
}

func TestStatisticsChartTemplate(t *testing.T) {
	r := newRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.StatisticsChart(&buf, StatisticsChartProps{Type: "pie", Title: "Tipos",
		Data: []core.Record{{"name": "A", "value": 10}, {"name": "B", "value": 20}}}))
	out := buf.String()
	assert.Contains(t, out, "Tipos")
	assert.Contains(t, out, "data-chart-config=")
	assert.Contains(t, out, "A: 33%")

	v := BuildStatisticsChart(StatisticsChartProps{Type: "pie", Data: []core.Record{{"name": "A", "value": 1}}})
	raw, err := v.ConfigJSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "pie", decoded["type"])

	buf.Reset()
	require.NoError(t, r.StatisticsChart(&buf, StatisticsChartProps{Type: "pie"}))
	assert.Contains(t, buf.String(), "Nenhum dado disponível")

	buf.Reset()
	require.NoError(t, r.StatisticsChart(&buf, StatisticsChartProps{Type: "radar", Data: dailyRecords()}))
	assert.Contains(t, buf.String(), "Tipo de gráfico não suportado")
	assert.NotContains(t, buf.String(), "<canvas")

	buf.Reset()
	require.NoError(t, r.StatisticsChart(&buf, StatisticsChartProps{Loading: true, OnLoad: "/ui/charts/daily"}))
	assert.Contains(t, buf.String(), "statistics-chart__skeleton")
	assert.Contains(t, buf.String(), `hx-get="/ui/charts/daily"`)
}
