package core

type (
	ConsumptionStatus string
	PriceTrend        string
)

const (
	StatusCritico ConsumptionStatus = "critico" // < 7 days of stock
	StatusAlerta  ConsumptionStatus = "alerta"  // 7-14 days
	StatusNormal  ConsumptionStatus = "normal"  // > 14 days or no forecast

	TrendAlta    PriceTrend = "alta"
	TrendBaixa   PriceTrend = "baixa"
	TrendEstavel PriceTrend = "estavel"
)

// Consumption status thresholds, in days of remaining stock.
const (
	CriticalStockDays = 7
	AlertStockDays    = 14
)

// PeriodOptions lists the selectable statistics windows.
var PeriodOptions = []PeriodOption{
	{Value: 7, Label: "7 dias", Key: "7d"},
	{Value: 30, Label: "30 dias", Key: "30d"},
	{Value: 90, Label: "90 dias", Key: "90d"},
	{Value: 180, Label: "6 meses", Key: "180d"},
	{Value: 365, Label: "1 ano", Key: "365d"},
}

// DefaultPeriod is the 30 day window.
var DefaultPeriod = PeriodOptions[1]

// PeriodByKey returns the option with the given key, or DefaultPeriod.
func PeriodByKey(key string) PeriodOption {
	for _, p := range PeriodOptions {
		if p.Key == key {
			return p
		}
	}
	return DefaultPeriod
}

// TransactionTypes lists the transaction type filter values.
var TransactionTypes = []TransactionType{Entrada, Saida, AllTypes}

// ChartColors is the named chart palette.
var ChartColors = struct {
	Primary, Success, Danger, Warning, Info, Purple, Teal, Gray string
}{
	Primary: "#2196f3",
	Success: "#4caf50", // entradas
	Danger:  "#f44336", // saidas
	Warning: "#ff9800",
	Info:    "#00bcd4",
	Purple:  "#9c27b0",
	Teal:    "#009688",
	Gray:    "#9e9e9e",
}

// CategoryColors is the palette cycled through by categorical charts.
var CategoryColors = []string{
	"#2196f3", "#4caf50", "#ff9800", "#9c27b0",
	"#00bcd4", "#f44336", "#009688", "#ff5722",
}

// CategoryColor returns the palette colour for index i, cycling.
func CategoryColor(i int) string {
	if i < 0 {
		i = -i
	}
	return CategoryColors[i%len(CategoryColors)]
}

// StatusForDays classifies days of remaining stock. nil means no depletion forecast.
func StatusForDays(days *float64) ConsumptionStatus {
	switch {
	case days == nil:
		return StatusNormal
	case *days < CriticalStockDays:
		return StatusCritico
	case *days <= AlertStockDays:
		return StatusAlerta
	default:
		return StatusNormal
	}
}
