package core

// MonthlyAggregate is one month of spending. Sequences are ordered ascending:
// the last element is the current month.
type MonthlyAggregate struct {
	Year                   int     `json:"year"`
	Month                  int     `json:"month"` // 1-12
	MonthLabel             string  `json:"month_label,omitempty"`
	TransactionCount       int     `json:"transaction_count"`
	TotalSpent             float64 `json:"total_spent"`
	DifferenceFromPrevious float64 `json:"difference_from_previous"`
	PercentageChange       float64 `json:"percentage_change"`
}

// TransactionSummary aggregates transactions over a period.
type TransactionSummary struct {
	TotalTransactions   int     `json:"total_transactions"`
	TotalEntradas       int     `json:"total_entradas"`
	TotalSaidas         int     `json:"total_saidas"`
	ValorTotalEntradas  float64 `json:"valor_total_entradas"`
	ValorTotalSaidas    float64 `json:"valor_total_saidas"`
	SaldoPeriodo        float64 `json:"saldo_periodo"`
	ValorMedioTransacao float64 `json:"valor_medio_transacao"`
	ItemsDistintos      int     `json:"items_distintos"`
}

// DailyTransaction is one point of the daily series. Entrada and Saida hold quantities,
// Total the number of transactions that day.
type DailyTransaction struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Entrada      float64 `json:"entrada"`
	Saida        float64 `json:"saida"`
	Total        int     `json:"total"`
	ValorEntrada float64 `json:"valor_entrada"`
	ValorSaida   float64 `json:"valor_saida"`
}

type MostTransactedItem struct {
	ItemID            int64   `json:"item_id"`
	ItemName          string  `json:"item_name"`
	TotalQuantity     float64 `json:"total_quantity"`
	TotalEntradas     float64 `json:"total_entradas"`
	TotalSaidas       float64 `json:"total_saidas"`
	TotalTransactions int     `json:"total_transactions"`
	ValorTotal        float64 `json:"valor_total"`
}

type ConsumptionRate struct {
	ItemID              int64             `json:"item_id"`
	ItemName            string            `json:"item_name"`
	TotalConsumido      float64           `json:"total_consumido"`
	TaxaDiaria          float64           `json:"taxa_diaria"`
	EstoqueAtual        float64           `json:"estoque_atual"`
	DiasParaEsgotamento *float64          `json:"dias_para_esgotamento"` // nil when stock never runs out
	Status              ConsumptionStatus `json:"status"`
}

type PriceAnalysis struct {
	ItemID             int64      `json:"item_id"`
	ItemName           string     `json:"item_name"`
	PrecoMedio         float64    `json:"preco_medio"`
	PrecoMinimo        float64    `json:"preco_minimo"`
	PrecoMaximo        float64    `json:"preco_maximo"`
	VariacaoPercentual float64    `json:"variacao_percentual"`
	TotalTransacoes    int        `json:"total_transacoes"`
	Tendencia          PriceTrend `json:"tendencia"`
}

type InventorySummary struct {
	TotalItems    int     `json:"total_items"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
	AveragePrice  float64 `json:"average_price"`
	ItemsLowStock int     `json:"items_low_stock"`
}

// DashboardData is the dashboard snapshot.
type DashboardData struct {
	Inventory            InventorySummary   `json:"inventory"`
	Transactions30d      TransactionSummary `json:"transactions_30d"`
	LowStockCount        int                `json:"low_stock_count"`
	ExpiringSoonCount    int                `json:"expiring_soon_count"`
	FeasibleRecipesCount int                `json:"feasible_recipes_count"`
}

// PeriodOption is a selectable statistics window.
type PeriodOption struct {
	Value int    `json:"value"` // days
	Label string `json:"label"`
	Key   string `json:"key"`
}
