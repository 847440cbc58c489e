package components

import (
	"io"

	"estoque/internal/core"
	"estoque/internal/format"
)

// ViewState is the display state shared by all components.
type ViewState string

const (
	StateLoading     ViewState = "loading"
	StateEmpty       ViewState = "empty"
	StatePopulated   ViewState = "populated"
	StateUnsupported ViewState = "unsupported"
)

const cardDefaultTitle = "Gastos do Mês"

// MonthlyExpensesCardProps configures the card. MonthlyData is ascending by
// month; the last element is the current month.
type MonthlyExpensesCardProps struct {
	MonthlyData []core.MonthlyAggregate
	Loading     bool
	// OnLoad is fetched once after the card is first shown.
	OnLoad string
}

// MonthlyExpensesCardView is what the template renders.
type MonthlyExpensesCardView struct {
	State  ViewState
	OnLoad string
	Title  string

	Value            string
	TransactionCount int

	HasPrevious    bool
	IsIncrease     bool
	TrendClass     string
	TrendIcon      string
	Percentage     string
	ComparisonText string
	PreviousLabel  string
	PreviousTotal  string
}

// BuildMonthlyExpensesCard derives the card's view from its props.
func BuildMonthlyExpensesCard(p MonthlyExpensesCardProps) MonthlyExpensesCardView {
	v := MonthlyExpensesCardView{OnLoad: p.OnLoad, Title: cardDefaultTitle}

	if p.Loading {
		v.State = StateLoading
		return v
	}
	n := len(p.MonthlyData)
	if n == 0 {
		v.State = StateEmpty
		return v
	}

	current := p.MonthlyData[n-1]
	v.State = StatePopulated
	v.Title = "Gastos de " + format.MonthAbbrev(current.Month)
	v.Value = format.Currency(current.TotalSpent)
	v.TransactionCount = current.TransactionCount

	if n < 2 {
		return v
	}
	previous := p.MonthlyData[n-2]
	v.HasPrevious = true
	v.PreviousLabel = format.MonthAbbrev(previous.Month)
	v.PreviousTotal = format.Currency(previous.TotalSpent)
	v.IsIncrease = current.DifferenceFromPrevious > 0
	v.Percentage = format.Percentage(current.PercentageChange)
	if v.IsIncrease {
		v.TrendClass, v.TrendIcon = "increase", "↑"
		v.ComparisonText = "mais que " + v.PreviousLabel
	} else {
		v.TrendClass, v.TrendIcon = "decrease", "↓"
		v.ComparisonText = "menos que " + v.PreviousLabel
	}
	return v
}

// MonthlyExpensesCard renders the card.
func (r *Renderer) MonthlyExpensesCard(w io.Writer, p MonthlyExpensesCardProps) error {
	return r.Render(w, TemplateMonthlyExpensesCard, BuildMonthlyExpensesCard(p))
}
