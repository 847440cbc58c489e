package components

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"estoque/internal/core"
)

func TestMonthlyExpensesCardStates(t *testing.T) {
	loading := BuildMonthlyExpensesCard(MonthlyExpensesCardProps{Loading: true, OnLoad: "/ui/monthly-expenses"})
	assert.Equal(t, StateLoading, loading.State)
	assert.Equal(t, "Gastos do Mês", loading.Title)
	assert.Equal(t, "/ui/monthly-expenses", loading.OnLoad)

	empty := BuildMonthlyExpensesCard(MonthlyExpensesCardProps{})
	assert.Equal(t, StateEmpty, empty.State)
	assert.Equal(t, "Gastos do Mês", empty.Title)
}

func TestMonthlyExpensesCardUsesLastTwoMonths(t *testing.T) {
	v := BuildMonthlyExpensesCard(MonthlyExpensesCardProps{MonthlyData: []core.MonthlyAggregate{
		{Year: 2024, Month: 12, TotalSpent: 999},
		{Year: 2025, Month: 1, TotalSpent: 100, TransactionCount: 4},
		{Year: 2025, Month: 2, TotalSpent: 150, TransactionCount: 6, DifferenceFromPrevious: 50, PercentageChange: 50},
	}})

	assert.Equal(t, StatePopulated, v.State)
	assert.Equal(t, "Gastos de Fev", v.Title)
	assert.Equal(t, "R$ 150.00", v.Value)
	assert.Equal(t, 6, v.TransactionCount)
	assert.True(t, v.HasPrevious)
	assert.True(t, v.IsIncrease)
	assert.Equal(t, "increase", v.TrendClass)
	assert.Equal(t, "50.0%", v.Percentage)
	assert.Equal(t, "mais que Jan", v.ComparisonText)
	assert.Equal(t, "Jan", v.PreviousLabel)
	assert.Equal(t, "R$ 100.00", v.PreviousTotal)
}

func TestMonthlyExpensesCardDecrease(t *testing.T) {
	v := BuildMonthlyExpensesCard(MonthlyExpensesCardProps{MonthlyData: []core.MonthlyAggregate{
		{Year: 2025, Month: 3, TotalSpent: 200},
		{Year: 2025, Month: 4, TotalSpent: 150, DifferenceFromPrevious: -50, PercentageChange: -25},
	}})
	assert.False(t, v.IsIncrease)
	assert.Equal(t, "decrease", v.TrendClass)
	assert.Equal(t, "25.0%", v.Percentage, "percentage is shown without sign")
	assert.Equal(t, "menos que Mar", v.ComparisonText)

	flat := BuildMonthlyExpensesCard(MonthlyExpensesCardProps{MonthlyData: []core.MonthlyAggregate{
		{Year: 2025, Month: 3}, {Year: 2025, Month: 4},
	}})
	assert.Equal(t, "decrease", flat.TrendClass, "zero difference is not an increase")
}

func TestMonthlyExpensesCardSingleMonth(t *testing.T) {
	v := BuildMonthlyExpensesCard(MonthlyExpensesCardProps{MonthlyData: []core.MonthlyAggregate{
		{Year: 2025, Month: 13, TotalSpent: 10},
	}})
	assert.Equal(t, StatePopulated, v.State)
	assert.False(t, v.HasPrevious)
	assert.Equal(t, "Gastos de 13", v.Title)
}

func TestMonthlyExpensesCardTemplate(t *testing.T) {
	r := newRenderer(t)

	var buf bytes.Buffer
	assert.NoError(t, r.MonthlyExpensesCard(&buf, MonthlyExpensesCardProps{Loading: true, OnLoad: "/ui/monthly-expenses?period=30d"}))
	out := buf.String()
	assert.Contains(t, out, "Carregando...")
	assert.Contains(t, out, `hx-trigger="load"`)
	assert.Contains(t, out, `hx-get="/ui/monthly-expenses?period=30d"`)

	buf.Reset()
	assert.NoError(t, r.MonthlyExpensesCard(&buf, MonthlyExpensesCardProps{}))
	assert.Contains(t, buf.String(), "Sem dados disponíveis")
	assert.NotContains(t, buf.String(), "hx-get")

	buf.Reset()
	assert.NoError(t, r.MonthlyExpensesCard(&buf, MonthlyExpensesCardProps{MonthlyData: []core.MonthlyAggregate{
		{Year: 2025, Month: 1, TotalSpent: 80},
		{Year: 2025, Month: 2, TotalSpent: 100, TransactionCount: 3, DifferenceFromPrevious: 20, PercentageChange: 25},
	}}))
	out = buf.String()
	assert.Contains(t, out, "Gastos de Fev")
	assert.Contains(t, out, "R$ 100.00")
	assert.Contains(t, out, "monthly-expenses-card__comparison--increase")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "mais que Jan")
	assert.Contains(t, out, "R$ 80.00")
}
