package components

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/core"
)

var listNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func sampleTransactions(n int) []core.Transaction {
	out := make([]core.Transaction, n)
	for i := range out {
		typ := core.Saida
		if i%2 == 0 {
			typ = core.Entrada
		}
		out[i] = core.Transaction{
			ID:       int64(i + 1),
			ItemName: fmt.Sprintf("Item %d", i+1),
			Type:     typ,
			Quantity: 2,
			Price:    3.5,
			Date:     core.NewTimestamp(listNow.Add(-time.Duration(i) * time.Hour)),
		}
	}
	return out
}

func TestTransactionsListCountIsMinOfLimitAndLen(t *testing.T) {
	for _, tc := range []struct{ n, limit, want int }{
		{0, 5, 0}, {3, 5, 3}, {5, 5, 5}, {12, 5, 5}, {12, 0, 10}, {12, -1, 10}, {4, 0, 4},
	} {
		v := BuildTransactionsList(TransactionsListProps{Transactions: sampleTransactions(tc.n), Limit: tc.limit, Now: listNow})
		assert.Len(t, v.Rows, tc.want, "n=%d limit=%d", tc.n, tc.limit)
	}
}

func TestTransactionsListKeepsOrder(t *testing.T) {
	txs := sampleTransactions(3)
	txs[0], txs[2] = txs[2], txs[0]
	v := BuildTransactionsList(TransactionsListProps{Transactions: txs, Now: listNow})
	assert.Equal(t, int64(3), v.Rows[0].ID)
	assert.Equal(t, int64(1), v.Rows[2].ID)
}

func TestTransactionsListStates(t *testing.T) {
	loading := BuildTransactionsList(TransactionsListProps{Loading: true, Transactions: sampleTransactions(3)})
	assert.Equal(t, StateLoading, loading.State)
	assert.Len(t, loading.Skeletons, 5)
	assert.Empty(t, loading.Rows)

	empty := BuildTransactionsList(TransactionsListProps{})
	assert.Equal(t, StateEmpty, empty.State)
}

func TestTransactionRowFormatting(t *testing.T) {
	stored := 12.0
	txs := []core.Transaction{
		{ID: 1, ItemName: "Arroz", Type: core.Entrada, Quantity: 2, Price: 3.5, Date: core.NewTimestamp(listNow.Add(-30 * time.Second))},
		{ID: 2, ItemName: "Feijão", Type: core.Saida, Quantity: 1.5, Price: 4, TotalValue: &stored,
			CreatedAt: core.NewTimestamp(listNow.Add(-3 * time.Hour))},
		{ID: 3, ItemName: "Óleo", Type: "ajuste", Date: core.NewTimestamp(listNow.Add(-10 * 24 * time.Hour))},
	}
	v := BuildTransactionsList(TransactionsListProps{Transactions: txs, Now: listNow})
	require.Len(t, v.Rows, 3)

	in := v.Rows[0]
	assert.Equal(t, "entrada", in.Modifier)
	assert.Equal(t, "Entrada", in.BadgeLabel)
	assert.Equal(t, "Agora mesmo", in.When)
	assert.Equal(t, "2 un", in.Quantity)
	assert.Equal(t, "+R$ 7.00", in.Value)

	out := v.Rows[1]
	assert.Equal(t, "saida", out.Modifier)
	assert.Equal(t, "Saída", out.BadgeLabel)
	assert.Equal(t, "3h atrás", out.When, "falls back to created_at")
	assert.Equal(t, "1.5 un", out.Quantity)
	assert.Equal(t, "-R$ 12.00", out.Value, "stored total wins")

	unknown := v.Rows[2]
	assert.Equal(t, "saida", unknown.Modifier, "unknown types render as outbound")
	assert.Equal(t, "05/06/2025", unknown.When)
	assert.Equal(t, "0 un", unknown.Quantity)
	assert.Equal(t, "-R$ 0.00", unknown.Value)
}

func TestTransactionsListInteractivity(t *testing.T) {
	r := newRenderer(t)
	txs := sampleTransactions(2)

	var buf bytes.Buffer
	require.NoError(t, r.TransactionsList(&buf, TransactionsListProps{Transactions: txs, Now: listNow}))
	plain := buf.String()
	assert.NotContains(t, plain, "--clickable")
	assert.NotContains(t, plain, "›")
	assert.NotContains(t, plain, "hx-get")

	buf.Reset()
	require.NoError(t, r.TransactionsList(&buf, TransactionsListProps{
		Transactions:  txs,
		Now:           listNow,
		OnViewDetails: func(tx core.Transaction) string { return fmt.Sprintf("/ui/transactions/%d", tx.ID) },
	}))
	clickable := buf.String()
	assert.Equal(t, 2, strings.Count(clickable, "transactions-list__item--clickable"))
	assert.Equal(t, 2, strings.Count(clickable, "›"))
	assert.Contains(t, clickable, `hx-get="/ui/transactions/2"`)
}

func TestTransactionsListTemplateStates(t *testing.T) {
	r := newRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.TransactionsList(&buf, TransactionsListProps{Loading: true}))
	assert.Equal(t, 5, strings.Count(buf.String(), "transactions-list__skeleton-item"))
	assert.Contains(t, buf.String(), "Transações Recentes")

	buf.Reset()
	require.NoError(t, r.TransactionsList(&buf, TransactionsListProps{}))
	assert.Contains(t, buf.String(), "Nenhuma transação encontrada")

	buf.Reset()
	require.NoError(t, r.TransactionsList(&buf, TransactionsListProps{Transactions: sampleTransactions(20), Limit: 7, Now: listNow}))
	assert.Equal(t, 7, strings.Count(buf.String(), `data-transaction-id=`))
}

func TestTransactionDetail(t *testing.T) {
	r := newRenderer(t)
	tx := sampleTransactions(1)[0]
	tx.Description = "Compra do mês"

	v := BuildTransactionDetail(&tx, listNow)
	assert.True(t, v.Found)
	assert.Equal(t, "R$ 3.50", v.UnitPrice)
	assert.Equal(t, "15/06/2025 12:00", v.Date)

	var buf bytes.Buffer
	require.NoError(t, r.TransactionDetail(&buf, &tx, listNow))
	assert.Contains(t, buf.String(), "Compra do mês")

	buf.Reset()
	require.NoError(t, r.TransactionDetail(&buf, nil, listNow))
	assert.Contains(t, buf.String(), "Transação não encontrada")
}
