package statistics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/core"
)

func TestDemoDatasetIsValidAndDeterministic(t *testing.T) {
	a := DemoDataset(testNow)
	b := DemoDataset(testNow)

	require.NoError(t, a.Validate())
	assert.Equal(t, a, b)
	assert.Len(t, a.Items, len(demoItems))
	assert.NotEmpty(t, a.Transactions)

	for _, tx := range a.Transactions {
		assert.False(t, tx.When().After(testNow), "transaction %d is in the future", tx.ID)
	}

	months := MonthlyExpenses(a.Transactions, testNow, 6)
	for _, m := range months {
		assert.Positive(t, m.TotalSpent, "%s has no purchases", m.MonthLabel)
	}
}

func TestLoadDatasetOrDemo(t *testing.T) {
	d, err := LoadDatasetOrDemo("", testNow)
	require.NoError(t, err)
	assert.NotEmpty(t, d.Items)

	d, err = LoadDatasetOrDemo(filepath.Join(t.TempDir(), "nope.json"), testNow)
	require.NoError(t, err)
	assert.NotEmpty(t, d.Items)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadDatasetOrDemo(bad, testNow)
	assert.Error(t, err)
}

func TestDatasetValidate(t *testing.T) {
	d := Dataset{Items: []core.Item{{ID: 1, Name: ""}}}
	assert.ErrorIs(t, d.Validate(), core.ErrEmptyItemName)
}
