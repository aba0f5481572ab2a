package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRequiresSymbol(t *testing.T) {
	uc := NewHistoryUseCase(&fakeStore{})
	_, err := uc.GetFilings(context.Background(), GetFilingsParams{})
	assert.Error(t, err)
}

func TestHistoryRejectsInvertedRange(t *testing.T) {
	uc := NewHistoryUseCase(&fakeStore{})
	_, err := uc.GetFilings(context.Background(), GetFilingsParams{
		Symbol: "ABC",
		From:   time.Now(),
		To:     time.Now().AddDate(0, 0, -1),
	})
	assert.Error(t, err)
}

func TestHistoryDefaultsAndTrimming(t *testing.T) {
	store := &fakeStore{}
	store.filings = append(store.filings,
		filing("tx-1", "ABC", "Doe, Jane", "4 - Director of Issuer", "10", 5, 1000, 1.00),
		filing("tx-2", "ABC", "Doe, Jane", "4 - Director of Issuer", "10", 10, 1000, 1.00),
		filing("tx-3", "ABC", "Doe, Jane", "4 - Director of Issuer", "10", 20, 1000, 1.00),
		filing("tx-4", "XYZ", "Smith, Bob", "5 - Senior Officer of Issuer", "10", 5, 1000, 1.00),
	)

	uc := NewHistoryUseCase(store)
	res, err := uc.GetFilings(context.Background(), GetFilingsParams{Symbol: "ABC"})
	require.NoError(t, err)

	// Default window is the trailing 90 days; only ABC rows come back.
	assert.Equal(t, 3, res.Count)
	for _, f := range res.Filings {
		assert.Equal(t, "ABC", f.Symbol)
	}

	// Limit caps the result.
	res, err = uc.GetFilings(context.Background(), GetFilingsParams{Symbol: "ABC", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
}
