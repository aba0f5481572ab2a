package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDirtyFields(t *testing.T) {
	scraped := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := RawFiling{
		TransactionID: " tx-123 ",
		Symbol:        "aec.to",
		InsiderName:   "  Jane Roe ",
		Relationship:  "4 - Director",
		Type:          "54 - Exercise of warrants",
		TxDate:        "2025-12-19",
		NumberMoved:   "+239,491",
		Price:         "",
		UnitPrice:     "$2.5000",
		Currency:      "cad",
		Security:      "Common Shares",
		Balance:       "1,000,000",
	}

	got := Normalize(raw, scraped)

	assert.Equal(t, "tx-123", got.ID)
	assert.Equal(t, "AEC.TO", got.Symbol)
	assert.Equal(t, "Jane Roe", got.Insider)
	assert.Equal(t, "54", got.Code)
	assert.Equal(t, 239491.0, got.Quantity)
	assert.Equal(t, 2.5, got.Price) // unit_price fallback
	assert.Equal(t, "CAD", got.Currency)
	assert.Equal(t, 1000000.0, got.Balance)
	assert.Equal(t, scraped, got.ScrapedAt)
	assert.Equal(t, 2025, got.TxDate.Year())
}

func TestNormalizeMalformedInputResolvesSoft(t *testing.T) {
	got := Normalize(RawFiling{
		TransactionID: "tx-9",
		Symbol:        "XYZ",
		Type:          "",
		TxDate:        "not a date",
		NumberMoved:   "n/a",
		Price:         "??",
	}, time.Time{})

	assert.Equal(t, "00", got.Code, "missing type resolves to sentinel code")
	assert.Zero(t, got.Quantity)
	assert.Zero(t, got.Price)
	assert.True(t, got.TxDate.IsZero())
}

func TestNormalizeBatchSkipsMissingIDs(t *testing.T) {
	raws := []RawFiling{
		{TransactionID: "a", Symbol: "X"},
		{TransactionID: "", Symbol: "X"},
		{TransactionID: "b", Symbol: "X"},
	}
	got := NormalizeBatch(raws, time.Time{})
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}
