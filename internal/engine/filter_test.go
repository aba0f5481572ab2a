package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SediPull/internal/domain/models"
)

func TestFilterRecentDropsStaleAndDateless(t *testing.T) {
	recs := []models.TransactionRecord{
		rec("a", "XYZ", "A", "", "10", 5, 100, 1, ""),
		rec("b", "XYZ", "A", "", "10", 45, 100, 1, ""), // outside 30d window
		{ID: "c", Symbol: "XYZ", Insider: "A", Code: "10"}, // zero date
	}

	got := FilterRecent(recs, testNow, 30)

	assert.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestFilterRecentWindowBoundary(t *testing.T) {
	edge := rec("edge", "XYZ", "A", "", "10", 30, 100, 1, "")
	edge.TxDate = testNow.AddDate(0, 0, -30) // exactly on the cutoff stays

	got := FilterRecent([]models.TransactionRecord{edge}, testNow, 30)
	assert.Len(t, got, 1)
}

func TestDeduplicateLastWins(t *testing.T) {
	first := rec("dup", "XYZ", "A", "", "10", 5, 100, 1.00, "")
	corrected := rec("dup", "XYZ", "A", "", "10", 5, 100, 1.25, "")
	other := rec("x", "XYZ", "B", "", "10", 5, 50, 2, "")

	got := Deduplicate([]models.TransactionRecord{first, other, corrected})

	assert.Len(t, got, 2)
	assert.Equal(t, "dup", got[0].ID)
	assert.Equal(t, 1.25, got[0].Price, "correction replaces the earlier record in place")
	assert.Equal(t, "x", got[1].ID)
}

func TestGrouping(t *testing.T) {
	recs := []models.TransactionRecord{
		rec("1", "AAA", "Alice", "", "10", 1, 10, 1, ""),
		rec("2", "BBB", "Bob", "", "10", 1, 10, 1, ""),
		rec("3", "AAA", "Alice", "", "10", 2, 10, 1, ""),
		rec("4", "AAA", "Carol", "", "10", 2, 10, 1, ""),
	}

	bySym := GroupBySymbol(recs)
	assert.Len(t, bySym, 2)
	assert.Len(t, bySym["AAA"], 3)

	byIns := GroupByInsider(bySym["AAA"])
	assert.Len(t, byIns, 2)
	assert.Len(t, byIns["Alice"], 2)
}
