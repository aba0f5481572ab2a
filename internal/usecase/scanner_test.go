package usecase

import (
	"context"
	"testing"

	domrepo "SediPull/internal/domain/repository"
	"SediPull/internal/engine"
	"SediPull/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScanner(store *fakeStore, watchlist ...string) *Scanner {
	cfg := config.Default()
	cfg.Watchlist = watchlist
	eng := engine.New(cfg.Scoring, nil, nil, nil)
	return NewScanner(eng, store, nil, nil, nil, cfg, domrepo.NopMetrics{}, testLogger())
}

func TestScannerWatchlistMutations(t *testing.T) {
	s := testScanner(&fakeStore{}, "abc", " xyz ")

	// Seeded symbols are normalized to uppercase.
	assert.True(t, s.Watched("ABC"))
	assert.True(t, s.Watched("xyz"))
	assert.Equal(t, []string{"ABC", "XYZ"}, s.Watchlist())

	s.Watch("newco")
	assert.True(t, s.Watched("NEWCO"))

	s.Unwatch("abc")
	assert.False(t, s.Watched("ABC"))
	assert.Equal(t, []string{"NEWCO", "XYZ"}, s.Watchlist())

	// Blank input is ignored rather than stored.
	s.Watch("   ")
	assert.Equal(t, []string{"NEWCO", "XYZ"}, s.Watchlist())
}

func TestScanJobRejectsEmptySymbol(t *testing.T) {
	j := NewScanJob(testScanner(&fakeStore{}))

	assert.Error(t, j.Handle(context.Background(), ScanTask{}))
	assert.Error(t, j.Handle(context.Background(), "not a task"))
}

func TestScanJobParsesQueuedPayload(t *testing.T) {
	store := &fakeStore{}
	j := NewScanJob(testScanner(store))

	// Redis round-trips payloads as generic JSON maps.
	err := j.Handle(context.Background(), map[string]interface{}{"symbol": "ABC"})
	require.NoError(t, err)
}

func TestScanSymbolPersistsSignals(t *testing.T) {
	store := &fakeStore{}
	s := testScanner(store)

	// A director buying 100k shares on the open market scores well above
	// the active threshold.
	store.filings = append(store.filings, filing("tx-1", "ABC", "Doe, Jane", "4 - Director of Issuer", "10", 5, 100000, 1.50))

	result, err := s.ScanSymbol(context.Background(), "ABC")
	require.NoError(t, err)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, "ABC", result.Signals[0].Symbol)
	assert.Len(t, store.signals, 1)
}

func TestScanSymbolQuietSecurity(t *testing.T) {
	store := &fakeStore{}
	s := testScanner(store)

	result, err := s.ScanSymbol(context.Background(), "EMPTY")
	require.NoError(t, err)
	assert.Empty(t, result.Signals)
	assert.Empty(t, store.signals)
}
