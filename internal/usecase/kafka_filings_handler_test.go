package usecase

import (
	"context"
	"testing"

	domrepo "SediPull/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawBatch = `[
	{"sedi_transaction_id":"tx-1","symbol":"abc","insider_name":"Doe, Jane","relationship_type":"4 - Director of Issuer","type":"10 - Acquisition in the public market","transaction_date":"2026-01-10","number_moved":"5,000","price":"$1.25","currency":"CAD"},
	{"sedi_transaction_id":"tx-2","symbol":"abc","insider_name":"Doe, Jane","relationship_type":"4 - Director of Issuer","type":"10 - Acquisition in the public market","transaction_date":"2026-01-11","number_moved":"2,000","price":"$1.30","currency":"CAD"},
	{"sedi_transaction_id":"tx-3","symbol":"xyz","insider_name":"Smith, Bob","relationship_type":"5 - Senior Officer of Issuer","type":"10 - Acquisition in the public market","transaction_date":"2026-01-12","number_moved":"1,000","price":"$4.00","currency":"CAD"}
]`

func newFilingsHandler(store *fakeStore, q *fakeQueue) *KafkaFilingsHandler {
	return NewKafkaFilingsHandler("sedi.filings.raw", store, q, domrepo.NopMetrics{}, testLogger())
}

func TestFilingsHandlerBatchQueuesDistinctSymbols(t *testing.T) {
	store := &fakeStore{newCount: 3}
	q := &fakeQueue{}
	h := newFilingsHandler(store, q)

	require.NoError(t, h.Handle(context.Background(), []byte(rawBatch)))

	assert.Len(t, store.filings, 3)
	// Two records for ABC collapse into one rescan request.
	assert.Equal(t, []string{"ABC", "XYZ"}, q.symbols())
}

func TestFilingsHandlerSingleObject(t *testing.T) {
	store := &fakeStore{newCount: 1}
	q := &fakeQueue{}
	h := newFilingsHandler(store, q)

	payload := `{"sedi_transaction_id":"tx-9","symbol":"solo","insider_name":"Doe, Jane","type":"10 - Acquisition in the public market","transaction_date":"2026-01-10","number_moved":"100","price":"2.00"}`
	require.NoError(t, h.Handle(context.Background(), []byte(payload)))

	assert.Len(t, store.filings, 1)
	assert.Equal(t, []string{"SOLO"}, q.symbols())
}

func TestFilingsHandlerReplayQueuesNothing(t *testing.T) {
	// The store reports zero new rows for a replayed batch.
	store := &fakeStore{newCount: 0}
	q := &fakeQueue{}
	h := newFilingsHandler(store, q)

	require.NoError(t, h.Handle(context.Background(), []byte(rawBatch)))
	assert.Empty(t, q.messages)
}

func TestFilingsHandlerRejectsMalformedPayload(t *testing.T) {
	store := &fakeStore{newCount: 1}
	q := &fakeQueue{}
	h := newFilingsHandler(store, q)

	assert.Error(t, h.Handle(context.Background(), []byte(`{"symbol":`)))
	assert.Empty(t, store.filings)
	assert.Empty(t, q.messages)
}
