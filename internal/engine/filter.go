package engine

import (
	"time"

	"SediPull/internal/domain/models"
)

// FilterRecent keeps records whose transaction date falls within the
// lookback window ending at now. Records without a parsable date are
// dropped: stale re-fetched filings must not be re-scored.
func FilterRecent(recs []models.TransactionRecord, now time.Time, lookbackDays int) []models.TransactionRecord {
	cutoff := now.AddDate(0, 0, -lookbackDays)
	out := make([]models.TransactionRecord, 0, len(recs))
	for _, r := range recs {
		if r.TxDate.IsZero() {
			continue
		}
		if r.TxDate.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Deduplicate keeps one record per transaction id. Sources resend
// corrected versions of a filing in order of discovery, so the last-seen
// record wins. First-seen position decides ordering of survivors.
func Deduplicate(recs []models.TransactionRecord) []models.TransactionRecord {
	index := make(map[string]int, len(recs))
	out := make([]models.TransactionRecord, 0, len(recs))
	for _, r := range recs {
		if i, seen := index[r.ID]; seen {
			out[i] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

// GroupBySymbol buckets records per security, preserving input order
// within each bucket.
func GroupBySymbol(recs []models.TransactionRecord) map[string][]models.TransactionRecord {
	groups := make(map[string][]models.TransactionRecord)
	for _, r := range recs {
		groups[r.Symbol] = append(groups[r.Symbol], r)
	}
	return groups
}

// GroupByInsider buckets one security's records per insider.
func GroupByInsider(recs []models.TransactionRecord) map[string][]models.TransactionRecord {
	groups := make(map[string][]models.TransactionRecord)
	for _, r := range recs {
		groups[r.Insider] = append(groups[r.Insider], r)
	}
	return groups
}
