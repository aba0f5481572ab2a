package engine

import (
	"strings"
	"time"

	"SediPull/internal/domain/models"
	"SediPull/pkg/util"
)

// RawFiling is one filing exactly as the ingestion collaborators emit it:
// every field a string, most of them dirty. Field names follow the ceo.ca
// SEDI API payload.
type RawFiling struct {
	TransactionID string `json:"sedi_transaction_id"`
	Symbol        string `json:"symbol"`
	Issuer        string `json:"issuer_name"`
	IssuerNumber  string `json:"issuer_number"`
	InsiderName   string `json:"insider_name"`
	Relationship  string `json:"relationship_type"`
	Type          string `json:"type"`
	TxDate        string `json:"transaction_date"`
	FilingDate    string `json:"filing_date"`
	NumberMoved   string `json:"number_moved"`
	Price         string `json:"price"`
	UnitPrice     string `json:"unit_price"`
	Currency      string `json:"currency"`
	Security      string `json:"security"`
	Balance       string `json:"balance"`
}

// Normalize converts a raw filing into a typed record. It never fails:
// unparsable numbers resolve to zero and unparsable dates to the zero
// time, because upstream filing data is known to be dirty. The temporal
// filter drops records without a usable transaction date later.
func Normalize(raw RawFiling, scrapedAt time.Time) models.TransactionRecord {
	price := util.CleanNumber(raw.Price)
	if price == 0 {
		price = util.CleanNumber(raw.UnitPrice)
	}

	return models.TransactionRecord{
		ID:            strings.TrimSpace(raw.TransactionID),
		Symbol:        strings.ToUpper(strings.TrimSpace(raw.Symbol)),
		Issuer:        strings.TrimSpace(raw.Issuer),
		IssuerNumber:  strings.TrimSpace(raw.IssuerNumber),
		Insider:       strings.TrimSpace(raw.InsiderName),
		Relationship:  strings.TrimSpace(raw.Relationship),
		Code:          util.CodeFromType(raw.Type),
		TxDate:        util.ParseTimeDefault(raw.TxDate, time.Time{}),
		FilingDate:    util.ParseTimeDefault(raw.FilingDate, time.Time{}),
		Quantity:      util.CleanNumber(raw.NumberMoved),
		Price:         price,
		Currency:      strings.ToUpper(strings.TrimSpace(raw.Currency)),
		SecurityClass: strings.TrimSpace(raw.Security),
		Balance:       util.CleanNumber(raw.Balance),
		ScrapedAt:     scrapedAt,
	}
}

// NormalizeBatch converts a batch of raw filings, skipping entries without
// a transaction id since they cannot be deduplicated or audited.
func NormalizeBatch(raws []RawFiling, scrapedAt time.Time) []models.TransactionRecord {
	out := make([]models.TransactionRecord, 0, len(raws))
	for _, raw := range raws {
		rec := Normalize(raw, scrapedAt)
		if rec.ID == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}
