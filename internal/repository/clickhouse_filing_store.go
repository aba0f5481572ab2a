package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
	pkgch "SediPull/pkg/clickhouse"
	applogger "SediPull/pkg/logger"
)

// Schema statements are idempotent; Init runs them on every start.
var filingSchema = []string{
	"CREATE DATABASE IF NOT EXISTS sedipull",
	`CREATE TABLE IF NOT EXISTS sedipull.filings (
        id String,
        symbol String,
        issuer String,
        issuer_number String,
        insider String,
        relationship String,
        code String,
        tx_date DateTime,
        filing_date DateTime,
        quantity Float64,
        price Float64,
        currency String,
        security_class String,
        balance Float64,
        scraped_at DateTime
    ) ENGINE = ReplacingMergeTree(scraped_at)
    ORDER BY (symbol, id)`,
	`CREATE TABLE IF NOT EXISTS sedipull.signals (
        symbol String,
        issuer String,
        insider String,
        relationship String,
        score Int32,
        display_score Int32,
        net_cash Float64,
        buy_volume Float64,
        avg_price Float64,
        reasons String,
        plan UInt8,
        watchlisted UInt8,
        escalated UInt8,
        last_tx_date DateTime,
        commentary String,
        generated_at DateTime
    ) ENGINE = MergeTree
    ORDER BY (symbol, generated_at)`,
}

// reasonSep joins reason tags into one column. Tags are lowercase slugs
// plus the whale annotation, none of which contain the separator.
const reasonSep = "|"

// CHFilingStore implements FilingStore backed by ClickHouse. It owns the
// durable dedup set: SaveFilings reports how many records were unseen,
// which is what tells the scanner a rescan is worth scheduling.
type CHFilingStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHFilingStore(ch *pkgch.Client) *CHFilingStore {
	return &CHFilingStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHFilingStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHFilingStore) Init(ctx context.Context) error {
	for _, stmt := range filingSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("filing schema: %w", err)
		}
	}
	return nil
}

// SaveFilings inserts records not already present and returns how many
// were new. Known IDs are skipped client-side; the ReplacingMergeTree
// collapses any race losers on merge.
func (s *CHFilingStore) SaveFilings(ctx context.Context, recs []models.TransactionRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	start := time.Now()

	known, err := s.knownIDs(ctx, recs)
	if err != nil {
		return 0, err
	}

	values := make([]string, 0, len(recs))
	args := make([]interface{}, 0, len(recs)*15)
	for _, r := range recs {
		if r.ID == "" || known[r.ID] {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.ID, r.Symbol, r.Issuer, r.IssuerNumber, r.Insider, r.Relationship,
			r.Code, r.TxDate, r.FilingDate, r.Quantity, r.Price, r.Currency,
			r.SecurityClass, r.Balance, r.ScrapedAt,
		)
	}
	if len(values) == 0 {
		return 0, nil
	}

	q := "INSERT INTO sedipull.filings (id, symbol, issuer, issuer_number, insider, relationship, code, tx_date, filing_date, quantity, price, currency, security_class, balance, scraped_at) VALUES " +
		strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_filings error",
				applogger.Int("records", len(values)),
				applogger.Error(err),
			)
		}
		return 0, fmt.Errorf("save filings: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse save_filings ok",
			applogger.Int("received", len(recs)),
			applogger.Int("new", len(values)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return len(values), nil
}

func (s *CHFilingStore) knownIDs(ctx context.Context, recs []models.TransactionRecord) (map[string]bool, error) {
	placeholders := make([]string, 0, len(recs))
	args := make([]interface{}, 0, len(recs))
	for _, r := range recs {
		if r.ID == "" {
			continue
		}
		placeholders = append(placeholders, "?")
		args = append(args, r.ID)
	}
	if len(placeholders) == 0 {
		return map[string]bool{}, nil
	}

	q := fmt.Sprintf("SELECT DISTINCT id FROM sedipull.filings WHERE id IN (%s)",
		strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup filing ids: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool, len(recs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan filing id: %w", err)
		}
		known[id] = true
	}
	return known, rows.Err()
}

func (s *CHFilingStore) RecentFilings(ctx context.Context, symbol string, since time.Time) ([]models.TransactionRecord, error) {
	const q = `
        SELECT id, symbol, issuer, issuer_number, insider, relationship,
               code, tx_date, filing_date, quantity, price, currency,
               security_class, balance, scraped_at
        FROM sedipull.filings FINAL
        WHERE symbol = ? AND tx_date >= ?
        ORDER BY tx_date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, since)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_filings query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("recent filings: %w", err)
	}
	defer rows.Close()

	out := make([]models.TransactionRecord, 0, 64)
	for rows.Next() {
		var r models.TransactionRecord
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Issuer, &r.IssuerNumber, &r.Insider,
			&r.Relationship, &r.Code, &r.TxDate, &r.FilingDate, &r.Quantity, &r.Price,
			&r.Currency, &r.SecurityClass, &r.Balance, &r.ScrapedAt); err != nil {
			return nil, fmt.Errorf("scan filing: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *CHFilingStore) SaveSignals(ctx context.Context, sigs []models.Signal) error {
	if len(sigs) == 0 {
		return nil
	}

	values := make([]string, 0, len(sigs))
	args := make([]interface{}, 0, len(sigs)*16)
	for _, sig := range sigs {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			sig.Symbol, sig.Issuer, sig.Insider, sig.Relationship,
			int32(sig.Score), int32(sig.DisplayScore), sig.NetCash, sig.BuyVolume,
			sig.AvgPrice, strings.Join(sig.Reasons, reasonSep),
			boolToUInt8(sig.Plan), boolToUInt8(sig.Watchlisted), boolToUInt8(sig.Escalated),
			sig.LastTxDate, sig.Commentary, sig.GeneratedAt,
		)
	}

	q := "INSERT INTO sedipull.signals (symbol, issuer, insider, relationship, score, display_score, net_cash, buy_volume, avg_price, reasons, plan, watchlisted, escalated, last_tx_date, commentary, generated_at) VALUES " +
		strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_signals error",
				applogger.Int("signals", len(sigs)),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save signals: %w", err)
	}
	return nil
}

// LatestSignals returns the most recently generated signals, newest
// first. An empty symbol queries across all securities.
func (s *CHFilingStore) LatestSignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `
        SELECT symbol, issuer, insider, relationship, score, display_score,
               net_cash, buy_volume, avg_price, reasons, plan, watchlisted,
               escalated, last_tx_date, commentary, generated_at
        FROM sedipull.signals
    `
	args := []interface{}{}
	if symbol != "" {
		q += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	q += " ORDER BY generated_at DESC, score DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("latest signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.Signal, 0, limit)
	for rows.Next() {
		var sig models.Signal
		var score, display int32
		var reasons string
		var plan, watchlisted, escal uint8
		if err := rows.Scan(&sig.Symbol, &sig.Issuer, &sig.Insider, &sig.Relationship,
			&score, &display, &sig.NetCash, &sig.BuyVolume, &sig.AvgPrice, &reasons,
			&plan, &watchlisted, &escal, &sig.LastTxDate, &sig.Commentary,
			&sig.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Score = int(score)
		sig.DisplayScore = int(display)
		if reasons != "" {
			sig.Reasons = strings.Split(reasons, reasonSep)
		}
		sig.Plan = plan != 0
		sig.Watchlisted = watchlisted != 0
		sig.Escalated = escal != 0
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *CHFilingStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHFilingStore) Close() error {
	return nil // pool owned by pkg client
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

var _ domrepo.FilingStore = (*CHFilingStore)(nil)
