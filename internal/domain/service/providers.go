package service

import (
	"context"

	"SediPull/internal/domain/models"
)

// MarketDataProvider returns a point-in-time quote snapshot for a security.
// Implementations return (nil, nil) when no usable quote exists; the
// engine treats a missing context as degraded mode, never as failure.
type MarketDataProvider interface {
	MarketContext(ctx context.Context, symbol string) (*models.MarketContext, error)
}

// NewsProvider fetches recent headlines for an escalated security.
type NewsProvider interface {
	RecentNews(ctx context.Context, symbol, issuer string) ([]models.NewsArticle, error)
}

// CommentaryService produces prose analysis for an escalated security. The
// returned text is attached to signals as an opaque annotation.
type CommentaryService interface {
	Analyze(ctx context.Context, result models.ScanResult, news []models.NewsArticle) (string, error)
}
