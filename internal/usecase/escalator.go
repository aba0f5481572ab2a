package usecase

import (
	"context"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
	domsvc "SediPull/internal/domain/service"
	"SediPull/pkg/logger"
)

// Escalator runs the expensive downstream analysis for securities the
// gate let through: fetch recent headlines, generate commentary, attach
// it to the escalated signals. Every step is best effort; a missing
// headline feed or a model outage degrades to a bare scored result.
type Escalator struct {
	news       domsvc.NewsProvider
	commentary domsvc.CommentaryService
	metrics    domrepo.Metrics
	log        *logger.Logger
}

func NewEscalator(
	news domsvc.NewsProvider,
	commentary domsvc.CommentaryService,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *Escalator {
	return &Escalator{news: news, commentary: commentary, metrics: metrics, log: log}
}

// Enrich attaches news-grounded commentary to the result's signals.
func (e *Escalator) Enrich(ctx context.Context, result *models.ScanResult) {
	if result == nil || len(result.Signals) == 0 {
		return
	}

	var articles []models.NewsArticle
	if e.news != nil {
		issuer := result.Signals[0].Issuer
		fetched, err := e.news.RecentNews(ctx, result.Symbol, issuer)
		if err != nil {
			e.metrics.RecordError("news")
			e.log.Warn("news lookup failed",
				logger.String("symbol", result.Symbol), logger.Error(err))
		} else {
			articles = fetched
		}
	}

	if e.commentary == nil {
		return
	}
	text, err := e.commentary.Analyze(ctx, *result, articles)
	if err != nil {
		e.metrics.RecordError("commentary")
		e.log.Warn("commentary failed",
			logger.String("symbol", result.Symbol), logger.Error(err))
		return
	}

	for i := range result.Signals {
		if result.Signals[i].Escalated {
			result.Signals[i].Commentary = text
		}
	}
}
