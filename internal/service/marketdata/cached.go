package marketdata

import (
	"context"
	"errors"
	"time"

	"SediPull/internal/domain/models"
	domsvc "SediPull/internal/domain/service"
	"SediPull/pkg/cache"
	"SediPull/pkg/logger"
)

const defaultQuoteTTL = 15 * time.Minute

// cachedQuote wraps the lookup result so that "no usable quote" is
// cached as firmly as a hit. Re-probing a dead ticker every scan cycle
// burns the rate budget for nothing.
type cachedQuote struct {
	Found bool                  `json:"found"`
	Quote *models.MarketContext `json:"quote,omitempty"`
}

// Cached decorates a MarketDataProvider with a TTL cache.
type Cached struct {
	inner domsvc.MarketDataProvider
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

func NewCached(inner domsvc.MarketDataProvider, c cache.Service, ttl time.Duration, log *logger.Logger) *Cached {
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	return &Cached{inner: inner, cache: c, ttl: ttl, log: log}
}

func (c *Cached) MarketContext(ctx context.Context, symbol string) (*models.MarketContext, error) {
	key := "md:quote:" + symbol

	var hit cachedQuote
	err := c.cache.Get(ctx, key, &hit)
	if err == nil {
		return hit.Quote, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.log.Warn("quote cache read failed", logger.String("symbol", symbol), logger.Error(err))
	}

	quote, err := c.inner.MarketContext(ctx, symbol)
	if err != nil {
		return nil, err
	}

	entry := cachedQuote{Found: quote != nil, Quote: quote}
	if err := c.cache.Set(ctx, key, entry, c.ttl); err != nil {
		c.log.Warn("quote cache write failed", logger.String("symbol", symbol), logger.Error(err))
	}
	return quote, nil
}
