package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SediPull/internal/domain/models"
	"SediPull/pkg/config"
	xhttp "SediPull/pkg/http"
	"SediPull/pkg/logger"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches recent headlines for escalated securities. Headlines
// are best-effort context for the commentary stage; an empty slice is a
// perfectly good answer.
type Client struct {
	http        *xhttp.Client
	baseURL     string
	maxArticles int
	maxAge      time.Duration
	log         *logger.Logger
}

func NewClient(cfg config.Config, log *logger.Logger) *Client {
	base := cfg.News.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	opts := []xhttp.ClientOption{}
	if cfg.News.Timeout > 0 {
		opts = append(opts, xhttp.WithTimeout(cfg.News.Timeout))
	}
	maxArticles := cfg.News.MaxArticles
	if maxArticles <= 0 {
		maxArticles = 5
	}
	maxAgeDays := cfg.News.MaxAgeDays
	if maxAgeDays <= 0 {
		maxAgeDays = 14
	}
	return &Client{
		http:        xhttp.NewClient(opts...),
		baseURL:     strings.TrimRight(base, "/"),
		maxArticles: maxArticles,
		maxAge:      time.Duration(maxAgeDays) * 24 * time.Hour,
		log:         log,
	}
}

type searchResponse struct {
	News []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Publisher   string `json:"publisher"`
		PublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// RecentNews implements service.NewsProvider. The issuer name is used as
// the search term when present: venture tickers are short and collide
// with unrelated instruments far too often.
func (c *Client) RecentNews(ctx context.Context, symbol, issuer string) ([]models.NewsArticle, error) {
	term := issuer
	if term == "" {
		term = symbol
	}

	var out searchResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/finance/search",
		QueryParams: map[string][]string{
			"q":          {term},
			"newsCount":  {fmt.Sprintf("%d", c.maxArticles)},
			"quotesCount": {"0"},
		},
		Headers: map[string]string{
			"User-Agent": "sedipull/1.0",
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("news search %s: %w", symbol, err)
	}

	cutoff := time.Now().Add(-c.maxAge)
	articles := make([]models.NewsArticle, 0, len(out.News))
	for _, n := range out.News {
		published := time.Unix(n.PublishTime, 0)
		if published.Before(cutoff) {
			continue
		}
		articles = append(articles, models.NewsArticle{
			Title:       n.Title,
			Link:        n.Link,
			Publisher:   n.Publisher,
			PublishedAt: published,
		})
		if len(articles) >= c.maxArticles {
			break
		}
	}

	c.log.Debug("news fetched",
		logger.String("symbol", symbol),
		logger.Int("articles", len(articles)))
	return articles, nil
}
