package marketdata

import (
	"context"
	"fmt"
	"strings"

	"SediPull/internal/domain/models"
	"SediPull/internal/service/ratelimit"
	"SediPull/pkg/config"
	xhttp "SediPull/pkg/http"
	"SediPull/pkg/logger"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Venture-listed issuers rarely file under their exchange-qualified
// ticker, so each lookup probes the likely Canadian listings in order of
// how often they resolve.
var listingSuffixes = []string{".V", ".TO", ".CN"}

// Client resolves quote snapshots for Canadian-listed securities. A
// symbol that resolves to no CAD-denominated listing yields (nil, nil):
// the caller scores in degraded mode rather than trusting a lookalike
// ticker from another exchange.
type Client struct {
	http    *xhttp.Client
	baseURL string
	limiter *ratelimit.Limiter
	perMin  float64
	log     *logger.Logger
}

func NewClient(cfg config.Config, log *logger.Logger) *Client {
	base := cfg.MarketData.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.MarketData.Timeout
	opts := []xhttp.ClientOption{}
	if timeout > 0 {
		opts = append(opts, xhttp.WithTimeout(timeout))
	}
	return &Client{
		http:    xhttp.NewClient(opts...),
		baseURL: strings.TrimRight(base, "/"),
		limiter: ratelimit.New(),
		perMin:  cfg.MarketData.MaxPerMinute,
		log:     log,
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol           string  `json:"symbol"`
	Currency         string  `json:"currency"`
	RegularPrice     float64 `json:"regularMarketPrice"`
	RegularVolume    float64 `json:"regularMarketVolume"`
	AvgVolume3Month  float64 `json:"averageDailyVolume3Month"`
	MarketCap        float64 `json:"marketCap"`
	FiftyDayAvg      float64 `json:"fiftyDayAverage"`
	TwoHundredDayAvg float64 `json:"twoHundredDayAverage"`
	High52Week       float64 `json:"fiftyTwoWeekHigh"`
	Low52Week        float64 `json:"fiftyTwoWeekLow"`
}

// MarketContext implements service.MarketDataProvider.
func (c *Client) MarketContext(ctx context.Context, symbol string) (*models.MarketContext, error) {
	if c.perMin > 0 && !c.limiter.Allow("quote", c.perMin, c.perMin/60) {
		c.log.Debug("quote lookup throttled", logger.String("symbol", symbol))
		return nil, nil
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, nil
	}

	for _, suffix := range listingSuffixes {
		quote, err := c.fetch(ctx, symbol+suffix)
		if err != nil {
			return nil, err
		}
		if quote == nil {
			continue
		}
		// A non-CAD hit means the suffix resolved a different company.
		if quote.Currency != "" && quote.Currency != "CAD" {
			continue
		}
		return &models.MarketContext{
			Price:     quote.RegularPrice,
			Volume:    quote.RegularVolume,
			AvgVolume: quote.AvgVolume3Month,
			MarketCap: quote.MarketCap,
			MA50:      quote.FiftyDayAvg,
			MA200:     quote.TwoHundredDayAvg,
			High52W:   quote.High52Week,
			Low52W:    quote.Low52Week,
			Currency:  quote.Currency,
		}, nil
	}
	return nil, nil
}

func (c *Client) fetch(ctx context.Context, ticker string) (*quoteResult, error) {
	var out quoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v7/finance/quote",
		QueryParams: map[string][]string{
			"symbols": {ticker},
		},
		Headers: map[string]string{
			"User-Agent": "sedipull/1.0",
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", ticker, err)
	}
	if out.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote %s: %s", ticker, out.QuoteResponse.Error.Description)
	}
	for _, r := range out.QuoteResponse.Result {
		if strings.EqualFold(r.Symbol, ticker) && r.RegularPrice > 0 {
			return &r, nil
		}
	}
	return nil, nil
}
