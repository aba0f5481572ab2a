package commentary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"SediPull/internal/domain/models"
	"SediPull/pkg/config"
	"SediPull/pkg/logger"
)

const (
	defaultModel   = "claude-sonnet-4-20250514"
	defaultTimeout = 60 * time.Second
)

const systemPrompt = `You are an analyst covering Canadian small-cap and venture-listed equities. You are given insider filing activity for one security, its current market snapshot, and recent headlines. Assess whether the buying pattern looks like informed accumulation or routine noise. Be specific about which facts drive your view. End with a single line "Verdict: BULLISH", "Verdict: NEUTRAL" or "Verdict: AVOID".`

// Claude generates prose commentary for escalated securities.
type Claude struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	log       *logger.Logger
}

func NewClaude(cfg config.Config, log *logger.Logger) *Claude {
	model := cfg.Commentary.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := int64(cfg.Commentary.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := cfg.Commentary.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Claude{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.Commentary.APIKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		timeout:   timeout,
		log:       log,
	}
}

// Analyze implements service.CommentaryService.
func (c *Claude) Analyze(ctx context.Context, result models.ScanResult, news []models.NewsArticle) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(renderPrompt(result, news))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commentary for %s: %w", result.Symbol, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	c.log.Info("commentary generated",
		logger.String("symbol", result.Symbol),
		logger.Duration("took", time.Since(start)))
	return sb.String(), nil
}

// renderPrompt flattens the scan result into plain text. The model sees
// the same reason tags operators see in the report, so its commentary
// can be checked line by line against the scoring trace.
func renderPrompt(result models.ScanResult, news []models.NewsArticle) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Security: %s\n", result.Symbol)
	if len(result.Signals) > 0 && result.Signals[0].Issuer != "" {
		fmt.Fprintf(&sb, "Issuer: %s\n", result.Signals[0].Issuer)
	}

	if m := result.Market; m != nil {
		fmt.Fprintf(&sb, "\nMarket snapshot:\n")
		fmt.Fprintf(&sb, "  price %.4f %s, market cap %.0f\n", m.Price, m.Currency, m.MarketCap)
		fmt.Fprintf(&sb, "  50d MA %.4f, 200d MA %.4f, 52w range %.4f-%.4f\n",
			m.MA50, m.MA200, m.Low52W, m.High52W)
		fmt.Fprintf(&sb, "  volume %.0f (3m avg %.0f)\n", m.Volume, m.AvgVolume)
	} else {
		sb.WriteString("\nMarket snapshot: unavailable\n")
	}

	fmt.Fprintf(&sb, "\nInsider activity (lookback window):\n")
	for _, s := range result.Signals {
		fmt.Fprintf(&sb, "  %s (%s): net CAD %.0f, score %d, factors: %s\n",
			s.Insider, s.Relationship, s.NetCash, s.Score, strings.Join(s.Reasons, ", "))
	}

	if len(news) > 0 {
		fmt.Fprintf(&sb, "\nRecent headlines:\n")
		for _, n := range news {
			fmt.Fprintf(&sb, "  [%s] %s (%s)\n",
				n.PublishedAt.Format("2006-01-02"), n.Title, n.Publisher)
		}
	} else {
		sb.WriteString("\nRecent headlines: none found\n")
	}

	return sb.String()
}
