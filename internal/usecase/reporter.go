package usecase

import (
	"fmt"
	"strings"

	"SediPull/internal/domain/models"
	"SediPull/pkg/logger"
)

// Reporter renders scan results into the operator log. One line per
// signal, ranked, with the reason trace spelled out: the log is the
// primary review surface, the API is for tooling.
type Reporter struct {
	log *logger.Logger
}

func NewReporter(log *logger.Logger) *Reporter {
	return &Reporter{log: log}
}

func (r *Reporter) Report(result models.ScanResult) {
	if len(result.Signals) == 0 {
		r.log.Debug("scan quiet", logger.String("symbol", result.Symbol))
		return
	}

	for _, sig := range result.Signals {
		fields := []logger.Field{
			logger.String("symbol", sig.Symbol),
			logger.String("insider", sig.Insider),
			logger.Int("score", sig.Score),
			logger.Int("display", sig.DisplayScore),
			logger.String("net_cash", fmt.Sprintf("%.0f", sig.NetCash)),
			logger.String("reasons", strings.Join(sig.Reasons, ", ")),
		}
		if sig.Relationship != "" {
			fields = append(fields, logger.String("relationship", sig.Relationship))
		}
		if sig.Escalated {
			fields = append(fields, logger.Bool("escalated", true))
		}
		if sig.Watchlisted {
			fields = append(fields, logger.Bool("watchlisted", true))
		}
		r.log.Info("signal", fields...)
	}

	if result.Escalated {
		r.log.Info("escalated",
			logger.String("symbol", result.Symbol),
			logger.Int("signals", len(result.Signals)))
	}
}
