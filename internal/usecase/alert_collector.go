package usecase

import (
	"context"

	"SediPull/internal/domain/models"
	drepo "SediPull/internal/domain/repository"
	mid "SediPull/internal/middleware"
)

// AlertCollector consumes the filing WebSocket feed and turns alerts
// into queued rescans via the alert pipeline.
type AlertCollector struct {
	stream  drepo.AlertStream
	metrics drepo.Metrics
	pipe    *mid.AlertPipeline
}

// NewAlertCollector creates a new AlertCollector instance.
func NewAlertCollector(stream drepo.AlertStream, metrics drepo.Metrics, pipe *mid.AlertPipeline) *AlertCollector {
	return &AlertCollector{stream: stream, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the filing stream is connected.
func (c *AlertCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *AlertCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	c.pipe.Start(ctx)
	alertCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, alertCh, errCh)
	return nil
}

func (c *AlertCollector) consume(ctx context.Context, alertCh <-chan models.FilingAlert, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				// a failed reconnect leaves the old channels in place;
				// the next error (or drain) retries
				if rerr := c.stream.Reconnect(ctx); rerr == nil {
					alertCh, errCh = c.stream.Read(ctx)
				}
			}
		case a, ok := <-alertCh:
			if !ok {
				// channel closed by a read failure; wait for errCh
				alertCh = nil
				continue
			}
			_ = c.pipe.Process(ctx, a)
		}
	}
}

// Shutdown stops pipeline and closes stream.
func (c *AlertCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
