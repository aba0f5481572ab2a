package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
)

// Proc is the minimal downstream interface the pipeline needs. In
// production it is the scan-task enqueuer.
type Proc interface {
	Process(ctx context.Context, a models.FilingAlert) error
}

// AlertPipeline sits between the filing WebSocket and the scan queue.
// It validates alerts, collapses per-symbol bursts into one rescan per
// cooldown window, and buffers when the queue is unavailable. An issuer
// disclosing twenty transactions in one batch should cost one scan, not
// twenty.
type AlertPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	cooldown time.Duration
	bufSize  int
	bufCh    chan models.FilingAlert
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-symbol last accepted time
}

type PipelineOption func(*AlertPipeline)

// WithCooldown sets the per-symbol minimum interval between rescans.
func WithCooldown(d time.Duration) PipelineOption {
	return func(p *AlertPipeline) {
		if d > 0 {
			p.cooldown = d
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *AlertPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewAlertPipeline creates a new pipeline.
func NewAlertPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *AlertPipeline {
	p := &AlertPipeline{
		proc:     proc,
		metrics:  metrics,
		cooldown: 30 * time.Second,
		bufSize:  1000,
		bufCh:    make(chan models.FilingAlert, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan models.FilingAlert, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered alerts.
func (p *AlertPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case a := <-p.bufCh:
				if a.Symbol == "" {
					continue
				}
				if err := p.proc.Process(ctx, a); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- a:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *AlertPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards an alert downstream,
// buffering on errors.
func (p *AlertPipeline) Process(ctx context.Context, a models.FilingAlert) error {
	start := time.Now()
	if err := validateAlert(a); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(a.Symbol, start) {
		// inside the cooldown window; the pending scan covers this alert
		p.metrics.RecordDropped("alert_cooldown")
		return nil
	}

	if err := p.proc.Process(ctx, a); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- a:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateAlert(a models.FilingAlert) error {
	if a.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if a.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	return nil
}

func (p *AlertPipeline) allow(symbol string, now time.Time) bool {
	if p.cooldown <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if !last.IsZero() && now.Sub(last) < p.cooldown {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
