package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProc struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *countingProc) Process(_ context.Context, a models.FilingAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, a.Symbol)
	return p.err
}

func (p *countingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func alert(symbol string) models.FilingAlert {
	return models.FilingAlert{Symbol: symbol, Timestamp: time.Now()}
}

func TestPipelineCooldownCollapsesBursts(t *testing.T) {
	proc := &countingProc{}
	p := NewAlertPipeline(proc, domrepo.NopMetrics{}, WithCooldown(time.Minute))

	ctx := context.Background()
	require.NoError(t, p.Process(ctx, alert("ABC")))
	require.NoError(t, p.Process(ctx, alert("ABC")))
	require.NoError(t, p.Process(ctx, alert("ABC")))

	// One disclosure burst, one rescan.
	assert.Equal(t, 1, proc.count())

	// A different security is not throttled by ABC's window.
	require.NoError(t, p.Process(ctx, alert("XYZ")))
	assert.Equal(t, 2, proc.count())
}

func TestPipelineCooldownExpires(t *testing.T) {
	proc := &countingProc{}
	p := NewAlertPipeline(proc, domrepo.NopMetrics{}, WithCooldown(10*time.Millisecond))

	ctx := context.Background()
	require.NoError(t, p.Process(ctx, alert("ABC")))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Process(ctx, alert("ABC")))

	assert.Equal(t, 2, proc.count())
}

func TestPipelineRejectsInvalidAlerts(t *testing.T) {
	proc := &countingProc{}
	p := NewAlertPipeline(proc, domrepo.NopMetrics{})

	ctx := context.Background()
	assert.Error(t, p.Process(ctx, models.FilingAlert{Symbol: "", Timestamp: time.Now()}))
	assert.Error(t, p.Process(ctx, models.FilingAlert{Symbol: "ABC"}))
	assert.Zero(t, proc.count())
}

func TestPipelineReportsDownstreamError(t *testing.T) {
	proc := &countingProc{err: errors.New("queue down")}
	p := NewAlertPipeline(proc, domrepo.NopMetrics{}, WithBufferSize(4))

	err := p.Process(context.Background(), alert("ABC"))
	assert.Error(t, err)
	assert.Equal(t, 1, proc.count())

	// The failed alert is buffered for the background flusher.
	assert.Len(t, p.bufCh, 1)
}
