package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leadops/lead-dashboard/internal/observability"
	"github.com/leadops/lead-dashboard/internal/service"
)

// DelayMonitor periodically publishes delayed-lead and stage gauges.
type DelayMonitor struct {
	dashboard *service.DashboardService
	metrics   *observability.Metrics
	logger    *zap.Logger
	interval  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDelayMonitor builds a monitor; a non-positive interval disables it.
func NewDelayMonitor(dashboard *service.DashboardService, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *DelayMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DelayMonitor{dashboard: dashboard, metrics: metrics, logger: logger, interval: interval}
}

// Start runs one pass immediately and then one per interval until ctx is
// cancelled or Stop is called.
func (m *DelayMonitor) Start(ctx context.Context) {
	if m.interval <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
}

// Stop halts the loop and waits for it to exit.
func (m *DelayMonitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *DelayMonitor) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

// RunOnce computes the current figures and updates the gauges.
func (m *DelayMonitor) RunOnce(ctx context.Context) {
	summary, err := m.dashboard.Summary(ctx, service.LeadQuery{})
	if err != nil {
		m.logger.Warn("delay monitor pass failed", zap.Error(err))
		return
	}

	delayed := make(map[string]int, len(summary.DelayedByCategory))
	for category, count := range summary.DelayedByCategory {
		delayed[string(category)] = count
	}
	m.metrics.SetDelayedLeads(delayed)
	m.metrics.SetStageLeads(summary.Counts.Counts)

	m.logger.Info("delay monitor pass",
		zap.Int("total_leads", summary.TotalLeads),
		zap.Int("delayed_leads", summary.DelayedLeads),
		zap.Int("unmatched_leads", summary.Counts.Unmatched),
		zap.Any("delayed_by_category", delayed))
}
