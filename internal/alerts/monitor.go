// Package alerts runs a periodic sweep over the active carnets and logs a
// summary of the ones expired or about to expire, so operators notice drift
// without polling the API.
package alerts

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/segtrack/carnets/internal/models"
	"github.com/segtrack/carnets/pkg/repository"
)

type Monitor struct {
	repo     repository.CarnetRepo
	logger   *slog.Logger
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
}

func New(repo repository.CarnetRepo, logger *slog.Logger, interval time.Duration) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{repo: repo, logger: logger, interval: interval, stop: make(chan struct{})}
}

// Start launches the sweep goroutine. A non-positive interval disables the
// monitor entirely.
func (m *Monitor) Start(ctx context.Context) {
	if m.interval <= 0 {
		return
	}

	m.wg.Add(1)
	go m.run(ctx)
}

// Stop signals the sweep goroutine to stop and waits for it.
func (m *Monitor) Stop() {
	close(m.stop)
	m.wg.Wait()
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// one sweep at startup so a restart still reports promptly
	m.Sweep(ctx)

	for {
		select {
		case <-m.stop:
			m.logger.Info("expiry monitor stopping")
			return
		case <-ctx.Done():
			m.logger.Info("context canceled, expiry monitor exiting")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep logs one expiry summary for the current day.
func (m *Monitor) Sweep(ctx context.Context) {
	today := time.Now()

	stats, err := m.repo.Stats(ctx, today)
	if err != nil {
		m.logger.Error("expiry sweep stats", slog.Any("err", err))
		return
	}

	expiring, err := m.repo.ListExpiring(ctx, today, models.WarningWindowDays)
	if err != nil {
		m.logger.Error("expiry sweep list", slog.Any("err", err))
		return
	}

	m.logger.Info("expiry summary",
		slog.Int("total", stats.Total),
		slog.Int("expired", stats.Expired),
		slog.Int("warning", stats.Warning),
		slog.Int("in_window", len(expiring)),
	)
}
