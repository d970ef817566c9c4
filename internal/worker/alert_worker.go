package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/sse"
)

// AlertSource computes the current alert counts.
type AlertSource interface {
	Alerts(ctx context.Context) (sse.Alert, error)
}

// AlertWorker periodically broadcasts overdue pawns, expiring warranties and
// low stock to dashboard clients.
type AlertWorker struct {
	source   AlertSource
	notifier sse.Notifier
	interval time.Duration
}

// NewAlertWorker constructs an AlertWorker.
func NewAlertWorker(source AlertSource, notifier sse.Notifier, interval time.Duration) *AlertWorker {
	return &AlertWorker{
		source:   source,
		notifier: notifier,
		interval: interval,
	}
}

// Start runs one check immediately, then every interval until ctx is canceled.
func (w *AlertWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Info().Msg("Alert worker disabled")
		return
	}
	log.Info().Dur("interval", w.interval).Msg("Starting alert worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Alert worker stopped")
			return
		}
	}
}

func (w *AlertWorker) run(ctx context.Context) {
	alert, err := w.source.Alerts(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to compute alerts")
		}
		return
	}
	if alert.Empty() {
		return
	}
	log.Info().
		Int("overdue_pawns", alert.OverduePawns).
		Int("expiring_warranties", alert.ExpiringWarranties).
		Int("low_stock_products", alert.LowStockProducts).
		Msg("Broadcasting shop alert")
	w.notifier.NotifyAlert(alert)
}
