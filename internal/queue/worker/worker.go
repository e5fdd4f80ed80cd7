package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/jobs"
	"github.com/davaardana/dacoklinik-web/internal/notifications"
	"github.com/davaardana/dacoklinik-web/internal/observability"
)

type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
}

type Config struct {
	PopTimeout time.Duration
}

// Worker drains the low-stock alert queue and hands each alert to the
// notifier. Alerts are fire-and-forget: a notify failure is logged and
// counted, not re-queued.
type Worker struct {
	cfg      Config
	queue    Queue
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom
}

func New(cfg Config, queue Queue, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 2 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		queue:    queue,
		notifier: notifier,
		log:      log,
		prom:     prom,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil
		default:
		}

		_, err := w.ProcessOne(ctx)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}

			w.log.Error("queue read failed", "err", err, "attempt", attempt)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff(attempt)):
			}

			attempt++
			continue
		}

		attempt = 0
	}
}

// ProcessOne waits for at most the pop timeout and handles a single alert.
// Returns false with a nil error when the queue was empty.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	msg, err := w.queue.Pop(ctx, w.cfg.PopTimeout)

	if err != nil {
		return false, err
	}

	if msg == nil {
		return false, nil
	}

	jobType, payload, err := jobs.Decode(msg)

	if err != nil {
		w.log.Error("discarding undecodable alert", "err", err)
		w.count("decode_error")
		return true, nil
	}

	switch p := payload.(type) {
	case jobs.LowStockAlertPayload:
		err = w.notifier.SendLowStockAlert(ctx, notifications.LowStockAlertInput{
			MedicineID: p.MedicineID,
			Name:       p.Name,
			Stock:      p.Stock,
			Unit:       p.Unit,
			Threshold:  p.Threshold,
		})

		if err != nil {
			w.log.Error("low stock notification failed", "err", err, "medicine_id", p.MedicineID)
			w.count("notify_error")
			return true, nil
		}

		w.count("done")

	default:
		w.log.Error("discarding alert with unhandled type", "type", string(jobType))
		w.count("decode_error")
	}

	return true, nil
}

func (w *Worker) count(result string) {
	if w.prom != nil {
		w.prom.AlertsHandled.WithLabelValues(result).Inc()
	}
}
