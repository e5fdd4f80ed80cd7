package queue

import (
	"context"
	"log/slog"

	"github.com/davaardana/dacoklinik-web/internal/domain/medicine"
	"github.com/davaardana/dacoklinik-web/internal/jobs"
	"github.com/davaardana/dacoklinik-web/internal/observability"
	"github.com/davaardana/dacoklinik-web/internal/queue/redisclient"
)

type pusher interface {
	Push(ctx context.Context, msg []byte) error
}

// Producer enqueues low-stock alerts from the inventory write path. Enqueue
// failures are logged and counted, never surfaced to the HTTP caller: a
// missed alert must not fail a stock update.
type Producer struct {
	client    pusher
	threshold int
	log       *slog.Logger
	prom      *observability.Prom
}

func NewProducer(client *redisclient.Client, threshold int, log *slog.Logger, prom *observability.Prom) *Producer {
	return &Producer{
		client:    client,
		threshold: threshold,
		log:       log,
		prom:      prom,
	}
}

func (p *Producer) Threshold() int {
	return p.threshold
}

// AlertIfLow pushes one alert when the medicine's stock sits at or below the
// threshold. No-op otherwise, and when no redis client is configured.
func (p *Producer) AlertIfLow(ctx context.Context, m medicine.Medicine, requestID string) {
	if p == nil || p.client == nil {
		return
	}

	if m.Stock > p.threshold {
		return
	}

	msg, err := jobs.Encode(jobs.JobLowStockAlert, jobs.LowStockAlertPayload{
		MedicineID: m.ID,
		Name:       m.Name,
		Stock:      m.Stock,
		Unit:       m.Unit,
		Threshold:  p.threshold,
		RequestID:  requestID,
	})

	if err != nil {
		p.log.ErrorContext(ctx, "encode low stock alert failed", "err", err, "medicine_id", m.ID)
		return
	}

	err = p.client.Push(ctx, msg)

	result := "ok"

	if err != nil {
		result = "error"
		p.log.ErrorContext(ctx, "enqueue low stock alert failed", "err", err, "medicine_id", m.ID)
	}

	if p.prom != nil {
		p.prom.AlertsEnqueued.WithLabelValues(result).Inc()
	}
}
