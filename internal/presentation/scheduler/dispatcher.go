package scheduler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/giftflow/certgen-backend/pkg/env"
)

type DispatchConfig struct {
	queueSize int
}

func NewDispatchConfig() *DispatchConfig {
	queueSize, err := strconv.Atoi(env.GetEnv("DISPATCH_QUEUE_SIZE", "64"))
	if err != nil || queueSize <= 0 {
		queueSize = 64
	}
	return &DispatchConfig{queueSize: queueSize}
}

// DispatchWorker fans freshly issued certificates out to the registered
// side-effect channels. The request path only enqueues; every channel runs
// behind its own error boundary so one failing channel never affects another
// or the response.
type DispatchWorker struct {
	dispatchers []interfaces.Dispatcher
	jobs        chan db.Certificate
	stop        chan struct{}
}

var _ interfaces.DispatchQueue = (*DispatchWorker)(nil)

func NewDispatchWorker(cfg *DispatchConfig, dispatchers ...interfaces.Dispatcher) *DispatchWorker {
	return &DispatchWorker{
		dispatchers: dispatchers,
		jobs:        make(chan db.Certificate, cfg.queueSize),
		stop:        make(chan struct{}),
	}
}

// Enqueue never blocks the caller; when the queue is saturated the job is
// dropped and logged, the certificate itself is already persisted. A dropped
// job never reaches the email audit trail; the server log line is its only
// record.
func (w *DispatchWorker) Enqueue(certificate db.Certificate) {
	select {
	case w.jobs <- certificate:
	default:
		slog.Error("dispatch queue full, dropping job", "certificate", certificate.ID)
	}
}

func (w *DispatchWorker) Start() {
	slog.Info("Starting dispatch worker...")
	for {
		select {
		case certificate := <-w.jobs:
			for _, dispatcher := range w.dispatchers {
				w.run(dispatcher, certificate)
			}
		case <-w.stop:
			return
		}
	}
}

func (w *DispatchWorker) run(dispatcher interfaces.Dispatcher, certificate db.Certificate) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("dispatcher panicked", "channel", dispatcher.Name(), "certificate", certificate.ID, "err", rec)
		}
	}()
	if err := dispatcher.Dispatch(context.Background(), certificate); err != nil {
		slog.Error("dispatch failed", "channel", dispatcher.Name(), "certificate", certificate.ID, "err", err)
		return
	}
	slog.Info("dispatched", "channel", dispatcher.Name(), "certificate", certificate.ID)
}

func (w *DispatchWorker) Stop() {
	slog.Info("Stopping dispatch worker")
	close(w.stop)
}
