package interest

import (
	"context"

	"lending/core"
	"lending/internal/compound"
	pkgcompound "lending/pkg/compound"
	"lending/pkg/metrics"
	"lending/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

// Worker accrues interest on every reserve
type Worker struct {
	worker.BaseJob
	db       core.ITx
	reserves core.IReserveStore
	now      func() int64
}

// New new interest worker
func New(cfg *core.Config, database core.ITx, reserves core.IReserveStore) (*Worker, error) {
	job := Worker{
		db:       database,
		reserves: reserves,
		now:      compound.Now,
	}

	job.Name = "interest"
	if err := job.Schedule(cfg.App.Location, cfg.Monitor.Schedule); err != nil {
		return nil, err
	}

	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "interest")

	reserves, err := w.reserves.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("list reserves")
		return err
	}

	now := w.now()
	for _, r := range reserves {
		if err := w.refresh(ctx, r, now); err != nil {
			// the next tick retries, a concurrent writer has already refreshed it
			log.WithError(err).Debugln("refresh", r.ID)
			continue
		}

		observe(r)
	}

	return nil
}

func (w *Worker) refresh(ctx context.Context, r *core.Reserve, now int64) error {
	next := r.Clone()
	if err := pkgcompound.Refresh(next, now); err != nil {
		return err
	}

	if next.LastUpdateTime == r.LastUpdateTime {
		return nil
	}

	if err := w.db.Tx(func(tx *db.DB) error {
		return w.reserves.Update(ctx, tx, next)
	}); err != nil {
		return err
	}

	*r = *next
	return nil
}

func observe(r *core.Reserve) {
	rates, err := pkgcompound.CurRates(r)
	if err != nil {
		return
	}

	metrics.ReserveUtilization.WithLabelValues(r.ID).Set(float64(rates.Utilization))
	metrics.ReserveBorrowRate.WithLabelValues(r.ID).Set(float64(rates.Borrow))
	metrics.ReserveSupplyRate.WithLabelValues(r.ID).Set(float64(rates.Supply))
}
