package monitor

import (
	"context"
	"errors"
	"math"

	"lending/core"
	"lending/pkg/metrics"
	"lending/pkg/number"
	"lending/worker"

	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Monitor scans every position, liquidates crossed leveraged positions and unhealthy loans
type Monitor struct {
	worker.BaseJob
	cfg          core.Monitor
	positions    core.IPositionStore
	markets      core.IMarketStore
	operations   core.IOperationService
	liquidations core.ILiquidationService
	margins      core.IMarginService
}

// New new monitor worker
func New(
	cfg *core.Config,
	positions core.IPositionStore,
	markets core.IMarketStore,
	operations core.IOperationService,
	liquidations core.ILiquidationService,
	margins core.IMarginService,
) (*Monitor, error) {
	job := Monitor{
		cfg:          cfg.Monitor,
		positions:    positions,
		markets:      markets,
		operations:   operations,
		liquidations: liquidations,
		margins:      margins,
	}

	if job.cfg.BatchSize <= 0 {
		job.cfg.BatchSize = 100
	}

	if job.cfg.Concurrency <= 0 {
		job.cfg.Concurrency = 1
	}

	job.Name = "monitor"
	if err := job.Schedule(cfg.App.Location, cfg.Monitor.Schedule); err != nil {
		return nil, err
	}

	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job, nil
}

func (w *Monitor) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "monitor")

	markets, err := w.markets.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("list markets")
		return err
	}

	sem := semaphore.NewWeighted(int64(w.cfg.Concurrency))

	var from string
	for {
		owners, err := w.positions.Owners(ctx, from, w.cfg.BatchSize)
		if err != nil {
			log.WithError(err).Errorln("list owners")
			return err
		}

		g := errgroup.Group{}
		for idx := range owners {
			owner := owners[idx]

			if err := sem.Acquire(ctx, 1); err != nil {
				return g.Wait()
			}

			// one goroutine per owner, a failed owner never stops the scan
			g.Go(func() error {
				defer sem.Release(1)

				if err := w.handle(ctx, owner, markets); err != nil {
					metrics.MonitorErrors.WithLabelValues(code(err)).Inc()
					log.WithError(err).Debugln("handle", owner)
				}

				return nil
			})
		}

		_ = g.Wait()

		if len(owners) < w.cfg.BatchSize {
			return nil
		}

		from = owners[len(owners)-1]
	}
}

func (w *Monitor) handle(ctx context.Context, owner string, markets []*core.Market) error {
	metrics.MonitorScans.Inc()

	l, err := w.operations.Load(ctx, owner)
	if err != nil {
		return err
	}

	snapshot, err := l.Snapshot()
	if err != nil {
		return err
	}

	outcomes, err := w.margins.Monitor(ctx, l.Position, core.MarketPrices(markets, snapshot), snapshot)
	if err != nil {
		return err
	}

	changed := len(outcomes) > 0
	metrics.Liquidations.WithLabelValues("leveraged").Add(float64(len(outcomes)))

	ok, err := w.liquidations.IsLiquidatable(ctx, l.Position, snapshot)
	if err != nil {
		return err
	}

	if ok {
		if coll := largestCollateral(l.Position, snapshot); coll != "" {
			result, err := w.liquidations.LiquidateOptimal(ctx, l.Position, l.Reserves, coll, snapshot, l.Now)
			switch {
			case err == nil:
				changed = true
				metrics.Liquidations.WithLabelValues("loan").Inc()
				logger.FromContext(ctx).WithField("worker", "monitor").
					Infof("liquidate %s: repay %d %s, seize %d %s", owner, result.Repaid, result.DebtReserve, result.Seized, result.CollReserve)
			case !changed:
				return err
			default:
				// keep the leveraged liquidations already applied
				metrics.MonitorErrors.WithLabelValues(code(err)).Inc()
			}
		}
	}

	if !changed {
		return nil
	}

	return w.operations.Commit(ctx, l)
}

// largestCollateral priced collateral reserve with the highest value, first one wins ties
func largestCollateral(p *core.Position, snapshot core.PriceSnapshot) string {
	var (
		best  string
		value uint64
	)

	for _, c := range p.Collaterals {
		if !c.IsCollateral {
			continue
		}

		info, err := snapshot.Require(c.ReserveID)
		if err != nil {
			continue
		}

		v, err := number.Mul(c.AmountPrincipal, info.Price)
		if err != nil {
			v = math.MaxUint64
		}

		if best == "" || v > value {
			best, value = c.ReserveID, v
		}
	}

	return best
}

func code(err error) string {
	var c core.ErrorCode
	if errors.As(err, &c) {
		return c.String()
	}

	return "unknown"
}
