package operation

import (
	"context"
	"sort"

	"lending/core"
	interest "lending/internal/compound"
	"lending/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

type service struct {
	db        core.ITx
	reserves  core.IReserveStore
	positions core.IPositionStore
	prices    core.IPriceStore
	maxAge    int64
	now       func() int64
}

// New new operation service
func New(
	database core.ITx,
	reserves core.IReserveStore,
	positions core.IPositionStore,
	prices core.IPriceStore,
	app core.App,
) core.IOperationService {
	return &service{
		db:        database,
		reserves:  reserves,
		positions: positions,
		prices:    prices,
		maxAge:    app.PriceMaxAge,
		now:       interest.Now,
	}
}

func (s *service) Load(ctx context.Context, owner string, reserveIDs ...string) (*core.Ledger, error) {
	p, err := s.positions.Find(ctx, owner)
	if err != nil {
		return nil, err
	}

	ids := map[string]bool{}
	for _, id := range reserveIDs {
		ids[id] = true
	}

	for _, c := range p.Collaterals {
		ids[c.ReserveID] = true
	}

	for _, d := range p.Debts {
		ids[d.ReserveID] = true
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	reserves := make([]*core.Reserve, 0, len(sorted))
	for _, id := range sorted {
		r, err := s.reserves.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		reserves = append(reserves, r)
	}

	prices, err := s.prices.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	l := core.NewLedger(p, reserves, prices, s.now(), s.maxAge)

	// debts are read at the current borrow index
	if err := compound.Accrue(l.Position, l.Reserves, l.Now); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *service) Commit(ctx context.Context, l *core.Ledger) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, r := range l.Changed() {
			if err := s.reserves.Update(ctx, tx, r); err != nil {
				return err
			}
		}

		return s.positions.Update(ctx, tx, l.Position)
	})
}

func (s *service) Execute(ctx context.Context, owner string, reserveIDs []string, fn core.OperationFunc) error {
	log := logger.FromContext(ctx).WithField("service", "operation")

	l, err := s.Load(ctx, owner, reserveIDs...)
	if err != nil {
		log.WithError(err).Debugln("load", owner)
		return err
	}

	if err := fn(ctx, l); err != nil {
		return err
	}

	if err := s.Commit(ctx, l); err != nil {
		log.WithError(err).Errorln("commit", owner)
		return err
	}

	return nil
}
