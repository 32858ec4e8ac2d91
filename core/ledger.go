package core

import (
	"context"
	"sort"

	"github.com/fox-one/pkg/store/db"
)

// Ledger state of one owner loaded for an operation.
// Mutations are persisted by Commit together, or not at all.
type Ledger struct {
	Position *Position
	Reserves map[string]*Reserve
	Prices   *Prices
	Now      int64

	maxAge  int64
	origins map[string]Reserve
}

// NewLedger remember the loaded reserves so Commit only writes what changed
func NewLedger(p *Position, reserves []*Reserve, prices *Prices, now, maxAge int64) *Ledger {
	l := &Ledger{
		Position: p,
		Reserves: make(map[string]*Reserve, len(reserves)),
		Prices:   prices,
		Now:      now,
		maxAge:   maxAge,
		origins:  make(map[string]Reserve, len(reserves)),
	}

	for _, r := range reserves {
		l.Reserves[r.ID] = r
		l.origins[r.ID] = *r
	}

	return l
}

// Reserve loaded reserve or ErrReserveNotFound
func (l *Ledger) Reserve(id string) (*Reserve, error) {
	r, ok := l.Reserves[id]
	if !ok {
		return nil, ErrReserveNotFound
	}

	return r, nil
}

// Snapshot price quotes, failing when older than the configured max age.
// Quotes of loaded reserves carry the loan to value of the reserve.
func (l *Ledger) Snapshot() (PriceSnapshot, error) {
	if l.Prices == nil || len(l.Prices.Quotes) == 0 {
		return nil, ErrPriceMissing
	}

	if err := l.Prices.CheckFresh(l.Now, l.maxAge); err != nil {
		return nil, err
	}

	snapshot := make(PriceSnapshot, len(l.Prices.Quotes))
	for id, info := range l.Prices.Quotes {
		if r, ok := l.Reserves[id]; ok {
			info.LoanToValue = r.LoanToValue
		}

		snapshot[id] = info
	}

	return snapshot, nil
}

// Changed reserves modified since load, in id order
func (l *Ledger) Changed() []*Reserve {
	var changed []*Reserve
	for id, r := range l.Reserves {
		if origin, ok := l.origins[id]; !ok || origin != *r {
			changed = append(changed, r)
		}
	}

	sort.Slice(changed, func(i, j int) bool {
		return changed[i].ID < changed[j].ID
	})

	return changed
}

// OperationFunc mutates the ledger, any error discards all changes
type OperationFunc func(ctx context.Context, l *Ledger) error

// IOperationService load, mutate and persist the state of one owner
type IOperationService interface {
	// Load the position of owner and every reserve it references plus reserveIDs
	Load(ctx context.Context, owner string, reserveIDs ...string) (*Ledger, error)
	// Commit changed reserves and the position in one transaction
	Commit(ctx context.Context, l *Ledger) error
	Execute(ctx context.Context, owner string, reserveIDs []string, fn OperationFunc) error
}

// ITx runs fn in one database transaction, *db.DB implements it
type ITx interface {
	Tx(fn func(tx *db.DB) error) error
}
