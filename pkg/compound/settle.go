package compound

import (
	"sort"

	"lending/core"
)

// SettleDebt restate the debt of p in r at the current borrow index, returning the growth.
//
// The reserve already booked the interest in Refresh, only the entry principal moves.
func SettleDebt(p *core.Position, r *core.Reserve) (uint64, error) {
	idx := p.Debt(r.ID)
	if idx < 0 {
		return 0, nil
	}

	d := &p.Debts[idx]
	owed, err := ScaledToDebt(r, &d.AmountScaled)
	if err != nil {
		return 0, err
	}

	if owed <= d.AmountPrincipal {
		return 0, nil
	}

	growth := owed - d.AmountPrincipal
	d.AmountPrincipal = owed
	return growth, nil
}

// Accrue refresh every reserve to now in id order and settle the debts of p against them.
//
// Reserves and p are mutated in place, callers pass copies when they need to roll back.
func Accrue(p *core.Position, reserves map[string]*core.Reserve, now int64) error {
	ids := make([]string, 0, len(reserves))
	for id := range reserves {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r := reserves[id]
		if err := Refresh(r, now); err != nil {
			return err
		}

		if _, err := SettleDebt(p, r); err != nil {
			return err
		}
	}

	return nil
}
