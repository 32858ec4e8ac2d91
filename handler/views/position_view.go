package views

import (
	"lending/core"
	pkgcompound "lending/pkg/compound"
	"lending/pkg/number"

	"github.com/shopspring/decimal"
)

// Collateral collateral entry with the amount including accrued yield
type Collateral struct {
	core.CollateralEntry
	Amount uint64 `json:"amount"`
}

// Debt debt entry with the amount owed including accrued interest
type Debt struct {
	core.DebtEntry
	Owed uint64 `json:"owed"`
}

// Position position view
type Position struct {
	*core.Position
	Collaterals []Collateral    `json:"collaterals"`
	Debts       []Debt          `json:"debts"`
	Valuation   *core.Valuation `json:"valuation,omitempty"`
	// health factor as a ratio, omitted without debt
	HealthRatio   *decimal.Decimal `json:"health_ratio,omitempty"`
	UnrealizedPnL *core.PnL        `json:"unrealized_pnl,omitempty"`
}

// PositionView entries valued against the loaded reserves, missing reserves show the principal
func PositionView(p *core.Position, reserves map[string]*core.Reserve) (*Position, error) {
	v := &Position{
		Position:    p,
		Collaterals: make([]Collateral, 0, len(p.Collaterals)),
		Debts:       make([]Debt, 0, len(p.Debts)),
	}

	for idx := range p.Collaterals {
		c := Collateral{CollateralEntry: p.Collaterals[idx], Amount: p.Collaterals[idx].AmountPrincipal}
		if r, ok := reserves[c.ReserveID]; ok {
			amount, err := pkgcompound.ScaledToAmount(r, &c.AmountScaled)
			if err != nil {
				return nil, err
			}

			c.Amount = amount
		}

		v.Collaterals = append(v.Collaterals, c)
	}

	for idx := range p.Debts {
		d := Debt{DebtEntry: p.Debts[idx], Owed: p.Debts[idx].AmountPrincipal}
		if r, ok := reserves[d.ReserveID]; ok {
			owed, err := pkgcompound.ScaledToDebt(r, &d.AmountScaled)
			if err != nil {
				return nil, err
			}

			d.Owed = owed
		}

		v.Debts = append(v.Debts, d)
	}

	if p.HealthFactor != core.HealthFactorMax {
		ratio := number.Bps(p.HealthFactor)
		v.HealthRatio = &ratio
	}

	return v, nil
}
