package core

import (
	"context"
	"math"

	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

const (
	// MaxCollaterals max distinct collateral reserves per position
	MaxCollaterals = 10
	// MaxDebts max distinct debt reserves per position
	MaxDebts = 10
	// MaxLeveragedPositions max leveraged positions per position
	MaxLeveragedPositions = 10

	// HealthFactorMax sentinel for a position without debt
	HealthFactorMax uint64 = math.MaxUint64
	// MinHealthFactor break-even, 1.0x
	MinHealthFactor uint64 = 10000
)

// CollateralEntry deposit in one reserve
type CollateralEntry struct {
	ReserveID       string      `json:"reserve_id"`
	AmountPrincipal uint64      `json:"amount_principal"`
	AmountScaled    uint256.Int `json:"-"`
	IsCollateral    bool        `json:"is_collateral"`
	IsLending       bool        `json:"is_lending"`
	DepositTime     int64       `json:"deposit_time"`
}

// DebtEntry borrow from one reserve
type DebtEntry struct {
	ReserveID       string      `json:"reserve_id"`
	AmountPrincipal uint64      `json:"amount_principal"`
	AmountScaled    uint256.Int `json:"-"`
	RateAtOpen      uint64      `json:"rate_at_open"`
}

// Position per user aggregate of collaterals, debts and leveraged positions
type Position struct {
	Owner               string              `json:"owner"`
	Collaterals         []CollateralEntry   `json:"collaterals"`
	Debts               []DebtEntry         `json:"debts"`
	Leveraged           []LeveragedPosition `json:"leveraged"`
	HealthFactor        uint64              `json:"health_factor"`
	LastUpdated         int64               `json:"last_updated"`
	LockedTradingMargin uint64              `json:"locked_trading_margin"`
	Version             int64               `json:"version"`
}

// NewPosition empty position, fully healthy
func NewPosition(owner string, now int64) *Position {
	return &Position{
		Owner:        owner,
		HealthFactor: HealthFactorMax,
		LastUpdated:  now,
	}
}

// Clone deep copy, mutate the copy and assign it back on success
func (p *Position) Clone() *Position {
	c := *p
	c.Collaterals = append([]CollateralEntry(nil), p.Collaterals...)
	c.Debts = append([]DebtEntry(nil), p.Debts...)
	c.Leveraged = append([]LeveragedPosition(nil), p.Leveraged...)
	return &c
}

// Collateral index of the collateral entry of the reserve, -1 if none
func (p *Position) Collateral(reserveID string) int {
	for idx := range p.Collaterals {
		if p.Collaterals[idx].ReserveID == reserveID {
			return idx
		}
	}

	return -1
}

// Debt index of the debt entry of the reserve, -1 if none
func (p *Position) Debt(reserveID string) int {
	for idx := range p.Debts {
		if p.Debts[idx].ReserveID == reserveID {
			return idx
		}
	}

	return -1
}

// LeveragedByID index of the leveraged position, -1 if none
func (p *Position) LeveragedByID(id uint64) int {
	for idx := range p.Leveraged {
		if p.Leveraged[idx].ID == id {
			return idx
		}
	}

	return -1
}

// OpenLeveraged open leveraged positions
func (p *Position) OpenLeveraged() []LeveragedPosition {
	var open []LeveragedPosition
	for _, l := range p.Leveraged {
		if l.Status == PositionStatusOpen {
			open = append(open, l)
		}
	}

	return open
}

// HasDebt has any debt entry or open leveraged position
func (p *Position) HasDebt() bool {
	if len(p.Debts) > 0 {
		return true
	}

	for _, l := range p.Leveraged {
		if l.Status == PositionStatusOpen {
			return true
		}
	}

	return false
}

// AddCollateral merge into the existing entry or append a new one
func (p *Position) AddCollateral(reserveID string, amount uint64, scaled *uint256.Int, now int64) error {
	if idx := p.Collateral(reserveID); idx >= 0 {
		c := &p.Collaterals[idx]
		principal, err := addUint64(c.AmountPrincipal, amount)
		if err != nil {
			return err
		}

		s, overflow := new(uint256.Int).AddOverflow(&c.AmountScaled, scaled)
		if overflow {
			return ErrMathOverflow
		}

		c.AmountPrincipal = principal
		c.AmountScaled = *s
		c.IsCollateral = true
		return nil
	}

	if len(p.Collaterals) >= MaxCollaterals {
		return ErrCapacityExceeded
	}

	p.Collaterals = append(p.Collaterals, CollateralEntry{
		ReserveID:       reserveID,
		AmountPrincipal: amount,
		AmountScaled:    *scaled,
		IsCollateral:    true,
		DepositTime:     now,
	})

	return nil
}

// RemoveCollateral remove amount and the proportional scaled units, drop the entry at zero.
// It returns the scaled units removed.
func (p *Position) RemoveCollateral(reserveID string, amount uint64) (*uint256.Int, error) {
	idx := p.Collateral(reserveID)
	if idx < 0 {
		return nil, ErrCollateralNotFound
	}

	c := &p.Collaterals[idx]
	principal, scaled, removed, err := removeProportional(c.AmountPrincipal, &c.AmountScaled, amount)
	if err != nil {
		return nil, err
	}

	if principal == 0 {
		p.Collaterals = append(p.Collaterals[:idx], p.Collaterals[idx+1:]...)
		return removed, nil
	}

	c.AmountPrincipal = principal
	c.AmountScaled = *scaled
	return removed, nil
}

// AddDebt merge into the existing entry or append a new one
func (p *Position) AddDebt(reserveID string, amount uint64, scaled *uint256.Int, rate uint64) error {
	if idx := p.Debt(reserveID); idx >= 0 {
		d := &p.Debts[idx]
		principal, err := addUint64(d.AmountPrincipal, amount)
		if err != nil {
			return err
		}

		s, overflow := new(uint256.Int).AddOverflow(&d.AmountScaled, scaled)
		if overflow {
			return ErrMathOverflow
		}

		d.AmountPrincipal = principal
		d.AmountScaled = *s
		return nil
	}

	if len(p.Debts) >= MaxDebts {
		return ErrCapacityExceeded
	}

	p.Debts = append(p.Debts, DebtEntry{
		ReserveID:       reserveID,
		AmountPrincipal: amount,
		AmountScaled:    *scaled,
		RateAtOpen:      rate,
	})

	return nil
}

// RemoveDebt inverse of AddDebt, drop the entry at zero. It returns the scaled units removed.
func (p *Position) RemoveDebt(reserveID string, amount uint64) (*uint256.Int, error) {
	idx := p.Debt(reserveID)
	if idx < 0 {
		return nil, ErrDebtNotFound
	}

	d := &p.Debts[idx]
	principal, scaled, removed, err := removeProportional(d.AmountPrincipal, &d.AmountScaled, amount)
	if err != nil {
		return nil, err
	}

	if principal == 0 {
		p.Debts = append(p.Debts[:idx], p.Debts[idx+1:]...)
		return removed, nil
	}

	d.AmountPrincipal = principal
	d.AmountScaled = *scaled
	return removed, nil
}

// scaled_to_remove = amount * scaled / principal
func removeProportional(principal uint64, scaled *uint256.Int, amount uint64) (uint64, *uint256.Int, *uint256.Int, error) {
	if principal == 0 {
		return 0, nil, nil, ErrDivisionByZero
	}

	if amount > principal {
		return 0, nil, nil, ErrInsufficientBalance
	}

	if amount == principal {
		return 0, new(uint256.Int), scaled.Clone(), nil
	}

	removed, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), scaled)
	if overflow {
		return 0, nil, nil, ErrMathOverflow
	}
	removed.Div(removed, uint256.NewInt(principal))

	rest, underflow := new(uint256.Int).SubOverflow(scaled, removed)
	if underflow {
		return 0, nil, nil, ErrMathOverflow
	}

	return principal - amount, rest, removed, nil
}

func addUint64(a, b uint64) (uint64, error) {
	c := a + b
	if c < a {
		return 0, ErrMathOverflow
	}

	return c, nil
}

// IPositionStore position store interface
type IPositionStore interface {
	Save(ctx context.Context, position *Position) error
	Find(ctx context.Context, owner string) (*Position, error)
	Owners(ctx context.Context, from string, limit int) ([]string, error)
	Update(ctx context.Context, tx *db.DB, position *Position) error
}
