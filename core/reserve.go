package core

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

const (
	// BasisPoints 100% in basis points
	BasisPoints uint64 = 10000
	// IndexBase fixed point base of borrow and lending indices, 10^12
	IndexBase uint64 = 1_000_000_000_000
	// SecondsPerYear 365 days
	SecondsPerYear uint64 = 31_536_000

	// DefaultOptimalUtilization 80%
	DefaultOptimalUtilization uint64 = 8000
	// DefaultBaseRate 2% per year
	DefaultBaseRate uint64 = 200
	// DefaultSlope1 8% up to optimal utilization
	DefaultSlope1 uint64 = 800
	// DefaultSlope2 30% beyond optimal utilization
	DefaultSlope2 uint64 = 3000
)

// Reserve one liquidity pool per asset
type Reserve struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`

	TotalDeposited      uint64 `json:"total_deposited"`
	TotalBorrowed       uint64 `json:"total_borrowed"`
	AvailableForLending uint64 `json:"available_for_lending"`
	TotalLent           uint64 `json:"total_lent"`
	// AccruedInterest borrower interest booked into the pool and not yet paid out as yield
	AccruedInterest uint64 `json:"accrued_interest"`
	// BorrowedScaled debt entries of the reserve in borrow index units
	BorrowedScaled uint256.Int `json:"-"`

	// BorrowIndex and LendingIndex are IndexBase fixed point and never decrease
	BorrowIndex    uint256.Int `json:"-"`
	LendingIndex   uint256.Int `json:"-"`
	LastUpdateTime int64       `json:"last_update_time"`

	// rate curve, annualized bps
	OptimalUtilization uint64 `json:"optimal_utilization"`
	BaseRate           uint64 `json:"base_rate"`
	Slope1             uint64 `json:"slope1"`
	Slope2             uint64 `json:"slope2"`
	ReserveFactor      uint64 `json:"reserve_factor"`

	LoanToValue          uint64 `json:"loan_to_value"`
	LiquidationThreshold uint64 `json:"liquidation_threshold"`
	LiquidationBonus     uint64 `json:"liquidation_bonus"`

	LendingEnabled       bool   `json:"lending_enabled"`
	MaxLendingRatio      uint64 `json:"max_lending_ratio"`
	MinLendingDuration   uint64 `json:"min_lending_duration"`
	LendingInterestShare uint64 `json:"lending_interest_share"`

	Version int64 `json:"version"`
}

// NewReserve reserve with both indices at IndexBase and the default rate curve
func NewReserve(id string, now int64) *Reserve {
	r := &Reserve{
		ID:                 id,
		LastUpdateTime:     now,
		OptimalUtilization: DefaultOptimalUtilization,
		BaseRate:           DefaultBaseRate,
		Slope1:             DefaultSlope1,
		Slope2:             DefaultSlope2,
	}
	r.BorrowIndex.SetUint64(IndexBase)
	r.LendingIndex.SetUint64(IndexBase)

	return r
}

// Clone copy of the reserve, indices included
func (r *Reserve) Clone() *Reserve {
	c := *r
	return &c
}

// CheckInvariants borrowed, lent, lending supply and accrued interest never exceed deposits
func (r *Reserve) CheckInvariants() error {
	if r.TotalBorrowed > r.TotalDeposited || r.TotalLent > r.TotalDeposited || r.AvailableForLending > r.TotalDeposited {
		return ErrInvariantViolation
	}

	if r.AccruedInterest > r.TotalDeposited {
		return ErrInvariantViolation
	}

	return nil
}

// IReserveStore reserve store interface
type IReserveStore interface {
	Save(ctx context.Context, reserve *Reserve) error
	Find(ctx context.Context, id string) (*Reserve, error)
	All(ctx context.Context) ([]*Reserve, error)
	Update(ctx context.Context, tx *db.DB, reserve *Reserve) error
}
