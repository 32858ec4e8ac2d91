package core

import (
	"context"
)

// Valuation position values against one price snapshot
type Valuation struct {
	// Σ amount * price * liquidation_threshold / 10000 over priced collaterals
	WeightedCollateral uint64 `json:"weighted_collateral"`
	// Σ amount * price * loan_to_value / 10000 over priced collaterals
	BorrowLimit uint64 `json:"borrow_limit"`
	// Σ amount * price over priced collaterals
	TotalCollateral uint64 `json:"total_collateral"`
	// Σ amount * price over priced debts
	DebtValue uint64 `json:"debt_value"`
	// Σ notional - margin over open leveraged positions
	LeveragedExposure uint64 `json:"leveraged_exposure"`
	LockedMargin      uint64 `json:"locked_margin"`
	HealthFactor      uint64 `json:"health_factor"`
}

// IRiskService collateral risk engine
type IRiskService interface {
	// HealthFactor recompute and write back p.HealthFactor
	HealthFactor(ctx context.Context, p *Position, snapshot PriceSnapshot) (uint64, error)
	// BorrowingCapacity weighted collateral value and raw collateral value
	BorrowingCapacity(ctx context.Context, p *Position, snapshot PriceSnapshot) (weighted uint64, raw uint64, err error)
	// CanBorrow new debt value fits under the loan to value weighted collateral
	CanBorrow(ctx context.Context, p *Position, snapshot PriceSnapshot, newDebtValue uint64) (bool, error)
	// MaxBorrowable token units of the reserve that keep the health factor at or above minHF
	MaxBorrowable(ctx context.Context, p *Position, reserveID string, snapshot PriceSnapshot, minHF uint64) (uint64, error)
	// AvailableCollateral collateral value usable as trading margin
	AvailableCollateral(ctx context.Context, p *Position, snapshot PriceSnapshot) (uint64, error)
	Valuation(ctx context.Context, p *Position, snapshot PriceSnapshot) (*Valuation, error)
}

// Liquidation result of one liquidation call
type Liquidation struct {
	Owner          string `json:"owner"`
	DebtReserve    string `json:"debt_reserve"`
	CollReserve    string `json:"coll_reserve"`
	Repaid         uint64 `json:"repaid"`
	RepaidValue    uint64 `json:"repaid_value"`
	Seized         uint64 `json:"seized"`
	HealthFactorAt uint64 `json:"health_factor_at"`
}

// ILiquidationService liquidation engine
type ILiquidationService interface {
	IsLiquidatable(ctx context.Context, p *Position, snapshot PriceSnapshot) (bool, error)
	MaxLiquidationValue(ctx context.Context, p *Position, snapshot PriceSnapshot) (uint64, error)
	// FindOptimalDebtToLiquidate debt reserve and amount, ok is false when nothing is eligible
	FindOptimalDebtToLiquidate(ctx context.Context, p *Position, maxValue uint64, snapshot PriceSnapshot) (reserveID string, amount uint64, ok bool, err error)
	Liquidate(ctx context.Context, p *Position, debt, coll *Reserve, snapshot PriceSnapshot, repay uint64, now int64) (*Liquidation, error)
	LiquidateOptimal(ctx context.Context, p *Position, reserves map[string]*Reserve, collReserve string, snapshot PriceSnapshot, now int64) (*Liquidation, error)
}

// OpenRequest open a leveraged position
type OpenRequest struct {
	Side     Side   `json:"side"`
	Size     uint64 `json:"size"`
	Price    uint64 `json:"price"`
	Leverage uint64 `json:"leverage"`
	ClientID uint64 `json:"client_id"`
	Now      int64  `json:"now"`
}

// PnL signed profit and loss
type PnL struct {
	Amount uint64 `json:"amount"`
	Profit bool   `json:"profit"`
}

// MarginOutcome result of closing or liquidating a leveraged position
type MarginOutcome struct {
	PositionID uint64         `json:"position_id"`
	Market     string         `json:"market"`
	Status     PositionStatus `json:"status"`
	PnL        PnL            `json:"pnl"`
	Released   uint64         `json:"released"`
	// margin left after the loss and the fee, liquidations only
	Remainder uint64 `json:"remainder"`
	Fee       uint64 `json:"fee"`
}

// IMarginService margin engine
type IMarginService interface {
	// Open a leveraged position, a zero leverage opens at the market optimal leverage
	Open(ctx context.Context, p *Position, market *Market, req OpenRequest, snapshot PriceSnapshot) (*LeveragedPosition, error)
	Close(ctx context.Context, p *Position, id, exitPrice uint64, snapshot PriceSnapshot) (*MarginOutcome, error)
	Liquidate(ctx context.Context, p *Position, id, price uint64, snapshot PriceSnapshot) (*MarginOutcome, error)
	// Monitor liquidate every open position whose market price crossed its liquidation price
	Monitor(ctx context.Context, p *Position, currentPrices map[string]uint64, snapshot PriceSnapshot) ([]*MarginOutcome, error)
	// ApplyFunding market id => funding rate, signed, in millionths per period
	ApplyFunding(ctx context.Context, p *Position, rates map[string]int64) error
	UnrealizedPnL(ctx context.Context, p *Position, currentPrices map[string]uint64) (PnL, error)
}

// ILendingService deposit, withdraw, borrow and repay flows over one reserve
type ILendingService interface {
	Deposit(ctx context.Context, p *Position, r *Reserve, amount uint64, now int64) error
	Withdraw(ctx context.Context, p *Position, r *Reserve, amount uint64, snapshot PriceSnapshot, now int64) error
	Borrow(ctx context.Context, p *Position, r *Reserve, amount uint64, snapshot PriceSnapshot, now int64) error
	// Repay clamped to the outstanding debt, returns the amount repaid
	Repay(ctx context.Context, p *Position, r *Reserve, amount uint64, snapshot PriceSnapshot, now int64) (uint64, error)
	// ClaimYield accrued yield of the deposit, added to the principal when reinvest is set
	ClaimYield(ctx context.Context, p *Position, r *Reserve, reinvest bool, now int64) (uint64, error)
	// EnableLending move the deposit into the lending supply
	EnableLending(ctx context.Context, p *Position, r *Reserve, now int64) error
}
