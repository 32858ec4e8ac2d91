package core

import (
	"context"
)

// Side leveraged position side
type Side int

const (
	// SideLong long
	SideLong Side = iota
	// SideShort short
	SideShort
)

func (s Side) String() string {
	if s == SideShort {
		return "short"
	}

	return "long"
}

// ParseSide "long" or "short"
func ParseSide(s string) (Side, error) {
	switch s {
	case "long":
		return SideLong, nil
	case "short":
		return SideShort, nil
	}

	return SideLong, ErrInvalidParameter
}

// PositionStatus leveraged position status
type PositionStatus int

const (
	// PositionStatusOpen open
	PositionStatusOpen PositionStatus = iota
	// PositionStatusClosed closed
	PositionStatusClosed
	// PositionStatusLiquidated liquidated
	PositionStatusLiquidated
)

func (s PositionStatus) String() string {
	switch s {
	case PositionStatusClosed:
		return "closed"
	case PositionStatusLiquidated:
		return "liquidated"
	}

	return "open"
}

// Market leveraged trading market config
type Market struct {
	ID           string `json:"id"`
	BaseReserve  string `json:"base_reserve"`
	QuoteReserve string `json:"quote_reserve"`
	// leverage in bps, 10000 = 1x
	MaxLeverage uint64 `json:"max_leverage"`
	// OptimalLeverage used when an open request leaves the leverage empty
	OptimalLeverage uint64 `json:"optimal_leverage"`
	// bps
	MaintenanceMarginRatio uint64 `json:"maintenance_margin_ratio"`
	// LiquidationFee share of the margin left after a liquidation kept as fee, bps
	LiquidationFee uint64 `json:"liquidation_fee"`
}

// Price trading price of the market, the snapshot price of its base reserve
func (m *Market) Price(snapshot PriceSnapshot) (uint64, error) {
	info, err := snapshot.Require(m.BaseReserve)
	if err != nil {
		return 0, err
	}

	return info.Price, nil
}

// MarketPrices market id => trading price, unpriced markets are left out
func MarketPrices(markets []*Market, snapshot PriceSnapshot) map[string]uint64 {
	prices := make(map[string]uint64, len(markets))
	for _, m := range markets {
		if price, err := m.Price(snapshot); err == nil {
			prices[m.ID] = price
		}
	}

	return prices
}

// LeveragedPosition isolated leveraged exposure owned by a Position
type LeveragedPosition struct {
	ID               uint64         `json:"id"`
	Market           string         `json:"market"`
	Side             Side           `json:"side"`
	Size             uint64         `json:"size"`
	EntryPrice       uint64         `json:"entry_price"`
	Leverage         uint64         `json:"leverage"`
	MarginUsed       uint64         `json:"margin_used"`
	NotionalValue    uint64         `json:"notional_value"`
	LiquidationPrice uint64         `json:"liquidation_price"`
	LiquidationFee   uint64         `json:"liquidation_fee"`
	Status           PositionStatus `json:"status"`
	OpenedAt         int64          `json:"opened_at"`
	ClientID         uint64         `json:"client_id"`
	// signed funding paid (positive) or received (negative)
	FundingAccrued int64 `json:"funding_accrued"`
}

// IMarketStore market lookup
type IMarketStore interface {
	Find(ctx context.Context, id string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
}
