package core

import "context"

// PriceInfo price and liquidation threshold of one reserve.
//
// LoanToValue weights the collateral for new borrows, the feed leaves it empty and
// Ledger.Snapshot fills it from the loaded reserve.
type PriceInfo struct {
	Price                uint64 `json:"price"`
	LiquidationThreshold uint64 `json:"liquidation_threshold"`
	LoanToValue          uint64 `json:"loan_to_value,omitempty"`
}

// PriceSnapshot reserve id => price info, supplied fresh per call.
//
// A missing entry means the price is unknown, never zero.
type PriceSnapshot map[string]PriceInfo

// Lookup price info of the reserve
func (s PriceSnapshot) Lookup(reserveID string) (PriceInfo, bool) {
	info, ok := s[reserveID]
	return info, ok
}

// Require price info of the reserve or ErrPriceMissing
func (s PriceSnapshot) Require(reserveID string) (PriceInfo, error) {
	info, ok := s[reserveID]
	if !ok || info.Price == 0 {
		return PriceInfo{}, ErrPriceMissing
	}

	return info, nil
}

// Prices snapshot with the time it was observed
type Prices struct {
	Quotes PriceSnapshot `json:"quotes"`
	At     int64         `json:"at"`
}

// CheckFresh fails with ErrStalePrice when the snapshot is older than maxAge seconds.
// maxAge 0 disables the check.
func (p Prices) CheckFresh(now, maxAge int64) error {
	if now < p.At {
		return ErrClockRegression
	}

	if maxAge > 0 && now-p.At > maxAge {
		return ErrStalePrice
	}

	return nil
}

// IPriceStore latest quote per reserve, written by an external feed
type IPriceStore interface {
	Save(ctx context.Context, reserveID string, info PriceInfo, at int64) error
	// Snapshot all quotes, At is the time of the oldest one
	Snapshot(ctx context.Context) (*Prices, error)
}
