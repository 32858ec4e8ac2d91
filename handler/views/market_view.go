package views

import (
	"lending/core"
)

// Market market view
type Market struct {
	*core.Market
	Price uint64 `json:"price,omitempty"`
}

// MarketView market with its trading price, if priced
func MarketView(m *core.Market, snapshot core.PriceSnapshot) *Market {
	v := &Market{Market: m}
	if price, err := m.Price(snapshot); err == nil {
		v.Price = price
	}

	return v
}
