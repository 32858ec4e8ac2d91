package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config lending config
type Config struct {
	App      App             `json:"app"`
	DB       db.Config       `json:"db"`
	Reserves []ReserveConfig `json:"reserves"`
	Markets  []Market        `json:"markets"`
	Monitor  Monitor         `json:"monitor"`
	Auth     Auth            `json:"auth"`
	Admins   []string        `json:"admins"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	Location string `json:"location"`
	// max age of a price snapshot in seconds, 0 disables the check
	PriceMaxAge int64 `json:"price_max_age"`
}

// Auth access token config, tokens are HS256 signed with Secret
type Auth struct {
	Secret    string `json:"secret"`
	Issuer    string `json:"issuer"`
	CacheSize int    `json:"cache_size"`
}

// Monitor background jobs config
type Monitor struct {
	// cron spec, eg "@every 10s"
	Schedule    string `json:"schedule"`
	Concurrency int    `json:"concurrency"`
	BatchSize   int    `json:"batch_size"`
}

// ReserveConfig reserve parameters, all rates in bps
type ReserveConfig struct {
	ID                   string `json:"id"`
	Symbol               string `json:"symbol"`
	OptimalUtilization   uint64 `json:"optimal_utilization"`
	BaseRate             uint64 `json:"base_rate"`
	Slope1               uint64 `json:"slope1"`
	Slope2               uint64 `json:"slope2"`
	ReserveFactor        uint64 `json:"reserve_factor"`
	LoanToValue          uint64 `json:"loan_to_value"`
	LiquidationThreshold uint64 `json:"liquidation_threshold"`
	LiquidationBonus     uint64 `json:"liquidation_bonus"`
	LendingEnabled       bool   `json:"lending_enabled"`
	MaxLendingRatio      uint64 `json:"max_lending_ratio"`
	MinLendingDuration   uint64 `json:"min_lending_duration"`
	LendingInterestShare uint64 `json:"lending_interest_share"`
}

// Apply copy the parameters onto the reserve, balances and indices untouched
func (c ReserveConfig) Apply(r *Reserve) {
	r.Symbol = c.Symbol
	r.OptimalUtilization = c.OptimalUtilization
	r.BaseRate = c.BaseRate
	r.Slope1 = c.Slope1
	r.Slope2 = c.Slope2
	r.ReserveFactor = c.ReserveFactor
	r.LoanToValue = c.LoanToValue
	r.LiquidationThreshold = c.LiquidationThreshold
	r.LiquidationBonus = c.LiquidationBonus
	r.LendingEnabled = c.LendingEnabled
	r.MaxLendingRatio = c.MaxLendingRatio
	r.MinLendingDuration = c.MinLendingDuration
	r.LendingInterestShare = c.LendingInterestShare
}

// Validate parameters within bps bounds
func (c ReserveConfig) Validate() error {
	if c.ID == "" {
		return ErrInvalidParameter
	}

	for _, v := range []uint64{c.OptimalUtilization, c.ReserveFactor, c.LoanToValue, c.LiquidationThreshold, c.MaxLendingRatio, c.LendingInterestShare} {
		if v > BasisPoints {
			return ErrInvalidParameter
		}
	}

	if c.LoanToValue > c.LiquidationThreshold {
		return ErrInvalidParameter
	}

	return nil
}
