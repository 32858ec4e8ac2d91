package cmd

import (
	"lending/core"
	"lending/store/market"
	"lending/store/position"
	"lending/store/price"
	"lending/store/reserve"

	"github.com/fox-one/pkg/store/db"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func provideReserveStore(db *db.DB) core.IReserveStore {
	return reserve.Cache(reserve.New(db))
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

func provideMarketStore() core.IMarketStore {
	return market.New(cfg.Markets)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.New(db)
}
