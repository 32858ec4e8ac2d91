package cmd

import (
	"lending/core"
	"lending/handler/rest"
	"lending/service/lending"
	"lending/service/liquidation"
	"lending/service/margin"
	"lending/service/operation"
	"lending/service/risk"
	"lending/service/session"

	"github.com/fox-one/pkg/store/db"
)

func provideRiskService() core.IRiskService {
	return risk.New()
}

func provideOperationService(database *db.DB, reserves core.IReserveStore, positions core.IPositionStore, prices core.IPriceStore) core.IOperationService {
	return operation.New(database, reserves, positions, prices, cfg.App)
}

func provideSession() core.Session {
	return session.New(cfg.Auth)
}

// provideServices stores and services behind the rest api
func provideServices(database *db.DB) rest.Services {
	reserves := provideReserveStore(database)
	positions := providePositionStore(database)
	prices := providePriceStore(database)
	riskz := provideRiskService()

	return rest.Services{
		Config:       provideConfig(),
		Reserves:     reserves,
		Positions:    positions,
		Markets:      provideMarketStore(),
		Prices:       prices,
		Operations:   provideOperationService(database, reserves, positions, prices),
		Risk:         riskz,
		Liquidations: liquidation.New(riskz),
		Margins:      margin.New(riskz),
		Lendings:     lending.New(riskz),
	}
}
