package rest

import (
	"errors"
	"net/http"

	"lending/core"
	"lending/handler/auth"
	"lending/handler/render"

	"github.com/go-chi/chi"
)

// Services dependencies of the rest api
type Services struct {
	Config       *core.Config
	Reserves     core.IReserveStore
	Positions    core.IPositionStore
	Markets      core.IMarketStore
	Prices       core.IPriceStore
	Operations   core.IOperationService
	Risk         core.IRiskService
	Liquidations core.ILiquidationService
	Margins      core.IMarginService
	Lendings     core.ILendingService
}

// Handle handle rest api request
func Handle(s Services) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/reserves", reservesHandler(s.Reserves))
	router.Get("/reserves/{id}", reserveHandler(s.Reserves))
	router.Get("/markets", marketsHandler(s.Markets, s.Prices))
	router.Get("/prices", pricesHandler(s.Prices))

	router.Route("/positions/{owner}", func(r chi.Router) {
		r.Use(ownerParam)
		r.Get("/", positionHandler(s.Operations, s.Markets, s.Risk, s.Margins))
		r.Get("/max-borrow", maxBorrowHandler(s.Operations, s.Risk))

		r.Group(func(r chi.Router) {
			r.Use(auth.OwnerOnly(s.Config))
			r.Post("/deposit", depositHandler(s.Operations, s.Lendings))
			r.Post("/withdraw", withdrawHandler(s.Operations, s.Lendings))
			r.Post("/borrow", borrowHandler(s.Operations, s.Lendings))
			r.Post("/repay", repayHandler(s.Operations, s.Lendings))
			r.Post("/claim", claimHandler(s.Operations, s.Lendings))
			r.Post("/lend", lendHandler(s.Operations, s.Lendings))
			r.Post("/leveraged", openHandler(s.Operations, s.Markets, s.Margins))
			r.Post("/leveraged/{id}/close", closeHandler(s.Operations, s.Markets, s.Margins))
		})
	})

	router.With(auth.LoginRequired).Post("/liquidations", liquidateHandler(s.Operations, s.Liquidations))

	router.Group(func(r chi.Router) {
		r.Use(auth.AdminOnly(s.Config))
		r.Post("/prices", savePriceHandler(s.Prices))
		r.Post("/funding", fundingHandler(s.Positions, s.Operations, s.Margins))
	})

	return router
}
