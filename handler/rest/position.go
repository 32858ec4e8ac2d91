package rest

import (
	"context"
	"errors"
	"net/http"

	"lending/core"
	"lending/handler/param"
	"lending/handler/render"
	"lending/handler/views"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi"
)

var errInvalidOwner = errors.New("owner must be an uuid")

func ownerParam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !govalidator.IsUUID(chi.URLParam(r, "owner")) {
			render.BadRequest(w, errInvalidOwner)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func positionHandler(operations core.IOperationService, markets core.IMarketStore, risk core.IRiskService, margins core.IMarginService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		l, err := operations.Load(ctx, chi.URLParam(r, "owner"))
		if err != nil {
			render.Err(w, err)
			return
		}

		// a stale snapshot still shows the position, without valuation
		var valuation *core.Valuation
		snapshot, snapshotErr := l.Snapshot()
		if snapshotErr == nil {
			if valuation, err = risk.Valuation(ctx, l.Position, snapshot); err != nil {
				render.Err(w, err)
				return
			}
		}

		v, err := views.PositionView(l.Position, l.Reserves)
		if err != nil {
			render.Err(w, err)
			return
		}

		v.Valuation = valuation
		if snapshotErr == nil && len(l.Position.OpenLeveraged()) > 0 {
			all, err := markets.All(ctx)
			if err != nil {
				render.Err(w, err)
				return
			}

			pnl, err := margins.UnrealizedPnL(ctx, l.Position, core.MarketPrices(all, snapshot))
			if err != nil {
				render.Err(w, err)
				return
			}

			v.UnrealizedPnL = &pnl
		}

		render.JSON(w, v)
	}
}

func maxBorrowHandler(operations core.IOperationService, risk core.IRiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Reserve string `json:"reserve" valid:"required"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		l, err := operations.Load(ctx, chi.URLParam(r, "owner"), params.Reserve)
		if err != nil {
			render.Err(w, err)
			return
		}

		snapshot, err := l.Snapshot()
		if err != nil {
			render.Err(w, err)
			return
		}

		amount, err := risk.MaxBorrowable(ctx, l.Position, params.Reserve, snapshot, core.MinHealthFactor)
		if err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, render.H{"reserve": params.Reserve, "amount": amount})
	}
}

// execute run fn against the owner of the url and render the updated position
func execute(w http.ResponseWriter, r *http.Request, operations core.IOperationService, reserveIDs []string, fn core.OperationFunc) {
	var ledger *core.Ledger
	err := operations.Execute(r.Context(), chi.URLParam(r, "owner"), reserveIDs, func(ctx context.Context, l *core.Ledger) error {
		ledger = l
		return fn(ctx, l)
	})

	if err != nil {
		render.Err(w, err)
		return
	}

	v, err := views.PositionView(ledger.Position, ledger.Reserves)
	if err != nil {
		render.Err(w, err)
		return
	}

	render.JSON(w, v)
}
