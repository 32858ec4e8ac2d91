package rest

import (
	"context"
	"net/http"

	"lending/core"
	"lending/handler/param"
	"lending/handler/render"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
)

func openHandler(operations core.IOperationService, markets core.IMarketStore, margins core.IMarginService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Market   string `json:"market" valid:"required"`
			Side     string `json:"side" valid:"in(long|short)"`
			Size     uint64 `json:"size"`
			Leverage uint64 `json:"leverage"`
			ClientID uint64 `json:"client_id"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		side, err := core.ParseSide(params.Side)
		if err != nil {
			render.Err(w, err)
			return
		}

		market, err := markets.Find(r.Context(), params.Market)
		if err != nil {
			render.Err(w, err)
			return
		}

		execute(w, r, operations, nil, func(ctx context.Context, l *core.Ledger) error {
			snapshot, err := l.Snapshot()
			if err != nil {
				return err
			}

			price, err := market.Price(snapshot)
			if err != nil {
				return err
			}

			_, err = margins.Open(ctx, l.Position, market, core.OpenRequest{
				Side:     side,
				Size:     params.Size,
				Price:    price,
				Leverage: params.Leverage,
				ClientID: params.ClientID,
				Now:      l.Now,
			}, snapshot)
			return err
		})
	}
}

func closeHandler(operations core.IOperationService, markets core.IMarketStore, margins core.IMarginService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cast.ToUint64E(chi.URLParam(r, "id"))
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(w, r, operations, nil, func(ctx context.Context, l *core.Ledger) error {
			idx := l.Position.LeveragedByID(id)
			if idx < 0 {
				return core.ErrPositionNotFound
			}

			market, err := markets.Find(ctx, l.Position.Leveraged[idx].Market)
			if err != nil {
				return err
			}

			snapshot, err := l.Snapshot()
			if err != nil {
				return err
			}

			price, err := market.Price(snapshot)
			if err != nil {
				return err
			}

			_, err = margins.Close(ctx, l.Position, id, price, snapshot)
			return err
		})
	}
}
