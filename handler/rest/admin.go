package rest

import (
	"context"
	"errors"
	"net/http"

	"lending/core"
	"lending/handler/param"
	"lending/handler/render"
	"lending/internal/compound"
)

var errNoLeveraged = errors.New("no open leveraged position")

func liquidateHandler(operations core.IOperationService, liquidations core.ILiquidationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Owner       string `json:"owner" valid:"uuid,required"`
			DebtReserve string `json:"debt_reserve"`
			CollReserve string `json:"coll_reserve" valid:"required"`
			// zero repays the optimal amount
			Amount uint64 `json:"amount"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		ids := []string{params.CollReserve}
		if params.DebtReserve != "" {
			ids = append(ids, params.DebtReserve)
		}

		var result *core.Liquidation
		err := operations.Execute(r.Context(), params.Owner, ids, func(ctx context.Context, l *core.Ledger) error {
			snapshot, err := l.Snapshot()
			if err != nil {
				return err
			}

			if params.Amount == 0 {
				result, err = liquidations.LiquidateOptimal(ctx, l.Position, l.Reserves, params.CollReserve, snapshot, l.Now)
				return err
			}

			debt, err := l.Reserve(params.DebtReserve)
			if err != nil {
				return err
			}

			coll, err := l.Reserve(params.CollReserve)
			if err != nil {
				return err
			}

			result, err = liquidations.Liquidate(ctx, l.Position, debt, coll, snapshot, params.Amount, l.Now)
			return err
		})

		if err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, result)
	}
}

func savePriceHandler(prices core.IPriceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Reserve              string `json:"reserve" valid:"required"`
			Price                uint64 `json:"price"`
			LiquidationThreshold uint64 `json:"liquidation_threshold"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Price == 0 || params.LiquidationThreshold > core.BasisPoints {
			render.Err(w, core.ErrInvalidParameter)
			return
		}

		info := core.PriceInfo{Price: params.Price, LiquidationThreshold: params.LiquidationThreshold}
		if err := prices.Save(r.Context(), params.Reserve, info, compound.Now()); err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, info)
	}
}

func fundingHandler(positions core.IPositionStore, operations core.IOperationService, margins core.IMarginService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Rates map[string]int64 `json:"rates"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		const batch = 100

		var (
			from    string
			applied int
		)

		for {
			owners, err := positions.Owners(ctx, from, batch)
			if err != nil {
				render.Err(w, err)
				return
			}

			for _, owner := range owners {
				err := operations.Execute(ctx, owner, nil, func(ctx context.Context, l *core.Ledger) error {
					if len(l.Position.OpenLeveraged()) == 0 {
						return errNoLeveraged
					}

					return margins.ApplyFunding(ctx, l.Position, params.Rates)
				})

				switch {
				case err == nil:
					applied++
				case errors.Is(err, errNoLeveraged):
				default:
					render.Err(w, err)
					return
				}
			}

			if len(owners) < batch {
				break
			}

			from = owners[len(owners)-1]
		}

		render.JSON(w, render.H{"positions": applied})
	}
}
