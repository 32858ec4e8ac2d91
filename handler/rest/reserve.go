package rest

import (
	"net/http"

	"lending/core"
	"lending/handler/render"
	"lending/handler/views"

	"github.com/go-chi/chi"
)

func reservesHandler(reserves core.IReserveStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := reserves.All(r.Context())
		if err != nil {
			render.Err(w, err)
			return
		}

		items := make([]*views.Reserve, 0, len(all))
		for _, reserve := range all {
			v, err := views.ReserveView(reserve)
			if err != nil {
				render.Err(w, err)
				return
			}

			items = append(items, v)
		}

		render.JSON(w, items)
	}
}

func reserveHandler(reserves core.IReserveStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reserve, err := reserves.Find(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Err(w, err)
			return
		}

		v, err := views.ReserveView(reserve)
		if err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, v)
	}
}

func marketsHandler(markets core.IMarketStore, prices core.IPriceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		all, err := markets.All(ctx)
		if err != nil {
			render.Err(w, err)
			return
		}

		snapshot, err := prices.Snapshot(ctx)
		if err != nil {
			render.Err(w, err)
			return
		}

		items := make([]*views.Market, 0, len(all))
		for _, m := range all {
			items = append(items, views.MarketView(m, snapshot.Quotes))
		}

		render.JSON(w, items)
	}
}

func pricesHandler(prices core.IPriceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := prices.Snapshot(r.Context())
		if err != nil {
			render.Err(w, err)
			return
		}

		render.JSON(w, snapshot)
	}
}
