package hc

import (
	"net/http"
	"time"

	"lending/core"
	"lending/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Handle health check, reports the age of the oldest price quote
func Handle(ver string, prices core.IPriceStore, maxAge int64) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, prices, maxAge))
	return r
}

func handle(version string, prices core.IPriceStore, maxAge int64) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := time.Since(b).Truncate(time.Millisecond)
		resp := render.H{
			"uptime":  uptime.String(),
			"version": version,
		}

		snapshot, err := prices.Snapshot(r.Context())
		if err != nil {
			render.Err(w, err)
			return
		}

		if len(snapshot.Quotes) > 0 {
			now := time.Now().Unix()
			resp["price_age"] = now - snapshot.At
			resp["price_fresh"] = snapshot.CheckFresh(now, maxAge) == nil
		}

		render.JSON(w, resp)
	}
}
