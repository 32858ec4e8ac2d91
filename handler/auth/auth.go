package auth

import (
	"errors"
	"net/http"
	"strings"

	"lending/core"
	"lending/handler/render"
	"lending/handler/request"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
)

var (
	errLoginRequired = errors.New("login required")
	errForbidden     = errors.New("forbidden")
)

// HandleAuthentication attach the token owner to the request context, requests without
// a valid token pass through anonymous
func HandleAuthentication(session core.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			accessToken := getBearerToken(r)
			if accessToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			owner, err := session.Login(ctx, accessToken)
			if err != nil {
				next.ServeHTTP(w, r)
				log.WithError(err).Debugln("parse access token error:", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithOwner(ctx, owner)))
		}

		return http.HandlerFunc(fn)
	}
}

// LoginRequired reject anonymous requests
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := request.Owner(r.Context()); !ok {
			render.Unauthorized(w, errLoginRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// OwnerOnly the token owner must match the {owner} url param, admins may act on anyone
func OwnerOnly(cfg *core.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, ok := request.Owner(r.Context())
			if !ok {
				render.Unauthorized(w, errLoginRequired)
				return
			}

			if owner != chi.URLParam(r, "owner") && !cfg.IsAdmin(owner) {
				render.Forbidden(w, errForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly only configured admins
func AdminOnly(cfg *core.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, ok := request.Owner(r.Context())
			if !ok {
				render.Unauthorized(w, errLoginRequired)
				return
			}

			if !cfg.IsAdmin(owner) {
				render.Forbidden(w, errForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getBearerToken(r *http.Request) string {
	s := r.Header.Get("Authorization")
	return strings.TrimPrefix(s, "Bearer ")
}
