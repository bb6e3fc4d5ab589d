/*
Package handler provides the HTTP handlers and routing setup for the AnyChat token gateway.

The gateway lets a frontend obtain user tokens and room grants without ever seeing the client
secret. Every /api route requires a client token signed with the deployment secret; the
grant endpoint is additionally rate limited per IP.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"anychat/internal/pkg/auth/jwt"
	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/limiter"
	"anychat/internal/pkg/logx"
	"anychat/internal/pkg/metrics"
	"anychat/internal/pkg/resp"
)

// Router sets up the gateway routing table. The returned limiter throttles the grant endpoint;
// the caller runs its sweep loop.
func Router(deps *AppDeps) (http.Handler, *limiter.KeyedLimiter) {
	grantLimiter := limiter.New(rate.Limit(deps.Config.GrantRate), deps.Config.GrantBurst, limiter.RemoteIP)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "AnyChat Token Gateway",
		}
		resp.RespondSuccess(w, r, data)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.RequireClientToken(deps.Client.MintIssuer(), deps.Client.Identity))

		api.Post("/token/user", HandleUserToken(deps))

		api.Route("/rooms/{roomID}", func(room chi.Router) {
			room.With(grantLimiter.Middleware).Post("/grants", HandleGrant(deps))
			room.Post("/sync-permissions", HandleSyncPermissions(deps))
		})

		api.Post("/avatars/presign", HandlePresignAvatar(deps))
	})

	return r, grantLimiter
}

// respondErr writes err through resp, keeping CustomError codes and statuses.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	resp.RespondError(w, r, errs.As(err))
}
