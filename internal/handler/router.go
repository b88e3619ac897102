package handler

import (
	"net/http"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/auth"
	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/redis"
	"github.com/gorilla/mux"
)

// SetupRouter wires the API surface under /api/auth: public auth routes,
// token-protected user routes, staff routes under /api/auth/admin, and the
// superuser override on top of those.
func SetupRouter(h *Handler, redisClient redis.RedisClient, tokens *auth.TokenService, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.Handle("/metrics", metricsHandler).Methods("GET")

	api := r.PathPrefix("/api/auth").Subrouter()
	h.RegisterPublicRoutes(api)

	protected := api.NewRoute().Subrouter()
	protected.Use(auth.Middleware(redisClient, tokens))
	h.RegisterProtectedRoutes(protected)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireStaff)
	h.RegisterAdminRoutes(admin)

	superuser := protected.PathPrefix("/admin").Subrouter()
	superuser.Use(auth.RequireSuperuser)
	h.RegisterSuperuserRoutes(superuser)

	return r
}
