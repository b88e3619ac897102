package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/redis"
	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
)

type claimsKey struct{}

// ClaimsFromContext returns the authenticated caller's token claims.
func ClaimsFromContext(ctx context.Context) (*models.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*models.TokenClaims)
	return claims, ok
}

// Middleware validates the Bearer token and checks it is still the cached
// (non-revoked) token for the user before letting the request through.
func Middleware(redisClient redis.RedisClient, tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "authorization header missing", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := parts[1]
			claims, err := tokens.ParseAccessToken(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			// Check the token is still current in Redis.
			storedToken, err := redisClient.AccessToken(r.Context(), claims.UserID)
			if err != nil || storedToken != tokenStr {
				slog.Error("invalid or revoked token", "user_id", claims.UserID, "error", err)
				http.Error(w, "invalid or revoked token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff gates staff-only routes; it must run after Middleware.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || (!claims.IsStaff && !claims.IsSuperuser) {
			http.Error(w, "staff privileges required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser gates the administrative overrides.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || !claims.IsSuperuser {
			http.Error(w, "superuser privileges required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
