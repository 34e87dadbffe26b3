package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"pricelens/internal/config"
)

// CORS builds the cross-origin handler from the security settings. With
// CORS disabled it passes requests through untouched.
func CORS(cfg config.SecurityConfig) func(next http.Handler) http.Handler {
	if !cfg.EnableCORS {
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
