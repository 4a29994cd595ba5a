package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
)

// CORS returns middleware that applies the configured allowed origin policy.
// The embedded admin UI is served from the Shopify admin domain.
func CORS(cfg config.AppConfig) func(http.Handler) http.Handler {
	origins := []string{"https://admin.shopify.com"}
	if cfg.CORSOrigins != "" {
		origins = origins[:0]
		for _, origin := range strings.Split(cfg.CORSOrigins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
