package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/request"
)

const defaultOrigin = "http://localhost:3000"

// AllowedOrigins splits a comma separated origin list, dropping blanks and duplicates
func AllowedOrigins(list string) []string {
	var origins []string
	seen := make(map[string]bool)
	for _, o := range strings.Split(list, ",") {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = []string{defaultOrigin}
	}
	return origins
}

// CORS builds rs/cors middleware for the configured frontend origins
func CORS(frontendURL string, logger *zap.Logger) func(http.Handler) http.Handler {
	origins := AllowedOrigins(frontendURL)
	if logger != nil {
		logger.Info("cors_configured", zap.Strings("allowed_origins", origins))
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", request.RequestIDHeader},
		ExposedHeaders:   []string{request.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})
	return c.Handler
}
