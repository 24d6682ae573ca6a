package httpCors

import (
	"net/http"

	"asana-swit-backend/config"
	"asana-swit-backend/services/signature"

	"github.com/rs/cors"
)

func CorsSettings(cfg *config.Config) *cors.Cors {
	c := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedOrigins:   cfg.CORSAllowedOrigins, // "*" по умолчанию, ограничить через CORS_ALLOWED_ORIGINS
		AllowCredentials: false,
		AllowedHeaders:   []string{"Content-Type", signature.TimestampHeader, signature.SignatureHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		Debug:            cfg.CORSDebug,
	})
	return c
}

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"
