// Package controllers wires the HTTP routes of the bridge.
package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"asana-swit-backend/config"
	"asana-swit-backend/controllers/authentication"
	"asana-swit-backend/controllers/httpCors"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter builds the root handler: routes, request logging, CORS and tracing.
func NewRouter(cfg *config.Config, actions http.Handler, auth *authentication.Handler) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger)

	r.HandleFunc("/", handleHome).Methods(http.MethodGet)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.Handle(cfg.ActionPath, actions).Methods(http.MethodPost)
	r.HandleFunc("/app_install", auth.HandleAppInstall).Methods(http.MethodGet)
	r.HandleFunc("/oauth", auth.HandleSwitCallback).Methods(http.MethodGet)
	r.HandleFunc("/asana_oauth", auth.HandleAsanaCallback).Methods(http.MethodGet)

	handler := httpCors.CorsSettings(cfg).Handler(r)
	return otelhttp.NewHandler(handler, cfg.OTelServiceName)
}

func handleHome(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "API is running")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "OK")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger tags every request with an id and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(httpCors.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(httpCors.RequestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %s -> %d (%s)", id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
