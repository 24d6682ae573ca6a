package config

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient returns the client shared by every outbound call to Swit and Asana.
func NewHTTPClient(c *Config) *http.Client {
	return &http.Client{
		Timeout:   c.HTTPClientTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
