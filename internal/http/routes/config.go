// Package routes provides shared route registration for the ledstripd HTTP API.
// Both the main server and the OpenAPI generator use the same route definitions,
// so the OpenAPI document always matches the served API.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/ledstripd/internal/http/mw"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("ledstripd API", version)
	cfg.Info.Description = "REST API for controlling an HSI LED strip through the ledstripd daemon."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	// Add security scheme for token auth (both Bearer and X-API-Key header)
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:        "http",
			Scheme:      "bearer",
			Description: "Token authentication. Include the configured api.token as `Authorization: Bearer <token>` or `X-API-Key: <token>`.",
		},
	}

	// Define OpenAPI tags
	cfg.Tags = []*huma.Tag{
		{Name: "Strip", Description: "Strip state and color transitions"},
		{Name: "Logging", Description: "Runtime log level management"},
		{Name: "Health", Description: "Liveness probes"},
		{Name: "Version", Description: "Build information"},
	}

	return cfg
}
