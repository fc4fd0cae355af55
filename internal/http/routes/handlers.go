package routes

import (
	"context"

	"github.com/jmylchreest/ledstripd/internal/http/handlers"
)

// Handlers aggregates all handler interfaces for route registration.
// For the main server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	HealthCheck  func(ctx context.Context, input *handlers.HealthInput) (*handlers.HealthOutput, error)
	VersionCheck func(ctx context.Context, input *handlers.VersionInput) (*handlers.VersionOutput, error)
	Strip        handlers.StripHandlers
	Logging      handlers.LoggingHandlers
}

// PublicPaths lists the routes served without the API token.
var PublicPaths = []string{"/api/v1/health", "/healthz", "/api/v1/version", "/docs", "/openapi.json", "/openapi.yaml"}
