package routes

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/ledstripd/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	mw.Public(api, http.MethodGet, "/api/v1/health", h.HealthCheck,
		mw.Doc("Health", "Health check", "Returns service health status. This endpoint does not require authentication."),
		mw.WithOperationID("healthCheck"))
	mw.Hidden(api, http.MethodGet, "/healthz", h.HealthCheck)

	mw.Public(api, http.MethodGet, "/api/v1/version", h.VersionCheck,
		mw.Doc("Version", "Daemon version", "Returns the running daemon's version, commit, and build date. This endpoint does not require authentication."),
		mw.WithOperationID("getVersion"))

	// Strip
	mw.Protected(api, http.MethodGet, "/api/v1/strip", h.Strip.GetStrip,
		mw.Doc("Strip", "Get the strip", "Returns the target state, the state currently shown and whether a transition is running."),
		mw.WithOperationID("getStrip"))
	mw.Protected(api, http.MethodPut, "/api/v1/strip/state", h.Strip.SetStripState,
		mw.Doc("Strip", "Set strip state", "Set one or more properties (on, brightness, hue, saturation, white). The strip fades to the new target. Nothing is applied if any value is rejected."),
		mw.WithOperationID("setStripState"))
	mw.Protected(api, http.MethodPost, "/api/v1/strip/identify", h.Strip.Identify,
		mw.Doc("Strip", "Identify the strip", "Blinks the strip pink nine times, then restores its color."),
		mw.WithOperationID("identifyStrip"),
		mw.WithDefaultStatus(http.StatusAccepted))

	// Logging
	mw.Protected(api, http.MethodGet, "/api/v1/logging/level", h.Logging.GetLevel,
		mw.Doc("Logging", "Get global log level", ""),
		mw.WithOperationID("getLogLevel"))
	mw.Protected(api, http.MethodPut, "/api/v1/logging/level", h.Logging.SetLevel,
		mw.Doc("Logging", "Set global log level", "Changes the global log level at runtime. Valid values: debug, info, warn, error."),
		mw.WithOperationID("setLogLevel"))
}
