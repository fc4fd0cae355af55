package client

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newTestServer creates a test HTTP server with the given handler map.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *HTTPClient) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewHTTP(testLogger(), server.URL+"/", "test-token")
	return server, client
}

func jsonHandler(statusCode int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}
}

// === Health / Version ===

func TestHTTPClient_Health(t *testing.T) {
	_, client := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": jsonHandler(200, map[string]any{"status": "ok"}),
	})
	assert.NoError(t, client.Health())
}

func TestHTTPClient_GetVersion(t *testing.T) {
	_, client := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/version": jsonHandler(200, map[string]any{"version": "1.0.0", "commit": "abc"}),
	})

	v, err := client.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v["version"])
}

// === Strip ===

func TestHTTPClient_GetState(t *testing.T) {
	_, client := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/strip": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			jsonHandler(200, map[string]any{"id": "strip-1", "animating": false})(w, r)
		},
	})

	s, err := client.GetState()
	require.NoError(t, err)
	assert.Equal(t, "strip-1", s["id"])
}

func TestHTTPClient_GetState_Unauthorized(t *testing.T) {
	_, client := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/strip": jsonHandler(401, map[string]any{"error": "unauthorized"}),
	})

	_, err := client.GetState()
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Equal(t, "unauthorized", statusErr.Message)
}

func TestStatusError_Message(t *testing.T) {
	assert.Equal(t, "range", statusError(400, []byte(`{"title":"Bad Request","detail":"range"}`)).Message)
	assert.Equal(t, "plain text", statusError(500, []byte("plain text\n")).Message)
	assert.Equal(t, "Service Unavailable", statusError(503, nil).Message)
}

func TestHTTPClient_SetState(t *testing.T) {
	var body map[string]any
	_, client := newTestServer(t, map[string]http.HandlerFunc{
		"PUT /api/v1/strip/state": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			jsonHandler(200, map[string]any{"id": "strip-1"})(w, r)
		},
	})

	require.NoError(t, client.SetState(map[string]any{"on": true, "hue": 30.0}))
	assert.Equal(t, map[string]any{"on": true, "hue": 30.0}, body)
}

func TestHTTPClient_SetState_Rejected(t *testing.T) {
	_, client := newTestServer(t, map[string]http.HandlerFunc{
		"PUT /api/v1/strip/state": jsonHandler(400, map[string]any{"detail": "hue must be between 0 and 360"}),
	})

	err := client.SetState(map[string]any{"hue": 400.0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error 400")
	assert.Contains(t, err.Error(), "hue must be between 0 and 360")
}

func TestHTTPClient_Identify(t *testing.T) {
	called := false
	_, client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/strip/identify": func(w http.ResponseWriter, r *http.Request) {
			called = true
			jsonHandler(202, map[string]any{"status": "identifying"})(w, r)
		},
	})

	require.NoError(t, client.Identify())
	assert.True(t, called)
}

// === Logging ===

func TestHTTPClient_Levels(t *testing.T) {
	var set map[string]any
	_, client := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/logging/level": jsonHandler(200, map[string]any{"level": "info"}),
		"PUT /api/v1/logging/level": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&set))
			jsonHandler(200, set)(w, r)
		},
	})

	level, err := client.GetLevel()
	require.NoError(t, err)
	assert.Equal(t, "info", level)

	require.NoError(t, client.SetLevel("debug"))
	assert.Equal(t, map[string]any{"level": "debug"}, set)
}

func TestHTTPClient_ConnectionError(t *testing.T) {
	client := NewHTTP(testLogger(), "http://127.0.0.1:1", "")
	_, err := client.GetState()
	assert.ErrorContains(t, err, "HTTP request failed")
}
