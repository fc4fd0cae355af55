package server

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ledstripd/pkg/strip"
)

// setupSocketTest starts a socket-only server whose strip rests at full red.
func setupSocketTest(t *testing.T) *testServer {
	t.Helper()
	ts := newTestServer(t, strip.TargetState{On: true, Hue: 0, Saturation: 100, Brightness: 100}, "")
	ts.start(t)
	return ts
}

// socketRequest sends a JSON request and reads the JSON response.
func socketRequest(t *testing.T, socketPath string, req map[string]any) map[string]any {
	t.Helper()
	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	return newSocketConn(t, conn).request(t, req)
}

// socketConn issues several requests over one connection.
type socketConn struct {
	conn net.Conn
	dec  *json.Decoder
}

func newSocketConn(t *testing.T, conn net.Conn) *socketConn {
	t.Helper()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return &socketConn{conn: conn, dec: json.NewDecoder(conn)}
}

func (c *socketConn) request(t *testing.T, req map[string]any) map[string]any {
	t.Helper()
	require.NoError(t, json.NewEncoder(c.conn).Encode(req))

	var resp map[string]any
	require.NoError(t, c.dec.Decode(&resp))
	return resp
}

// --- Ping / Health / Version ---

func TestSocketAction_Ping(t *testing.T) {
	ts := setupSocketTest(t)

	resp := socketRequest(t, ts.socketPath, map[string]any{"action": "ping"})
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "pong", resp["message"])
}

func TestSocketAction_PingWithID(t *testing.T) {
	ts := setupSocketTest(t)

	resp := socketRequest(t, ts.socketPath, map[string]any{"action": "ping", "id": "req-123"})
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "req-123", resp["id"])
}

func TestSocketAction_Health(t *testing.T) {
	ts := setupSocketTest(t)

	resp := socketRequest(t, ts.socketPath, map[string]any{"action": "health"})
	assert.Equal(t, "ok", resp["health"])
}

func TestSocketAction_Version(t *testing.T) {
	ts := setupSocketTest(t)

	resp := socketRequest(t, ts.socketPath, map[string]any{"action": "version"})
	assert.Equal(t, "1.2.3", resp["version"])
	assert.Equal(t, "abc123", resp["commit"])
	assert.Equal(t, "2026-01-01", resp["build_date"])
}

// --- Get State ---

func TestSocketAction_GetState(t *testing.T) {
	ts := setupSocketTest(t)

	resp := socketRequest(t, ts.socketPath, map[string]any{"action": "get_state"})
	assert.Equal(t, "ok", resp["status"])

	s, ok := resp["strip"].(map[string]any)
	require.True(t, ok, "strip should be a map")
	assert.Equal(t, "strip-1", s["id"])
	assert.Equal(t, "Test Strip", s["name"])
	target, ok := s["target"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, target["on"])
	assert.Equal(t, 100.0, target["brightness"])
	assert.Equal(t, "#ff0000", s["color"])
}

// --- Set State ---

func TestSocketAction_SetState_Fields(t *testing.T) {
	ts := setupSocketTest(t)

	resp := socketRequest(t, ts.socketPath, map[string]any{
		"action": "set_state",
		"data":   map[string]any{"brightness": 50, "hue": 120.0, "white": true},
	})
	require.Equal(t, "ok", resp["status"], "error: %v", resp["error"])

	st := ts.acc.State()
	assert.Equal(t, strip.TargetState{On: true, Hue: 120, Saturation: 100, Brightness: 50}, st.Target)
	assert.True(t, st.White)

	require.Eventually(t, func() bool {
		return ts.acc.State().Current == strip.HSI{Hue: 120, Saturation: 100, Intensity: 50}
	}, 5*time.Second, 5*time.Millisecond)
}

func TestSocketAction_SetState_PropertyValue(t *testing.T) {
	ts := setupSocketTest(t)

	resp := socketRequest(t, ts.socketPath, map[string]any{
		"action": "set_state",
		"data":   map[string]any{"property": "on", "value": false},
	})
	require.Equal(t, "ok", resp["status"])
	assert.False(t, ts.acc.On())

	require.Eventually(t, func() bool {
		st := ts.acc.State()
		return !st.Running && st.Color == "#000000"
	}, 5*time.Second, 5*time.Millisecond)
}

func TestSocketAction_SetState_Invalid(t *testing.T) {
	ts := setupSocketTest(t)
	before := ts.acc.State().Target

	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"out of range", map[string]any{"on": false, "saturation": 150.0}, "saturation must be between 0 and 100"},
		{"wrong type", map[string]any{"property": "on", "value": "yes"}, "on must be a boolean"},
		{"fractional brightness", map[string]any{"brightness": 12.5}, "brightness must be an integer"},
		{"nothing to set", map[string]any{}, "missing property/value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := socketRequest(t, ts.socketPath, map[string]any{"action": "set_state", "data": tt.data})
			errMsg, _ := resp["error"].(string)
			assert.Contains(t, errMsg, tt.want)
			assert.Equal(t, before, ts.acc.State().Target, "rejected request must not change the target")
		})
	}
}

// --- Identify ---

func TestSocketAction_Identify(t *testing.T) {
	ts := setupSocketTest(t)

	require.Eventually(t, func() bool { return !ts.acc.State().Running }, 5*time.Second, time.Millisecond)
	before := ts.sink.Len()

	resp := socketRequest(t, ts.socketPath, map[string]any{"action": "identify"})
	assert.Equal(t, "identifying", resp["status"])

	// nine pink/black pairs then the restored color
	require.Eventually(t, func() bool { return ts.sink.Len() == before+2*strip.IdentifyBlinks+1 }, 5*time.Second, time.Millisecond)
	assert.Equal(t, "#ff0000", ts.acc.State().Color)
}

// --- Logging ---

func TestSocketAction_Levels(t *testing.T) {
	ts := setupSocketTest(t)

	conn, err := net.Dial("unix", ts.socketPath)
	require.NoError(t, err)
	defer conn.Close()
	c := newSocketConn(t, conn)

	resp := c.request(t, map[string]any{"action": "get_level"})
	assert.Equal(t, "debug", resp["level"])

	resp = c.request(t, map[string]any{"action": "set_level", "data": map[string]any{"level": "warn"}})
	assert.Equal(t, "warn", resp["level"])
	assert.Equal(t, "warn", ts.logger.Level())

	resp = c.request(t, map[string]any{"action": "set_level", "data": map[string]any{"level": "verbose"}})
	assert.Contains(t, resp["error"], "invalid log level")

	resp = c.request(t, map[string]any{"action": "set_level"})
	assert.Equal(t, "missing level for set_level", resp["error"])
}

// --- Errors ---

func TestSocketAction_Unknown(t *testing.T) {
	ts := setupSocketTest(t)

	resp := socketRequest(t, ts.socketPath, map[string]any{"action": "list_lights", "id": "x"})
	assert.Equal(t, "unknown action: list_lights", resp["error"])
	assert.Equal(t, "x", resp["id"])
}

func TestSocket_InvalidJSON(t *testing.T) {
	ts := setupSocketTest(t)

	conn, err := net.Dial("unix", ts.socketPath)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(conn).Decode(&resp))
	assert.Contains(t, resp["error"], "invalid JSON request")

	// the connection stays usable
	c := newSocketConn(t, conn)
	assert.Equal(t, "pong", c.request(t, map[string]any{"action": "ping"})["message"])
}
