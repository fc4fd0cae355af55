package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ledstripd/internal/logging"
	"github.com/jmylchreest/ledstripd/pkg/color"
	"github.com/jmylchreest/ledstripd/pkg/output"
	"github.com/jmylchreest/ledstripd/pkg/strip"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStrip builds an accessory whose scheduler is not running.
func newTestStrip(ts strip.TargetState) *strip.Accessory {
	target := strip.NewTarget(ts)
	engine := strip.NewEngine(target, output.SinkFunc(func(color.Color) {}), strip.DefaultSteps(), strip.HSI{})
	scheduler := strip.NewScheduler(testLogger(), engine, strip.SchedulerConfig{})
	info := strip.Info{ID: "strip-1", Name: "Desk", Model: "Led Strip", Firmware: "1.2.3"}
	return strip.NewAccessory(testLogger(), info, target, engine, scheduler, nil)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

// === Health Handler Tests ===

func TestHealthCheck(t *testing.T) {
	out, err := HealthCheck(context.Background(), &HealthInput{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Body.Status)
}

func TestVersionCheck(t *testing.T) {
	h := &VersionHandler{Version: "1.2.3", Commit: "abc123", BuildDate: "2026-01-01"}
	out, err := h.VersionCheck(context.Background(), &VersionInput{})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", out.Body.Version)
	assert.Equal(t, "abc123", out.Body.Commit)
	assert.Equal(t, "2026-01-01", out.Body.BuildDate)
}

// === Strip Handler Tests ===

func TestStripHandler_GetStrip(t *testing.T) {
	h := &StripHandler{Strip: newTestStrip(strip.TargetState{On: true, Hue: 120, Saturation: 100, Brightness: 80})}

	out, err := h.GetStrip(context.Background(), &GetStripInput{})
	require.NoError(t, err)
	assert.Equal(t, "strip-1", out.Body.ID)
	assert.Equal(t, "Desk", out.Body.Name)
	assert.Equal(t, TargetResponse{On: true, Hue: 120, Saturation: 100, Brightness: 80}, out.Body.Target)
	assert.Equal(t, HSIResponse{}, out.Body.Current)
	assert.Equal(t, "#000000", out.Body.Color)
	assert.True(t, out.Body.Animating)
}

func TestStripHandler_SetStripState(t *testing.T) {
	h := &StripHandler{Strip: newTestStrip(strip.TargetState{On: false, Saturation: 100, Brightness: 100})}

	input := &SetStripStateInput{}
	hue, brightness, white := 240.0, 30, true
	input.Body.Hue = &hue
	input.Body.Brightness = &brightness
	input.Body.White = &white

	out, err := h.SetStripState(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, TargetResponse{On: true, Hue: 240, Saturation: 100, Brightness: 30}, out.Body.Target)
	assert.True(t, out.Body.White)
}

func TestStripHandler_SetStripState_RejectsWithoutApplying(t *testing.T) {
	initial := strip.TargetState{On: false, Hue: 10, Saturation: 20, Brightness: 30}
	acc := newTestStrip(initial)
	h := &StripHandler{Strip: acc}

	input := &SetStripStateInput{}
	on, hue := true, 400.0
	input.Body.On = &on
	input.Body.Hue = &hue

	_, err := h.SetStripState(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Contains(t, err.Error(), "hue must be between 0 and 360")
	assert.Equal(t, initial, acc.State().Target)
}

func TestStripHandler_SetStripState_Empty(t *testing.T) {
	h := &StripHandler{Strip: newTestStrip(strip.TargetState{})}

	_, err := h.SetStripState(context.Background(), &SetStripStateInput{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestStripHandler_Identify(t *testing.T) {
	h := &StripHandler{Strip: newTestStrip(strip.TargetState{})}

	out, err := h.Identify(context.Background(), &IdentifyInput{})
	require.NoError(t, err)
	assert.Equal(t, "identifying", out.Body.Status)
}

// === Logging Handler Tests ===

func TestLoggingHandler(t *testing.T) {
	l := logging.New(io.Discard, "info", "text")
	h := &LoggingHandler{Levels: l}

	out, err := h.GetLevel(context.Background(), &GetLevelInput{})
	require.NoError(t, err)
	assert.Equal(t, "info", out.Body.Level)

	in := &SetLevelInput{}
	in.Body.Level = "debug"
	set, err := h.SetLevel(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "debug", set.Body.Level)
	assert.Equal(t, "debug", l.Level())

	in.Body.Level = "chatty"
	_, err = h.SetLevel(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}
