// Package strip implements the color transition engine of an RGB light
// strip: bounded stepping of hue, saturation and intensity toward a target,
// conversion to RGB and the animation scheduler that drives it.
package strip

import (
	"math"
	"sync/atomic"

	"github.com/jmylchreest/ledstripd/pkg/color"
	"github.com/jmylchreest/ledstripd/pkg/output"
)

// Default per-tick step sizes. A full sweep of any dimension takes 100 ticks.
const (
	HueStep        = 3.6
	SaturationStep = 1.0
	IntensityStep  = 1.0
)

// HueModulus is the width of the hue circle in degrees.
const HueModulus = 360.0

// HSI is a hue (degrees), saturation (percent), intensity (percent) triple.
type HSI struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Intensity  float64 `json:"intensity"`
}

// Steps holds the maximum change per tick for each dimension.
type Steps struct {
	Hue        float64
	Saturation float64
	Intensity  float64
}

// DefaultSteps returns the step sizes giving 100-tick full sweeps.
func DefaultSteps() Steps {
	return Steps{Hue: HueStep, Saturation: SaturationStep, Intensity: IntensityStep}
}

// frame is the published result of a tick.
type frame struct {
	hsi   HSI
	color color.Color
}

// Engine advances the current color state toward the target one tick at a
// time and writes the result to a sink.
//
// Tick must only be called from a single goroutine (the scheduler). Current
// and Color are safe to call from any goroutine.
type Engine struct {
	target *Target
	sink   output.Sink
	steps  Steps

	current HSI
	last    atomic.Pointer[frame]
}

// NewEngine creates an engine starting at the given current state.
func NewEngine(target *Target, sink output.Sink, steps Steps, initial HSI) *Engine {
	if steps.Hue <= 0 {
		steps.Hue = HueStep
	}
	if steps.Saturation <= 0 {
		steps.Saturation = SaturationStep
	}
	if steps.Intensity <= 0 {
		steps.Intensity = IntensityStep
	}
	e := &Engine{
		target:  target,
		sink:    sink,
		steps:   steps,
		current: initial,
	}
	e.publish(color.HSIToRGB(initial.Hue, initial.Saturation, initial.Intensity))
	return e
}

// effective returns the target the engine is converging on: the brightness
// target is forced to zero while the light is off and hue is normalized.
func (e *Engine) effective() HSI {
	t := e.target.Snapshot()
	eff := HSI{
		Hue:        normalizeHue(t.Hue),
		Saturation: t.Saturation,
		Intensity:  t.Brightness,
	}
	if !t.On {
		eff.Intensity = 0
	}
	return eff
}

// AtRest reports whether the current state equals the effective target.
func (e *Engine) AtRest() bool {
	return e.current == e.effective()
}

// Tick advances every dimension by one step, converts the result to RGB and
// writes it to the sink. It reports whether all dimensions have reached
// their targets.
func (e *Engine) Tick() bool {
	eff := e.effective()

	e.current.Hue = StepCircular(e.current.Hue, eff.Hue, HueModulus, e.steps.Hue)
	e.current.Saturation = StepLinear(e.current.Saturation, eff.Saturation, e.steps.Saturation)
	e.current.Intensity = StepLinear(e.current.Intensity, eff.Intensity, e.steps.Intensity)

	c := color.HSIToRGB(e.current.Hue, e.current.Saturation, e.current.Intensity)
	e.sink.WriteColor(c)
	e.publish(c)

	return e.current == eff
}

// Emit rewrites the color of the current state without stepping.
func (e *Engine) Emit() {
	if f := e.last.Load(); f != nil {
		e.sink.WriteColor(f.color)
	}
}

// Current returns the state most recently written to the sink.
func (e *Engine) Current() HSI {
	return e.last.Load().hsi
}

// Color returns the color most recently written to the sink.
func (e *Engine) Color() color.Color {
	return e.last.Load().color
}

func (e *Engine) publish(c color.Color) {
	e.last.Store(&frame{hsi: e.current, color: c})
}

func normalizeHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return h
	}
	return wrap(h, HueModulus)
}
