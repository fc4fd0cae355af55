package strip

import (
	"math"
	"sync/atomic"
)

// TargetState is a point-in-time copy of the requested light state.
type TargetState struct {
	On         bool    `json:"on"`
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
}

// Target holds the requested light state. Every field is independently
// atomic: writers never need a consistent multi-field snapshot and readers
// tolerate one tick of staleness across fields.
type Target struct {
	on         atomic.Bool
	hue        atomicFloat
	saturation atomicFloat
	brightness atomicFloat
}

// NewTarget creates a target initialized to s.
func NewTarget(s TargetState) *Target {
	t := &Target{}
	t.on.Store(s.On)
	t.hue.Store(s.Hue)
	t.saturation.Store(s.Saturation)
	t.brightness.Store(s.Brightness)
	return t
}

// Snapshot reads every field.
func (t *Target) Snapshot() TargetState {
	return TargetState{
		On:         t.on.Load(),
		Hue:        t.hue.Load(),
		Saturation: t.saturation.Load(),
		Brightness: t.brightness.Load(),
	}
}

func (t *Target) On() bool            { return t.on.Load() }
func (t *Target) Hue() float64        { return t.hue.Load() }
func (t *Target) Saturation() float64 { return t.saturation.Load() }
func (t *Target) Brightness() float64 { return t.brightness.Load() }

func (t *Target) setOn(v bool)            { t.on.Store(v) }
func (t *Target) setHue(v float64)        { t.hue.Store(v) }
func (t *Target) setSaturation(v float64) { t.saturation.Store(v) }
func (t *Target) setBrightness(v float64) { t.brightness.Store(v) }

type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }
func (f *atomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
