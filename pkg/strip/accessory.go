package strip

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/ledstripd/internal/events"
	"github.com/jmylchreest/ledstripd/pkg/color"
	"github.com/jmylchreest/ledstripd/pkg/output"
)

// Info describes the accessory to remote controllers.
type Info struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Firmware     string `json:"firmware"`
}

// State is the externally visible state of the strip.
type State struct {
	Info    Info        `json:"info"`
	Target  TargetState `json:"target"`
	Current HSI         `json:"current"`
	Color   string      `json:"color"`
	White   bool        `json:"white"`
	Running bool        `json:"running"`
}

// Accessory is the boundary remote controllers talk to. Setters validate
// their input, update the target and wake the scheduler; invalid input
// leaves everything untouched.
type Accessory struct {
	logger    *slog.Logger
	info      Info
	target    *Target
	engine    *Engine
	scheduler *Scheduler
	bus       *events.Bus

	whiteMu sync.Mutex
	white   output.Switch
	whiteOn bool
}

// NewAccessory creates an accessory over the given target, engine and
// scheduler. The white switch is driven off at startup.
func NewAccessory(logger *slog.Logger, info Info, target *Target, engine *Engine, scheduler *Scheduler, white output.Switch) *Accessory {
	if white == nil {
		white = output.NopSwitch{}
	}
	a := &Accessory{
		logger:    logger,
		info:      info,
		target:    target,
		engine:    engine,
		scheduler: scheduler,
		white:     white,
	}
	white.WriteSwitch(false)
	return a
}

// SetEventBus sets the bus target changes are published on.
func (a *Accessory) SetEventBus(bus *events.Bus) {
	a.bus = bus
}

// Info returns the accessory information.
func (a *Accessory) Info() Info {
	return a.info
}

// SetOn sets the on/off state; v must be a bool.
func (a *Accessory) SetOn(v any) bool { return a.Set(PropertyOn, v) }

// SetBrightness sets the target brightness; v must be an integer in 0-100.
// A positive brightness turns the strip on.
func (a *Accessory) SetBrightness(v any) bool { return a.Set(PropertyBrightness, v) }

// SetHue sets the target hue; v must be a float in 0-360. It turns the strip on.
func (a *Accessory) SetHue(v any) bool { return a.Set(PropertyHue, v) }

// SetSaturation sets the target saturation; v must be a float in 0-100. It
// turns the strip on.
func (a *Accessory) SetSaturation(v any) bool { return a.Set(PropertySaturation, v) }

// SetWhite drives the white channel; v must be a bool.
func (a *Accessory) SetWhite(v any) bool { return a.Set(PropertyWhite, v) }

// Set applies a raw value to a property and reports whether it was accepted.
func (a *Accessory) Set(name PropertyName, v any) bool {
	return a.Update(name, v) == nil
}

// Update applies a raw value to a property. Rejected values return an
// invalid input error and change nothing.
func (a *Accessory) Update(name PropertyName, v any) error {
	pv, err := ParseValue(name, v)
	if err != nil {
		a.logger.Debug("strip: rejected property value", "property", name, "value", v, "error", err)
		return err
	}
	a.Apply(pv)
	return nil
}

// Apply writes an already validated value.
func (a *Accessory) Apply(v PropertyValue) {
	switch pv := v.(type) {
	case OnValue:
		a.target.setOn(bool(pv))
	case BrightnessValue:
		a.target.setBrightness(float64(pv))
		if pv > 0 {
			a.target.setOn(true)
		}
	case HueValue:
		a.target.setHue(float64(pv))
		a.target.setOn(true)
	case SaturationValue:
		a.target.setSaturation(float64(pv))
		a.target.setOn(true)
	case WhiteValue:
		a.writeWhite(bool(pv))
		return
	default:
		return
	}

	a.logger.Debug("strip: target updated", "property", v.PropertyName(), "value", v.Value())
	a.bus.Emit(events.StripTargetChanged, a.target.Snapshot())
	a.scheduler.Wake()
}

func (a *Accessory) writeWhite(on bool) {
	a.whiteMu.Lock()
	a.white.WriteSwitch(on)
	a.whiteOn = on
	a.whiteMu.Unlock()

	a.logger.Debug("strip: white channel", "on", on)
	a.bus.Emit(events.StripWhiteChanged, map[string]bool{"on": on})
}

func (a *Accessory) On() bool            { return a.target.On() }
func (a *Accessory) Brightness() int     { return int(a.target.Brightness()) }
func (a *Accessory) Hue() float64        { return a.target.Hue() }
func (a *Accessory) Saturation() float64 { return a.target.Saturation() }

// White returns the white channel state.
func (a *Accessory) White() bool {
	a.whiteMu.Lock()
	defer a.whiteMu.Unlock()
	return a.whiteOn
}

// State returns a snapshot of target, current and run state.
func (a *Accessory) State() State {
	return State{
		Info:    a.info,
		Target:  a.target.Snapshot(),
		Current: a.engine.Current(),
		Color:   color.Hex(a.engine.Color()),
		White:   a.White(),
		Running: a.scheduler.Running(),
	}
}

// Identify plays the identify blink sequence on the strip.
func (a *Accessory) Identify() {
	a.logger.Info("strip: identify requested")
	a.scheduler.Identify()
}
