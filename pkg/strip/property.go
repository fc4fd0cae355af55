package strip

import (
	"fmt"
	"math"

	"github.com/jmylchreest/ledstripd/internal/errors"
)

// PropertyName represents a settable strip property.
type PropertyName string

const (
	// PropertyOn is the on/off state of the RGB channels
	PropertyOn PropertyName = "on"

	// PropertyBrightness is the target brightness in percent
	PropertyBrightness PropertyName = "brightness"

	// PropertyHue is the target hue in degrees
	PropertyHue PropertyName = "hue"

	// PropertySaturation is the target saturation in percent
	PropertySaturation PropertyName = "saturation"

	// PropertyWhite is the state of the binary white channel
	PropertyWhite PropertyName = "white"
)

// Property limits.
const (
	MinBrightness = 0
	MaxBrightness = 100
	MinHue        = 0.0
	MaxHue        = 360.0
	MinSaturation = 0.0
	MaxSaturation = 100.0
)

// PropertyValue is a typed, validated value for one property.
type PropertyValue interface {
	// PropertyName returns the name of the property this value is for
	PropertyName() PropertyName

	// Value returns the raw value
	Value() any

	// Validate checks if the value is in range for the property
	Validate() error
}

// OnValue is an on/off state.
type OnValue bool

func (v OnValue) PropertyName() PropertyName { return PropertyOn }
func (v OnValue) Value() any                 { return bool(v) }
func (v OnValue) Validate() error            { return nil }

// BrightnessValue is a brightness level in percent.
type BrightnessValue int

func (v BrightnessValue) PropertyName() PropertyName { return PropertyBrightness }
func (v BrightnessValue) Value() any                 { return int(v) }

// Validate ensures the brightness is within range.
func (v BrightnessValue) Validate() error {
	if v < MinBrightness || v > MaxBrightness {
		return errors.InvalidInputf("brightness must be between %d and %d, got %d", MinBrightness, MaxBrightness, int(v))
	}
	return nil
}

// HueValue is a hue in degrees.
type HueValue float64

func (v HueValue) PropertyName() PropertyName { return PropertyHue }
func (v HueValue) Value() any                 { return float64(v) }

// Validate ensures the hue is a number within range.
func (v HueValue) Validate() error {
	return validateFloat("hue", float64(v), MinHue, MaxHue)
}

// SaturationValue is a saturation in percent.
type SaturationValue float64

func (v SaturationValue) PropertyName() PropertyName { return PropertySaturation }
func (v SaturationValue) Value() any                 { return float64(v) }

// Validate ensures the saturation is a number within range.
func (v SaturationValue) Validate() error {
	return validateFloat("saturation", float64(v), MinSaturation, MaxSaturation)
}

// WhiteValue is the state of the white channel.
type WhiteValue bool

func (v WhiteValue) PropertyName() PropertyName { return PropertyWhite }
func (v WhiteValue) Value() any                 { return bool(v) }
func (v WhiteValue) Validate() error            { return nil }

func validateFloat(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return errors.InvalidInputf("%s must be between %g and %g, got %g", name, lo, hi, v)
	}
	return nil
}

// ParseValue checks that raw has the format declared for the property and
// returns the validated typed value. Booleans are required for on and white,
// integers for brightness and floats for hue and saturation.
func ParseValue(name PropertyName, raw any) (PropertyValue, error) {
	var v PropertyValue
	switch name {
	case PropertyOn, PropertyWhite:
		b, ok := raw.(bool)
		if !ok {
			return nil, formatError(name, "a boolean", raw)
		}
		if name == PropertyOn {
			v = OnValue(b)
		} else {
			v = WhiteValue(b)
		}
	case PropertyBrightness:
		i, ok := asInt(raw)
		if !ok {
			return nil, formatError(name, "an integer", raw)
		}
		v = BrightnessValue(i)
	case PropertyHue, PropertySaturation:
		f, ok := asFloat(raw)
		if !ok {
			return nil, formatError(name, "a number", raw)
		}
		if name == PropertyHue {
			v = HueValue(f)
		} else {
			v = SaturationValue(f)
		}
	default:
		return nil, errors.InvalidInputf("unknown property %q", string(name))
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// ValidateProperty validates if the provided property name is known.
func ValidateProperty(name PropertyName) error {
	switch name {
	case PropertyOn, PropertyBrightness, PropertyHue, PropertySaturation, PropertyWhite:
		return nil
	default:
		return errors.InvalidInputf("unknown property %q", string(name))
	}
}

func formatError(name PropertyName, want string, raw any) error {
	return errors.InvalidInputf("%s must be %s, got %s", name, want, fmt.Sprintf("%T", raw))
}

func asInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	}
	return 0, false
}

func asFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
