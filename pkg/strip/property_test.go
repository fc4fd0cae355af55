package strip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    PropertyName
		raw     any
		want    PropertyValue
		wantErr bool
	}{
		{PropertyOn, true, OnValue(true), false},
		{PropertyOn, "yes", nil, true},
		{PropertyWhite, false, WhiteValue(false), false},
		{PropertyBrightness, 100, BrightnessValue(100), false},
		{PropertyBrightness, uint8(7), BrightnessValue(7), false},
		{PropertyBrightness, 12.0, nil, true},
		{PropertyHue, 360.0, HueValue(360), false},
		{PropertyHue, 0.0, HueValue(0), false},
		{PropertySaturation, 99.5, SaturationValue(99.5), false},
		{PropertySaturation, -0.1, nil, true},
		{"color", "#fff", nil, true},
	}
	for _, tc := range tests {
		t.Run(string(tc.name), func(t *testing.T) {
			got, err := ParseValue(tc.name, tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.name, got.PropertyName())
		})
	}
}

func TestValidateProperty(t *testing.T) {
	for _, p := range []PropertyName{PropertyOn, PropertyBrightness, PropertyHue, PropertySaturation, PropertyWhite} {
		assert.NoError(t, ValidateProperty(p))
	}
	assert.Error(t, ValidateProperty("temperature"))
}

func TestBrightnessValueValidate(t *testing.T) {
	assert.NoError(t, BrightnessValue(0).Validate())
	assert.NoError(t, BrightnessValue(100).Validate())
	assert.EqualError(t, BrightnessValue(101).Validate(), "brightness must be between 0 and 100, got 101: invalid input")
}
