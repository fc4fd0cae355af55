package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/ledstripd/internal/errors"
	"github.com/jmylchreest/ledstripd/pkg/strip"
)

// StripController is the subset of strip.Accessory used by the handlers.
type StripController interface {
	State() strip.State
	Apply(v strip.PropertyValue)
	Identify()
}

// --- Get Strip ---

// GetStripInput is the input for reading the strip.
type GetStripInput struct{}

// GetStripOutput is the output for reading the strip.
type GetStripOutput struct {
	Body StripResponse
}

// --- Set Strip State ---

// SetStripStateInput is the input for changing the target state. Omitted
// fields are left unchanged.
type SetStripStateInput struct {
	Body struct {
		On         *bool    `json:"on,omitempty" doc:"Power state of the RGB channels"`
		Brightness *int     `json:"brightness,omitempty" doc:"Brightness level (0-100); a positive value turns the strip on"`
		Hue        *float64 `json:"hue,omitempty" doc:"Hue in degrees (0-360); turns the strip on"`
		Saturation *float64 `json:"saturation,omitempty" doc:"Saturation in percent (0-100); turns the strip on"`
		White      *bool    `json:"white,omitempty" doc:"State of the white channel"`
	}
}

// SetStripStateOutput is the output after changing the target state.
type SetStripStateOutput struct {
	Body StripResponse
}

// --- Identify ---

// IdentifyInput is the input for the identify endpoint.
type IdentifyInput struct{}

// IdentifyOutput is the output for the identify endpoint.
type IdentifyOutput struct {
	Body StatusResponse
}

// StripHandler implements strip HTTP handlers.
type StripHandler struct {
	Strip StripController
}

// GetStrip returns the target, current and animation state.
func (h *StripHandler) GetStrip(_ context.Context, _ *GetStripInput) (*GetStripOutput, error) {
	return &GetStripOutput{Body: StripFromState(h.Strip.State())}, nil
}

// propertyUpdate is one raw value from a request body.
type propertyUpdate struct {
	name  strip.PropertyName
	value any
}

func (in *SetStripStateInput) updates() []propertyUpdate {
	var u []propertyUpdate
	b := in.Body
	if b.On != nil {
		u = append(u, propertyUpdate{strip.PropertyOn, *b.On})
	}
	if b.Brightness != nil {
		u = append(u, propertyUpdate{strip.PropertyBrightness, *b.Brightness})
	}
	if b.Hue != nil {
		u = append(u, propertyUpdate{strip.PropertyHue, *b.Hue})
	}
	if b.Saturation != nil {
		u = append(u, propertyUpdate{strip.PropertySaturation, *b.Saturation})
	}
	if b.White != nil {
		u = append(u, propertyUpdate{strip.PropertyWhite, *b.White})
	}
	return u
}

// SetStripState validates every supplied property and applies them. Nothing
// is applied when any value is rejected.
func (h *StripHandler) SetStripState(_ context.Context, input *SetStripStateInput) (*SetStripStateOutput, error) {
	updates := input.updates()
	if len(updates) == 0 {
		return nil, huma.Error400BadRequest("no properties supplied")
	}

	values := make([]strip.PropertyValue, 0, len(updates))
	for _, u := range updates {
		v, err := strip.ParseValue(u.name, u.value)
		if err != nil {
			return nil, huma.NewError(errors.HTTPStatus(err), err.Error())
		}
		values = append(values, v)
	}
	for _, v := range values {
		h.Strip.Apply(v)
	}

	return &SetStripStateOutput{Body: StripFromState(h.Strip.State())}, nil
}

// Identify starts the identify blink sequence.
func (h *StripHandler) Identify(_ context.Context, _ *IdentifyInput) (*IdentifyOutput, error) {
	h.Strip.Identify()
	return &IdentifyOutput{Body: StatusResponse{Status: "identifying"}}, nil
}

// Ensure StripHandler implements the interface at compile time.
var _ StripHandlers = (*StripHandler)(nil)

// StripHandlers defines the interface for strip operations.
type StripHandlers interface {
	GetStrip(ctx context.Context, input *GetStripInput) (*GetStripOutput, error)
	SetStripState(ctx context.Context, input *SetStripStateInput) (*SetStripStateOutput, error)
	Identify(ctx context.Context, input *IdentifyInput) (*IdentifyOutput, error)
}
