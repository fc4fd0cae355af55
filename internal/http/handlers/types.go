// Package handlers provides typed Huma request/response structs and handler
// implementations for the ledstripd HTTP API.
package handlers

import (
	"github.com/jmylchreest/ledstripd/pkg/strip"
)

// --- Strip types ---

// HSIResponse is a hue/saturation/intensity triple.
type HSIResponse struct {
	Hue        float64 `json:"hue" doc:"Hue in degrees (0-360)"`
	Saturation float64 `json:"saturation" doc:"Saturation in percent (0-100)"`
	Intensity  float64 `json:"intensity" doc:"Intensity in percent (0-100)"`
}

// TargetResponse is the requested light state.
type TargetResponse struct {
	On         bool    `json:"on" doc:"Whether the RGB channels are on"`
	Hue        float64 `json:"hue" doc:"Target hue in degrees (0-360)"`
	Saturation float64 `json:"saturation" doc:"Target saturation in percent (0-100)"`
	Brightness int     `json:"brightness" doc:"Target brightness in percent (0-100)"`
}

// StripResponse is the API representation of the strip.
type StripResponse struct {
	ID           string         `json:"id" doc:"Unique strip identifier"`
	Name         string         `json:"name" doc:"Display name of the strip"`
	Model        string         `json:"model" doc:"Model name"`
	SerialNumber string         `json:"serial_number" doc:"Serial number"`
	Firmware     string         `json:"firmware" doc:"Daemon version"`
	Target       TargetResponse `json:"target" doc:"Requested state"`
	Current      HSIResponse    `json:"current" doc:"State most recently written to the output"`
	Color        string         `json:"color" doc:"Current output color as #rrggbb"`
	White        bool           `json:"white" doc:"Whether the white channel is on"`
	Animating    bool           `json:"animating" doc:"Whether a transition is in progress"`
}

// StripFromState converts a strip.State to a StripResponse.
func StripFromState(s strip.State) StripResponse {
	return StripResponse{
		ID:           s.Info.ID,
		Name:         s.Info.Name,
		Model:        s.Info.Model,
		SerialNumber: s.Info.SerialNumber,
		Firmware:     s.Info.Firmware,
		Target: TargetResponse{
			On:         s.Target.On,
			Hue:        s.Target.Hue,
			Saturation: s.Target.Saturation,
			Brightness: int(s.Target.Brightness),
		},
		Current: HSIResponse{
			Hue:        s.Current.Hue,
			Saturation: s.Current.Saturation,
			Intensity:  s.Current.Intensity,
		},
		Color:     s.Color,
		White:     s.White,
		Animating: s.Running,
	}
}

// --- Common response types ---

// StatusResponse is a simple status response.
type StatusResponse struct {
	Status string `json:"status" doc:"Operation status"`
}
