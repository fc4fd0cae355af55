package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// statusFields is the order of properties in parseable output.
var statusFields = []string{
	"id",
	"name",
	"on",
	"brightness",
	"hue",
	"saturation",
	"white",
	"color",
	"current_hue",
	"current_saturation",
	"current_intensity",
	"animating",
}

// flattenStrip turns the strip response into one level of key/values.
func flattenStrip(s map[string]any) map[string]any {
	flat := map[string]any{
		"id":        s["id"],
		"name":      s["name"],
		"white":     s["white"],
		"color":     s["color"],
		"animating": s["animating"],
	}
	if target, ok := s["target"].(map[string]any); ok {
		for _, k := range []string{"on", "brightness", "hue", "saturation"} {
			flat[k] = target[k]
		}
	}
	if current, ok := s["current"].(map[string]any); ok {
		for _, k := range []string{"hue", "saturation", "intensity"} {
			flat["current_"+k] = current[k]
		}
	}
	return flat
}

// StripParseable returns the key=value line for a strip.
func StripParseable(flat map[string]any) string {
	parts := make([]string, 0, len(statusFields))
	for _, k := range statusFields {
		switch v := flat[k].(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s=%q", k, v))
		case nil:
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}

// StripTableData returns the status table for a strip.
func StripTableData(flat map[string]any) pterm.TableData {
	state := "idle"
	if b, _ := flat["animating"].(bool); b {
		state = "fading"
	}
	return pterm.TableData{
		[]string{pterm.Bold.Sprint("ID"), pterm.Bold.Sprint(flat["id"])},
		[]string{"Name", fmt.Sprintf("%v", flat["name"])},
		[]string{"On", fmt.Sprintf("%v", flat["on"])},
		[]string{"Brightness", fmt.Sprintf("%v%%", flat["brightness"])},
		[]string{"Hue", fmt.Sprintf("%v°", flat["hue"])},
		[]string{"Saturation", fmt.Sprintf("%v%%", flat["saturation"])},
		[]string{"White", fmt.Sprintf("%v", flat["white"])},
		[]string{"Color", fmt.Sprintf("%v", flat["color"])},
		[]string{"Current", fmt.Sprintf("H %v S %v I %v", flat["current_hue"], flat["current_saturation"], flat["current_intensity"])},
		[]string{"State", state},
	}
}
