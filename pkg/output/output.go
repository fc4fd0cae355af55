// Package output contains the drivers that push colors to physical light
// channels. Drivers are infallible from the caller's point of view: I/O
// failures are logged and the next write is attempted as usual.
package output

import (
	"log/slog"

	"github.com/jmylchreest/ledstripd/pkg/color"
)

// Sink receives one color per animation tick.
type Sink interface {
	WriteColor(c color.Color)
}

// Switch drives a binary output such as a white-only channel.
type Switch interface {
	WriteSwitch(on bool)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(c color.Color)

// WriteColor calls f(c).
func (f SinkFunc) WriteColor(c color.Color) { f(c) }

// MultiSink fans a color out to several sinks in order.
type MultiSink []Sink

// WriteColor writes c to every sink.
func (m MultiSink) WriteColor(c color.Color) {
	for _, s := range m {
		s.WriteColor(c)
	}
}

// LogSink writes colors to a logger at debug level. It is used when no
// hardware is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// WriteColor logs c with its 16-bit channel values.
func (s *LogSink) WriteColor(c color.Color) {
	s.logger.Debug("output: color",
		"hex", color.Hex(c),
		"r", color.Scale16(c.R),
		"g", color.Scale16(c.G),
		"b", color.Scale16(c.B),
	)
}

// NopSwitch ignores every write.
type NopSwitch struct{}

// WriteSwitch does nothing.
func (NopSwitch) WriteSwitch(bool) {}

// LogSwitch logs switch changes at debug level.
type LogSwitch struct {
	logger *slog.Logger
}

// NewLogSwitch creates a LogSwitch.
func NewLogSwitch(logger *slog.Logger) *LogSwitch {
	return &LogSwitch{logger: logger}
}

// WriteSwitch logs the new switch state.
func (s *LogSwitch) WriteSwitch(on bool) {
	s.logger.Debug("output: switch", "on", on)
}
