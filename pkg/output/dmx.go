package output

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/ledstripd/internal/errors"
	"github.com/jmylchreest/ledstripd/pkg/color"
)

// universeSize is the number of channels in a DMX512 universe.
const universeSize = 512

// OLAClient is the subset of the OLA client used to send DMX frames.
type OLAClient interface {
	SendDmx(universe int, values []byte) (status bool, err error)
	Close()
}

// DMXConfig places the red, green and blue channels in a DMX universe.
type DMXConfig struct {
	Universe int
	// StartChannel is the 1-based address of the red channel; green and
	// blue follow it.
	StartChannel int
}

// DMXSink sends colors to an OLA daemon as 8-bit DMX levels.
type DMXSink struct {
	logger *slog.Logger
	client OLAClient
	cfg    DMXConfig

	mu     sync.Mutex
	values []byte
}

// NewDMXSink creates a sink writing through client.
func NewDMXSink(logger *slog.Logger, client OLAClient, cfg DMXConfig) (*DMXSink, error) {
	if cfg.StartChannel < 1 || cfg.StartChannel+2 > universeSize {
		return nil, errors.InvalidInputf("dmx start channel %d not in range 1-%d", cfg.StartChannel, universeSize-2)
	}
	return &DMXSink{
		logger: logger,
		client: client,
		cfg:    cfg,
		values: make([]byte, cfg.StartChannel+2),
	}, nil
}

// WriteColor sends a frame with the three channels set.
func (s *DMXSink) WriteColor(c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.cfg.StartChannel - 1
	s.values[base] = color.Scale8(c.R)
	s.values[base+1] = color.Scale8(c.G)
	s.values[base+2] = color.Scale8(c.B)

	if _, err := s.client.SendDmx(s.cfg.Universe, s.values); err != nil {
		s.logger.Error("output: dmx send failed", "universe", s.cfg.Universe, "error", err)
	}
}

// Close closes the OLA connection.
func (s *DMXSink) Close() {
	s.client.Close()
}
