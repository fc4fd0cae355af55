package strip

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/jmylchreest/ledstripd/internal/events"
	"github.com/jmylchreest/ledstripd/pkg/color"
	"github.com/jmylchreest/ledstripd/pkg/output"
)

const (
	// DefaultInterval is the period between animation ticks.
	DefaultInterval = 15 * time.Millisecond

	// IdentifyBlinks is the number of on/off cycles of the identify sequence.
	IdentifyBlinks = 9

	// DefaultIdentifyPeriod is how long each half of an identify blink lasts.
	DefaultIdentifyPeriod = 100 * time.Millisecond
)

// SchedulerConfig configures a Scheduler. Zero values select the defaults.
type SchedulerConfig struct {
	Interval       time.Duration
	IdentifyPeriod time.Duration
	Clock          clock.WithTicker
}

// Scheduler drives an Engine. It is Running while the engine has not
// converged and Parked otherwise; a parked scheduler blocks until Wake or
// Identify is called and does no work.
//
// Run is the only goroutine that touches the engine's sink, identify
// sequences included.
type Scheduler struct {
	engine *Engine
	sink   output.Sink
	logger *slog.Logger
	bus    *events.Bus

	clock          clock.WithTicker
	interval       time.Duration
	identifyPeriod time.Duration

	wake     chan struct{}
	identify chan struct{}
	stop     atomic.Bool
	running  atomic.Bool
}

// NewScheduler creates a scheduler for engine.
func NewScheduler(logger *slog.Logger, engine *Engine, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.IdentifyPeriod <= 0 {
		cfg.IdentifyPeriod = DefaultIdentifyPeriod
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	s := &Scheduler{
		engine:         engine,
		sink:           engine.sink,
		logger:         logger,
		clock:          cfg.Clock,
		interval:       cfg.Interval,
		identifyPeriod: cfg.IdentifyPeriod,
		wake:           make(chan struct{}, 1),
		identify:       make(chan struct{}, 1),
	}
	// The first pass animates from the initial current state to the target.
	s.running.Store(true)
	return s
}

// SetEventBus sets the bus animation transitions are published on.
func (s *Scheduler) SetEventBus(bus *events.Bus) {
	s.bus = bus
}

// Wake moves a parked scheduler to Running. Waking a running scheduler is a
// no-op and never blocks.
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Identify requests the identify blink sequence. Requests made while a
// sequence is pending are coalesced.
func (s *Scheduler) Identify() {
	select {
	case s.identify <- struct{}{}:
	default:
	}
}

// RequestStop asks Run to return at the next iteration boundary.
func (s *Scheduler) RequestStop() {
	s.stop.Store(true)
	s.Wake()
}

// Running reports whether the scheduler is actively ticking.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Run executes the animation loop until ctx is cancelled or RequestStop is
// called.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("strip: animation scheduler started", "interval", s.interval)
	defer func() {
		s.running.Store(false)
		s.logger.Info("strip: animation scheduler stopped")
	}()

	for !s.stopped(ctx) {
		if s.running.Load() {
			s.animate(ctx)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			if s.stopped(ctx) {
				return
			}
			if s.engine.AtRest() {
				s.logger.Debug("strip: woken at rest, staying parked")
				continue
			}
			s.running.Store(true)
		case <-s.identify:
			s.blink(ctx)
			s.engine.Emit()
		}
	}
}

// animate ticks the engine until it converges, then parks.
func (s *Scheduler) animate(ctx context.Context) {
	s.logger.Debug("strip: animation started", "current", s.engine.Current(), "target", s.engine.effective())
	s.bus.Emit(events.StripAnimationStarted, s.engine.Current())

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.identify:
			s.blink(ctx)
			continue
		case <-s.wake:
			// already running; only a stop request matters here
			if s.stopped(ctx) {
				return
			}
			continue
		case <-ticker.C():
		}
		if s.stopped(ctx) {
			return
		}

		ticks++
		if s.engine.Tick() {
			s.running.Store(false)
			c := s.engine.Color()
			s.logger.Debug("strip: animation parked", "ticks", ticks, "color", color.Hex(c))
			s.bus.Emit(events.StripAnimationParked, map[string]any{
				"state": s.engine.Current(),
				"color": color.Hex(c),
				"ticks": ticks,
			})
			return
		}
	}
}

// blink plays the identify sequence. The caller restores the strip color.
func (s *Scheduler) blink(ctx context.Context) {
	s.logger.Info("strip: identify")
	s.bus.Emit(events.StripIdentify, map[string]any{"blinks": IdentifyBlinks})

	for i := 0; i < IdentifyBlinks; i++ {
		for _, c := range [2]color.Color{color.Pink, color.Black} {
			s.sink.WriteColor(c)
			select {
			case <-ctx.Done():
				return
			case <-s.clock.After(s.identifyPeriod):
			}
		}
	}
}

func (s *Scheduler) stopped(ctx context.Context) bool {
	return s.stop.Load() || ctx.Err() != nil
}
