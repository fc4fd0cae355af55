package strip

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/jmylchreest/ledstripd/internal/events"
	"github.com/jmylchreest/ledstripd/pkg/color"
)

const waitFor = 2 * time.Second

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type schedulerFixture struct {
	target    *Target
	sink      *recordingSink
	engine    *Engine
	scheduler *Scheduler
	clock     *testingclock.FakeClock
	cancel    context.CancelFunc
	done      chan struct{}
}

func newSchedulerFixture(t *testing.T, ts TargetState, current HSI) *schedulerFixture {
	t.Helper()
	f := &schedulerFixture{
		target: NewTarget(ts),
		sink:   &recordingSink{},
		clock:  testingclock.NewFakeClock(time.Now()),
		done:   make(chan struct{}),
	}
	f.engine = NewEngine(f.target, f.sink, DefaultSteps(), current)
	f.scheduler = NewScheduler(testLogger(), f.engine, SchedulerConfig{Clock: f.clock})
	return f
}

func (f *schedulerFixture) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	go func() {
		defer close(f.done)
		f.scheduler.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-f.done
	})
}

// stepUntil advances the fake clock one interval at a time until cond holds.
func (f *schedulerFixture) stepUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		if cond() {
			return true
		}
		f.clock.Step(DefaultInterval)
		return false
	}, waitFor, time.Millisecond)
}

func (f *schedulerFixture) parked() bool {
	return !f.scheduler.Running()
}

func TestSchedulerRunsToRestAndParks(t *testing.T) {
	f := newSchedulerFixture(t,
		TargetState{On: true, Hue: 0, Saturation: 100, Brightness: 100},
		HSI{Hue: 0, Saturation: 100, Intensity: 0})
	require.True(t, f.scheduler.Running(), "scheduler starts running")
	f.start(t)

	f.stepUntil(t, f.parked)

	assert.Equal(t, HSI{Hue: 0, Saturation: 100, Intensity: 100}, f.engine.Current())
	assert.Equal(t, 100, f.sink.Len())

	// parked: stepping the clock produces nothing
	for i := 0; i < 10; i++ {
		f.clock.Step(DefaultInterval)
	}
	assert.Never(t, func() bool { return f.sink.Len() != 100 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSchedulerWakeResumesAnimation(t *testing.T) {
	f := newSchedulerFixture(t,
		TargetState{On: true, Hue: 0, Saturation: 100, Brightness: 50},
		HSI{Hue: 0, Saturation: 100, Intensity: 48})
	f.start(t)

	f.stepUntil(t, f.parked)
	require.Equal(t, 2, f.sink.Len())

	f.target.setBrightness(52)
	f.scheduler.Wake()
	f.scheduler.Wake() // idempotent

	require.Eventually(t, f.scheduler.Running, waitFor, time.Millisecond)
	f.stepUntil(t, f.parked)
	assert.Equal(t, 52.0, f.engine.Current().Intensity)
	assert.Equal(t, 4, f.sink.Len())
}

func TestSchedulerWakeAtRestStaysParked(t *testing.T) {
	f := newSchedulerFixture(t,
		TargetState{On: true, Hue: 30, Saturation: 50, Brightness: 50},
		HSI{Hue: 30, Saturation: 50, Intensity: 49})
	f.start(t)

	f.stepUntil(t, f.parked)

	f.scheduler.Wake()
	assert.Never(t, f.scheduler.Running, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 1, f.sink.Len())
}

func TestSchedulerRequestStop(t *testing.T) {
	f := newSchedulerFixture(t,
		TargetState{On: true, Saturation: 100, Brightness: 100},
		HSI{Saturation: 100})

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.scheduler.Run(context.Background())
	}()

	f.stepUntil(t, func() bool { return f.sink.Len() > 0 })
	f.scheduler.RequestStop()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("scheduler did not stop")
	}
	assert.False(t, f.scheduler.Running())

	frames := f.sink.Len()
	assert.Less(t, frames, 100)
	f.clock.Step(DefaultInterval)
	assert.Equal(t, frames, f.sink.Len())
}

func TestSchedulerRequestStopWhileParked(t *testing.T) {
	f := newSchedulerFixture(t,
		TargetState{On: false},
		HSI{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.scheduler.Run(context.Background())
	}()

	f.stepUntil(t, f.parked)
	f.scheduler.RequestStop()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("parked scheduler did not stop")
	}
}

func TestSchedulerIdentify(t *testing.T) {
	target := NewTarget(TargetState{On: true, Hue: 120, Saturation: 100, Brightness: 100})
	sink := &recordingSink{}
	engine := NewEngine(target, sink, DefaultSteps(), HSI{Hue: 120, Saturation: 100, Intensity: 99})
	scheduler := NewScheduler(testLogger(), engine, SchedulerConfig{
		Interval:       time.Millisecond,
		IdentifyPeriod: time.Millisecond,
	})

	bus := events.NewBus()
	var mu sync.Mutex
	var got []events.EventType
	bus.Subscribe(func(e events.Event) {
		mu.Lock()
		got = append(got, e.Type)
		mu.Unlock()
	})
	scheduler.SetEventBus(bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		scheduler.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return !scheduler.Running() }, waitFor, time.Millisecond)
	require.Equal(t, 1, sink.Len())

	scheduler.Identify()

	want := 1 + 2*IdentifyBlinks + 1
	require.Eventually(t, func() bool { return sink.Len() == want }, waitFor, time.Millisecond)

	colors := sink.Colors()
	for i := 0; i < IdentifyBlinks; i++ {
		assert.Equal(t, color.Pink, colors[1+2*i])
		assert.Equal(t, color.Black, colors[2+2*i])
	}
	// the strip color is restored afterwards
	assert.Equal(t, color.HSIToRGB(120, 100, 100), colors[want-1])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.EventType{
		events.StripAnimationStarted,
		events.StripAnimationParked,
		events.StripIdentify,
	}, got)
}
