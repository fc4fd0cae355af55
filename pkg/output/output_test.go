package output

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	lserrors "github.com/jmylchreest/ledstripd/internal/errors"
	"github.com/jmylchreest/ledstripd/pkg/color"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) WriteColor(c color.Color) {
	m.Called(c)
}

type mockOLA struct {
	mock.Mock
}

func (m *mockOLA) SendDmx(universe int, values []byte) (bool, error) {
	// copy, the sink reuses its buffer
	args := m.Called(universe, append([]byte(nil), values...))
	return args.Bool(0), args.Error(1)
}

func (m *mockOLA) Close() {
	m.Called()
}

func TestMultiSink(t *testing.T) {
	a, b := &mockSink{}, &mockSink{}
	a.On("WriteColor", color.Pink).Once()
	b.On("WriteColor", color.Pink).Once()

	MultiSink{a, b}.WriteColor(color.Pink)

	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestSinkFunc(t *testing.T) {
	var got color.Color
	SinkFunc(func(c color.Color) { got = c }).WriteColor(color.Pink)
	assert.Equal(t, color.Pink, got)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewLogSink(logger).WriteColor(color.Pink)

	out := buf.String()
	assert.Contains(t, out, "hex=#ff007f")
	assert.Contains(t, out, "r=65535")
	assert.Contains(t, out, "g=0")
}

func fakePWMChip(t *testing.T, channels ...int) string {
	t.Helper()
	chip := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(chip, "export"), nil, 0o644))
	for _, ch := range channels {
		require.NoError(t, os.MkdirAll(filepath.Join(chip, "pwm"+strconv.Itoa(ch)), 0o755))
	}
	return chip
}

func readTrimmed(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(bytes.TrimSpace(b))
}

func TestPWMSink(t *testing.T) {
	chip := fakePWMChip(t, 0, 1, 2)

	s, err := NewPWMSink(discardLogger(), PWMConfig{Chip: chip, Period: 65535, Channels: [3]int{0, 1, 2}})
	require.NoError(t, err)

	for _, ch := range []string{"pwm0", "pwm1", "pwm2"} {
		assert.Equal(t, "65535", readTrimmed(t, filepath.Join(chip, ch, "period")))
		assert.Equal(t, "1", readTrimmed(t, filepath.Join(chip, ch, "enable")))
		assert.Equal(t, "0", readTrimmed(t, filepath.Join(chip, ch, "duty_cycle")))
	}

	s.WriteColor(color.Color{R: 1, G: 0.5, B: 0})
	assert.Equal(t, "65535", readTrimmed(t, filepath.Join(chip, "pwm0", "duty_cycle")))
	assert.Equal(t, "32768", readTrimmed(t, filepath.Join(chip, "pwm1", "duty_cycle")))
	assert.Equal(t, "0", readTrimmed(t, filepath.Join(chip, "pwm2", "duty_cycle")))
}

func TestPWMSinkExportsMissingChannel(t *testing.T) {
	chip := fakePWMChip(t)

	// export is a plain file here so the channel directory never appears
	_, err := NewPWMSink(discardLogger(), PWMConfig{Chip: chip, Channels: [3]int{3, 4, 5}})
	require.Error(t, err)
	assert.True(t, lserrors.IsOutputUnavailable(err))
	assert.Equal(t, "3", readTrimmed(t, filepath.Join(chip, "export")))
}

func TestDutyCycle(t *testing.T) {
	assert.Equal(t, uint64(0), DutyCycle(0, DefaultPWMPeriod))
	assert.Equal(t, uint64(DefaultPWMPeriod), DutyCycle(0xFFFF, DefaultPWMPeriod))
	assert.Equal(t, uint64(499992), DutyCycle(0x7FFF, DefaultPWMPeriod))
}

func TestGPIOSwitch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gpio17"), 0o755))

	g, err := NewGPIOSwitch(discardLogger(), root, 17)
	require.NoError(t, err)
	assert.Equal(t, "out", readTrimmed(t, filepath.Join(root, "gpio17", "direction")))

	g.WriteSwitch(true)
	assert.Equal(t, "1", readTrimmed(t, filepath.Join(root, "gpio17", "value")))
	g.WriteSwitch(false)
	assert.Equal(t, "0", readTrimmed(t, filepath.Join(root, "gpio17", "value")))
}

func TestDMXSink(t *testing.T) {
	client := &mockOLA{}
	s, err := NewDMXSink(discardLogger(), client, DMXConfig{Universe: 2, StartChannel: 4})
	require.NoError(t, err)

	client.On("SendDmx", 2, []byte{0, 0, 0, 255, 0, 127}).Return(true, nil).Once()
	s.WriteColor(color.Pink)

	client.On("SendDmx", 2, []byte{0, 0, 0, 0, 0, 0}).Return(false, errors.New("olad gone")).Once()
	assert.NotPanics(t, func() { s.WriteColor(color.Black) })

	client.On("Close").Once()
	s.Close()

	client.AssertExpectations(t)
}

func TestGPIOSwitchUnavailable(t *testing.T) {
	// no export file and no gpio directory
	_, err := NewGPIOSwitch(discardLogger(), filepath.Join(t.TempDir(), "missing"), 4)
	require.Error(t, err)
	assert.True(t, lserrors.IsOutputUnavailable(err))
}

func TestDMXSinkStartChannel(t *testing.T) {
	_, err := NewDMXSink(discardLogger(), &mockOLA{}, DMXConfig{StartChannel: 0})
	assert.True(t, lserrors.IsInvalidInput(err))
	_, err = NewDMXSink(discardLogger(), &mockOLA{}, DMXConfig{StartChannel: 511})
	assert.Error(t, err)
	_, err = NewDMXSink(discardLogger(), &mockOLA{}, DMXConfig{StartChannel: 510})
	assert.NoError(t, err)
}

func TestSwitches(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewLogSwitch(logger).WriteSwitch(true)
	assert.Contains(t, buf.String(), "on=true")

	assert.NotPanics(t, func() { NopSwitch{}.WriteSwitch(true) })
}
