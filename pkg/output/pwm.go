package output

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmylchreest/ledstripd/internal/errors"
	"github.com/jmylchreest/ledstripd/pkg/color"
)

// DefaultPWMChip is the sysfs directory of the first PWM controller.
const DefaultPWMChip = "/sys/class/pwm/pwmchip0"

// DefaultPWMPeriod is the PWM period in nanoseconds (1 kHz).
const DefaultPWMPeriod = 1_000_000

// PWMConfig describes three sysfs PWM channels used for red, green and blue.
type PWMConfig struct {
	// Chip is the pwmchip directory, e.g. /sys/class/pwm/pwmchip0.
	Chip string
	// Period in nanoseconds.
	Period uint64
	// Channels are the pwm indexes for red, green and blue.
	Channels [3]int
}

// PWMSink writes duty cycles to Linux sysfs PWM channels.
type PWMSink struct {
	logger *slog.Logger
	cfg    PWMConfig
	duty   [3]string
}

// NewPWMSink exports and enables the configured channels.
func NewPWMSink(logger *slog.Logger, cfg PWMConfig) (*PWMSink, error) {
	if cfg.Chip == "" {
		cfg.Chip = DefaultPWMChip
	}
	if cfg.Period == 0 {
		cfg.Period = DefaultPWMPeriod
	}
	s := &PWMSink{logger: logger, cfg: cfg}
	for i, ch := range cfg.Channels {
		dir := filepath.Join(cfg.Chip, "pwm"+strconv.Itoa(ch))
		if err := export(filepath.Join(cfg.Chip, "export"), dir, ch); err != nil {
			return nil, err
		}
		if err := writeFile(filepath.Join(dir, "period"), strconv.FormatUint(cfg.Period, 10)); err != nil {
			return nil, errors.OutputUnavailablef("failed to set pwm%d period (%v)", ch, err)
		}
		if err := writeFile(filepath.Join(dir, "duty_cycle"), "0"); err != nil {
			return nil, errors.OutputUnavailablef("failed to reset pwm%d duty cycle (%v)", ch, err)
		}
		if err := writeFile(filepath.Join(dir, "enable"), "1"); err != nil {
			return nil, errors.OutputUnavailablef("failed to enable pwm%d (%v)", ch, err)
		}
		s.duty[i] = filepath.Join(dir, "duty_cycle")
	}
	logger.Info("output: pwm sink ready", "chip", cfg.Chip, "period_ns", cfg.Period, "channels", cfg.Channels)
	return s, nil
}

// WriteColor sets the duty cycle of each channel from its 16-bit level.
func (s *PWMSink) WriteColor(c color.Color) {
	for i, frac := range [3]float64{c.R, c.G, c.B} {
		duty := DutyCycle(color.Scale16(frac), s.cfg.Period)
		if err := writeFile(s.duty[i], strconv.FormatUint(duty, 10)); err != nil {
			s.logger.Error("output: pwm write failed", "path", s.duty[i], "error", err)
		}
	}
}

// DutyCycle converts a 16-bit level to nanoseconds of a period.
func DutyCycle(level uint16, period uint64) uint64 {
	return uint64(level) * period / 0xFFFF
}

// export writes ch to the export file unless dir already exists.
func export(exportPath, dir string, ch int) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := writeFile(exportPath, strconv.Itoa(ch)); err != nil {
		return errors.OutputUnavailablef("failed to export %s (%v)", dir, err)
	}
	return nil
}

func writeFile(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}
