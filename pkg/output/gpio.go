package output

import (
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/jmylchreest/ledstripd/internal/errors"
)

// DefaultGPIORoot is the sysfs GPIO class directory.
const DefaultGPIORoot = "/sys/class/gpio"

// GPIOSwitch drives a sysfs GPIO line as a binary output.
type GPIOSwitch struct {
	logger *slog.Logger
	value  string
}

// NewGPIOSwitch exports pin under root and configures it as an output.
func NewGPIOSwitch(logger *slog.Logger, root string, pin int) (*GPIOSwitch, error) {
	if root == "" {
		root = DefaultGPIORoot
	}
	dir := filepath.Join(root, "gpio"+strconv.Itoa(pin))
	if err := export(filepath.Join(root, "export"), dir, pin); err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(dir, "direction"), "out"); err != nil {
		return nil, errors.OutputUnavailablef("failed to configure gpio%d as output (%v)", pin, err)
	}
	logger.Info("output: gpio switch ready", "pin", pin)
	return &GPIOSwitch{logger: logger, value: filepath.Join(dir, "value")}, nil
}

// WriteSwitch drives the line high when on.
func (g *GPIOSwitch) WriteSwitch(on bool) {
	v := "0"
	if on {
		v = "1"
	}
	if err := writeFile(g.value, v); err != nil {
		g.logger.Error("output: gpio write failed", "path", g.value, "error", err)
	}
}
