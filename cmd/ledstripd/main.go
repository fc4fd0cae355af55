package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nickysemenza/gola"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/ledstripd/internal/config"
	"github.com/jmylchreest/ledstripd/internal/errors"
	"github.com/jmylchreest/ledstripd/internal/http/handlers"
	"github.com/jmylchreest/ledstripd/internal/logging"
	"github.com/jmylchreest/ledstripd/internal/server"
	"github.com/jmylchreest/ledstripd/pkg/output"
	"github.com/jmylchreest/ledstripd/pkg/strip"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// olaDial connects to an OLA daemon.
var olaDial = func(addr string) (output.OLAClient, error) {
	c, err := gola.New(addr)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	// Set up Viper for command line overrides
	v := viper.New()

	pflag.String("log-level", config.LogLevelInfo, "Log level (debug, info, warn, error)")
	pflag.String("log-format", config.LogFormatText, "Log format (text, json)")
	pflag.String("config", "", "Path to config file")
	pflag.Parse()

	v.BindPFlag("logging.level", pflag.Lookup("log-level"))
	v.BindPFlag("logging.format", pflag.Lookup("log-format"))
	v.BindPFlag("config", pflag.Lookup("config"))

	cfg, err := config.Load(config.DaemonConfigFilename, v.GetString("config"))
	if err != nil {
		logging.SetupErrorLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, v, pflag.CommandLine)

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logging.SetAsDefaultLogger(logger.Logger)

	logger.Info("Starting ledstripd",
		"version", version,
		"commit", commit,
		"buildDate", buildDate,
	)

	if err := run(logger, cfg); err != nil {
		logger.Error("ledstripd failed", "error", err)
		os.Exit(1)
	}
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(cfg *config.Config, v *viper.Viper, flags *pflag.FlagSet) {
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if f := flags.Lookup("log-format"); f != nil && f.Changed {
		cfg.Logging.Format = v.GetString("logging.format")
	}
}

func run(logger *logging.Logger, cfg *config.Config) error {
	created, err := ensureStripID(cfg)
	if err != nil {
		return err
	}
	if created {
		logger.Info("Generated strip ID", "id", cfg.Strip.ID)
	}

	outputs, err := newOutputs(logger.Logger, cfg.Output)
	if err != nil {
		return err
	}
	defer outputs.Close()

	acc, scheduler, err := newStrip(logger.Logger, cfg, outputs)
	if err != nil {
		return err
	}

	srv := server.New(logger, cfg, acc, scheduler, handlers.VersionHandler{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := cfg.Watch(ctx, logger.Logger, func(updated *config.Config) {
			if err := logger.SetLevel(updated.Logging.Level); err != nil {
				logger.Warn("Ignoring invalid log level from config file", "level", updated.Logging.Level, "error", err)
			}
		})
		if err != nil {
			logger.Warn("Config file watch unavailable", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("error stopping server: %w", err)
	}
	return nil
}

// ensureStripID assigns and persists a strip ID on first start.
func ensureStripID(cfg *config.Config) (bool, error) {
	if cfg.Strip.ID != "" {
		return false, nil
	}
	cfg.Strip.ID = uuid.NewString()
	if err := cfg.Save(); err != nil {
		return false, fmt.Errorf("failed to persist strip ID: %w", err)
	}
	return true, nil
}

// outputs holds the opened RGB sink and white switch.
type outputs struct {
	sink   output.Sink
	white  output.Switch
	closer func()
}

func (o *outputs) Close() {
	if o.closer != nil {
		o.closer()
	}
}

func newOutputs(logger *slog.Logger, cfg config.OutputConfig) (*outputs, error) {
	o := &outputs{}

	switch cfg.Driver {
	case config.OutputDriverLog, "":
		o.sink = output.NewLogSink(logger)
	case config.OutputDriverPWM:
		if len(cfg.PWM.Channels) != 3 {
			return nil, fmt.Errorf("output.pwm.channels needs 3 entries, got %d", len(cfg.PWM.Channels))
		}
		sink, err := output.NewPWMSink(logger, output.PWMConfig{
			Chip:     cfg.PWM.Chip,
			Period:   cfg.PWM.PeriodNS,
			Channels: [3]int{cfg.PWM.Channels[0], cfg.PWM.Channels[1], cfg.PWM.Channels[2]},
		})
		if err != nil {
			return nil, err
		}
		o.sink = sink
	case config.OutputDriverOLA:
		client, err := olaDial(cfg.OLA.Address)
		if err != nil {
			return nil, errors.OutputUnavailablef("could not connect to OLA at %s (%v)", cfg.OLA.Address, err)
		}
		sink, err := output.NewDMXSink(logger, client, output.DMXConfig{
			Universe:     cfg.OLA.Universe,
			StartChannel: cfg.OLA.StartChannel,
		})
		if err != nil {
			client.Close()
			return nil, err
		}
		o.sink = sink
		o.closer = sink.Close
	default:
		return nil, fmt.Errorf("unknown output driver %q", cfg.Driver)
	}

	switch {
	case cfg.WhiteGPIO >= 0:
		sw, err := output.NewGPIOSwitch(logger, output.DefaultGPIORoot, cfg.WhiteGPIO)
		if err != nil {
			o.Close()
			return nil, err
		}
		o.white = sw
	case cfg.Driver == config.OutputDriverLog || cfg.Driver == "":
		o.white = output.NewLogSwitch(logger)
	default:
		o.white = output.NopSwitch{}
	}

	logger.Info("output: configured", "driver", cfg.Driver, "white_gpio", cfg.WhiteGPIO)
	return o, nil
}

// newStrip wires target, engine, scheduler and accessory. The strip starts
// black and fades to the configured initial target.
func newStrip(logger *slog.Logger, cfg *config.Config, o *outputs) (*strip.Accessory, *strip.Scheduler, error) {
	initial := cfg.Strip.Initial
	if err := validateInitial(initial); err != nil {
		return nil, nil, fmt.Errorf("invalid strip.initial: %w", err)
	}

	target := strip.NewTarget(strip.TargetState{
		On:         initial.On,
		Hue:        initial.Hue,
		Saturation: initial.Saturation,
		Brightness: initial.Brightness,
	})
	engine := strip.NewEngine(target, o.sink, strip.Steps{
		Hue:        cfg.Strip.Steps.Hue,
		Saturation: cfg.Strip.Steps.Saturation,
		Intensity:  cfg.Strip.Steps.Brightness,
	}, strip.HSI{})
	scheduler := strip.NewScheduler(logger, engine, strip.SchedulerConfig{
		Interval: config.ValidateFadeInterval(cfg.Strip.FadeInterval),
	})

	info := strip.Info{
		ID:           cfg.Strip.ID,
		Name:         cfg.Strip.Name,
		Manufacturer: "ledstripd",
		Model:        config.DefaultStripName,
		SerialNumber: cfg.Strip.ID,
		Firmware:     version,
	}
	return strip.NewAccessory(logger, info, target, engine, scheduler, o.white), scheduler, nil
}

func validateInitial(s config.InitialState) error {
	if s.Brightness != float64(int(s.Brightness)) {
		return fmt.Errorf("brightness must be an integer, got %g", s.Brightness)
	}
	checks := []struct {
		name strip.PropertyName
		v    any
	}{
		{strip.PropertyBrightness, int(s.Brightness)},
		{strip.PropertyHue, s.Hue},
		{strip.PropertySaturation, s.Saturation},
	}
	for _, c := range checks {
		if _, err := strip.ParseValue(c.name, c.v); err != nil {
			return err
		}
	}
	return nil
}
