package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the daemon configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Strip     StripConfig     `mapstructure:"strip"`
	Output    OutputConfig    `mapstructure:"output"`
	Advertise AdvertiseConfig `mapstructure:"advertise"`

	// Internal viper instance
	v *viper.Viper
}

// ServerConfig represents the socket server configuration
type ServerConfig struct {
	UnixSocket string `mapstructure:"unix_socket"`
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
	// Token protects every non-public route when set
	Token string `mapstructure:"token"`
	// RateLimit is requests per client IP per minute; 0 disables limiting
	RateLimit int `mapstructure:"rate_limit"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StripConfig describes the strip identity and animation
type StripConfig struct {
	ID           string        `mapstructure:"id"`
	Name         string        `mapstructure:"name"`
	Initial      InitialState  `mapstructure:"initial"`
	FadeInterval time.Duration `mapstructure:"fade_interval"`
	Steps        StepConfig    `mapstructure:"steps"`
}

// InitialState is the target the strip animates to at startup
type InitialState struct {
	On         bool    `mapstructure:"on"`
	Hue        float64 `mapstructure:"hue"`
	Saturation float64 `mapstructure:"saturation"`
	Brightness float64 `mapstructure:"brightness"`
}

// StepConfig holds the per-tick step sizes
type StepConfig struct {
	Hue        float64 `mapstructure:"hue"`
	Saturation float64 `mapstructure:"saturation"`
	Brightness float64 `mapstructure:"brightness"`
}

// OutputConfig selects and configures the output driver
type OutputConfig struct {
	Driver string    `mapstructure:"driver"`
	PWM    PWMConfig `mapstructure:"pwm"`
	OLA    OLAConfig `mapstructure:"ola"`
	// WhiteGPIO is the sysfs GPIO number of the white channel, -1 disables it
	WhiteGPIO int `mapstructure:"white_gpio"`
}

// PWMConfig configures the sysfs PWM driver
type PWMConfig struct {
	Chip     string `mapstructure:"chip"`
	PeriodNS uint64 `mapstructure:"period_ns"`
	Channels []int  `mapstructure:"channels"`
}

// OLAConfig configures the OLA/DMX driver
type OLAConfig struct {
	Address      string `mapstructure:"address"`
	Universe     int    `mapstructure:"universe"`
	StartChannel int    `mapstructure:"start_channel"`
}

// AdvertiseConfig configures mDNS advertisement
type AdvertiseConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// setDefaults registers every default value on v
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.unix_socket", GetRuntimeSocketPath())

	v.SetDefault("api.listen_address", DefaultAPIListenAddress)
	v.SetDefault("api.token", "")
	v.SetDefault("api.rate_limit", DefaultRateLimit)

	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)

	v.SetDefault("strip.id", "")
	v.SetDefault("strip.name", DefaultStripName)
	v.SetDefault("strip.initial.on", true)
	v.SetDefault("strip.initial.hue", 0.0)
	v.SetDefault("strip.initial.saturation", 100.0)
	v.SetDefault("strip.initial.brightness", 100.0)
	v.SetDefault("strip.fade_interval", DefaultFadeInterval)
	v.SetDefault("strip.steps.hue", 3.6)
	v.SetDefault("strip.steps.saturation", 1.0)
	v.SetDefault("strip.steps.brightness", 1.0)

	v.SetDefault("output.driver", OutputDriverLog)
	v.SetDefault("output.pwm.chip", "/sys/class/pwm/pwmchip0")
	v.SetDefault("output.pwm.period_ns", 1_000_000)
	v.SetDefault("output.pwm.channels", []int{0, 1, 2})
	v.SetDefault("output.ola.address", DefaultOLAAddress)
	v.SetDefault("output.ola.universe", 1)
	v.SetDefault("output.ola.start_channel", 1)
	v.SetDefault("output.white_gpio", -1)

	v.SetDefault("advertise.enabled", true)
	v.SetDefault("advertise.port", DefaultAdvertisePort)
}

// New creates a Config from an existing viper instance
func New(v *viper.Viper) *Config {
	setDefaults(v)
	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		slog.Warn("Failed to decode configuration, using defaults", "error", err)
	}
	return cfg
}

// Load loads configuration from a file and environment variables
func Load(configName, configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		slog.Info("Using config file from command line", "path", configFile)
	} else {
		configPath := GetConfigPath(configName)
		v.SetConfigFile(configPath)

		if err := os.MkdirAll(GetConfigBaseDir(), 0755); err != nil {
			return nil, fmt.Errorf("error creating config directory: %w", err)
		}
		if _, err := os.Stat(configPath); err == nil {
			slog.Info("Using default config file", "path", configPath)
		}
	}

	// A missing file means defaults; anything else is a broken file.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}

// Reload re-reads the config file and returns a fresh Config
func (c *Config) Reload() (*Config, error) {
	if err := c.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	cfg := &Config{v: c.v}
	if err := c.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}

// Path returns the config file in use
func (c *Config) Path() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

// Save writes the configuration to its config file
func (c *Config) Save() error {
	configPath := c.Path()
	if configPath == "" {
		configPath = GetDaemonConfigPath()
		c.v.SetConfigFile(configPath)
	}

	slog.Info("Saving configuration", "path", configPath)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	c.v.Set("server.unix_socket", c.Server.UnixSocket)
	c.v.Set("api.listen_address", c.API.ListenAddress)
	c.v.Set("api.token", c.API.Token)
	c.v.Set("api.rate_limit", c.API.RateLimit)
	c.v.Set("logging.level", c.Logging.Level)
	c.v.Set("logging.format", c.Logging.Format)
	c.v.Set("strip.id", c.Strip.ID)
	c.v.Set("strip.name", c.Strip.Name)
	c.v.Set("strip.initial.on", c.Strip.Initial.On)
	c.v.Set("strip.initial.hue", c.Strip.Initial.Hue)
	c.v.Set("strip.initial.saturation", c.Strip.Initial.Saturation)
	c.v.Set("strip.initial.brightness", c.Strip.Initial.Brightness)
	c.v.Set("strip.fade_interval", c.Strip.FadeInterval.String())
	c.v.Set("strip.steps.hue", c.Strip.Steps.Hue)
	c.v.Set("strip.steps.saturation", c.Strip.Steps.Saturation)
	c.v.Set("strip.steps.brightness", c.Strip.Steps.Brightness)
	c.v.Set("output.driver", c.Output.Driver)
	c.v.Set("output.pwm.chip", c.Output.PWM.Chip)
	c.v.Set("output.pwm.period_ns", c.Output.PWM.PeriodNS)
	c.v.Set("output.pwm.channels", c.Output.PWM.Channels)
	c.v.Set("output.ola.address", c.Output.OLA.Address)
	c.v.Set("output.ola.universe", c.Output.OLA.Universe)
	c.v.Set("output.ola.start_channel", c.Output.OLA.StartChannel)
	c.v.Set("output.white_gpio", c.Output.WhiteGPIO)
	c.v.Set("advertise.enabled", c.Advertise.Enabled)
	c.v.Set("advertise.port", c.Advertise.Port)

	if err := c.v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	slog.Info("Configuration saved successfully", "path", configPath)
	return nil
}

// Get retrieves a value from the configuration
func (c *Config) Get(key string) any {
	if c.v == nil {
		return nil
	}
	return c.v.Get(key)
}

// Set sets a value in the configuration
func (c *Config) Set(key string, value any) {
	if c.v == nil {
		return
	}
	c.v.Set(key, value)
}
