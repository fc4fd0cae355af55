package config

import "time"

// Common constants shared between daemon and client
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "ledstrip"

	// DaemonConfigFilename is the base filename for daemon config
	DaemonConfigFilename = "ledstripd.yaml"

	// SocketFilename is the base filename for the Unix socket
	SocketFilename = "ledstripd.sock"

	// SystemConfigDir is the config directory used when running as a system service
	SystemConfigDir = "/etc/ledstripd"

	// SystemRuntimeDir is the runtime directory used when running as a system service
	SystemRuntimeDir = "/run/ledstripd"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "LEDSTRIP"

	// DefaultAPIListenAddress is the default HTTP API listen address
	DefaultAPIListenAddress = ":9124"

	// DefaultRateLimit is the default number of API requests per client per minute
	DefaultRateLimit = 120

	// DefaultStripName is the advertised name of the strip
	DefaultStripName = "Led Strip"
)

// Animation defaults
const (
	// DefaultFadeInterval is the period between animation ticks
	DefaultFadeInterval = 15 * time.Millisecond

	// MinFadeInterval is the shortest accepted tick period
	MinFadeInterval = time.Millisecond
)

// Output drivers
const (
	OutputDriverLog = "log"
	OutputDriverPWM = "pwm"
	OutputDriverOLA = "ola"
)

// Output defaults
const (
	// DefaultOLAAddress is the address of the local OLA daemon RPC port
	DefaultOLAAddress = "localhost:9010"

	// DefaultAdvertisePort is the port announced over mDNS when advertising
	// the HTTP API is not possible
	DefaultAdvertisePort = 9124
)

// Logging constants
const (
	// LogLevelDebug represents debug log level
	LogLevelDebug = "debug"

	// LogLevelInfo represents info log level
	LogLevelInfo = "info"

	// LogLevelWarn represents warning log level
	LogLevelWarn = "warn"

	// LogLevelError represents error log level
	LogLevelError = "error"

	// LogFormatText represents text log format
	LogFormatText = "text"

	// LogFormatJSON represents JSON log format
	LogFormatJSON = "json"
)
