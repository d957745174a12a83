// Package config holds the connection settings shared by the library and
// the commands.
package config

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/robotalks/sparki.go/pkg/logging"
)

// Drivers for native serial ports.
const (
	DriverBugst = "bugst"
	DriverTarm  = "tarm"
)

// Platform holds the sync timing of a host OS.
type Platform struct {
	Timeout  time.Duration
	Retries  int
	LoopWait time.Duration
}

// PlatformDefaults returns the sync timing for goos. Bluetooth serial on
// darwin times out often, so fewer and shorter retries are used there.
func PlatformDefaults(goos string) Platform {
	if goos == "darwin" {
		return Platform{Timeout: 500 * time.Millisecond, Retries: 2}
	}
	return Platform{Timeout: time.Second, Retries: 5, LoopWait: 10 * time.Millisecond}
}

// BridgeConfig configures the telemetry bridge.
type BridgeConfig struct {
	// URL of the broker, e.g. mqtt://localhost:1883/sparki/
	URL string `mapstructure:"url"`
	// RobotID defaults to the machine ID.
	RobotID string `mapstructure:"robot_id"`
}

// Config is the connection configuration.
type Config struct {
	Port        string            `mapstructure:"port"`
	Driver      string            `mapstructure:"driver"`
	BaudRate    int               `mapstructure:"baud_rate"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Retries     int               `mapstructure:"retries"`
	LoopWait    time.Duration     `mapstructure:"loop_wait"`
	SettleDelay time.Duration     `mapstructure:"settle_delay"`
	OpenRetries int               `mapstructure:"open_retries"`
	Keepalive   time.Duration     `mapstructure:"keepalive"`
	LogLevel    string            `mapstructure:"log_level"`
	LogFile     string            `mapstructure:"log_file"`
	Aliases     map[string]string `mapstructure:"aliases"`
	Bridge      BridgeConfig      `mapstructure:"bridge"`
}

// DefaultAliases are the well-known Bluetooth serial ports on darwin.
var DefaultAliases = map[string]string{
	"mac":  "/dev/tty.ArcBotics-DevB",
	"hc06": "/dev/tty.HC-06-DevB",
}

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "SPARKI"

var defaultConfig = New(runtime.GOOS)

func init() {
	if val := os.Getenv("SPARKI_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("SPARKI_DRIVER"); val != "" {
		defaultConfig.Driver = val
	}
	if val := os.Getenv("SPARKI_LOG_LEVEL"); val != "" {
		defaultConfig.LogLevel = val
	}
	if val := os.Getenv("SPARKI_LOG_FILE"); val != "" {
		defaultConfig.LogFile = val
	}
	if val := os.Getenv("SPARKI_BRIDGE_URL"); val != "" {
		defaultConfig.Bridge.URL = val
	}
	if val := os.Getenv("SPARKI_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			defaultConfig.Timeout = d
		}
	}
	if val := os.Getenv("SPARKI_RETRIES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			defaultConfig.Retries = n
		}
	}
}

// New creates a Config with defaults for goos.
func New(goos string) Config {
	p := PlatformDefaults(goos)
	aliases := make(map[string]string, len(DefaultAliases))
	for k, v := range DefaultAliases {
		aliases[k] = v
	}
	return Config{
		Driver:      DriverBugst,
		BaudRate:    9600,
		Timeout:     p.Timeout,
		Retries:     p.Retries,
		LoopWait:    p.LoopWait,
		SettleDelay: 10 * time.Millisecond,
		OpenRetries: 2,
		Keepalive:   10 * time.Second,
		LogLevel:    "warn",
		Aliases:     aliases,
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	SetupFlagSet(flag.CommandLine, &defaultConfig)
}

// SetupFlagSet registers flags bound to conf.
func SetupFlagSet(fs *flag.FlagSet, conf *Config) {
	fs.StringVar(&conf.Port, "port", conf.Port, "Serial port, alias, sim: or ws:// URL of Sparki.")
	fs.StringVar(&conf.Driver, "driver", conf.Driver, "Native serial driver: bugst or tarm.")
	fs.IntVar(&conf.BaudRate, "baud", conf.BaudRate, "Baud rate.")
	fs.DurationVar(&conf.Timeout, "timeout", conf.Timeout, "Read timeout.")
	fs.IntVar(&conf.Retries, "retries", conf.Retries, "Sync window in read timeouts.")
	fs.DurationVar(&conf.Keepalive, "keepalive", conf.Keepalive, "Noop interval, 0 disables.")
	fs.StringVar(&conf.LogLevel, "log-level", conf.LogLevel, "Minimum severity logged.")
	fs.StringVar(&conf.LogFile, "log-file", conf.LogFile, "Write a JSON session log to this file.")
	fs.StringVar(&conf.Bridge.URL, "bridge", conf.Bridge.URL, "MQTT broker URL for telemetry.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config from current defaults.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Aliases = make(map[string]string, len(defaultConfig.Aliases))
	for k, v := range defaultConfig.Aliases {
		conf.Aliases[k] = v
	}
	return &conf
}

// Load reads a config file on top of base. SPARKI_* environment variables
// take precedence over the file. An empty path only applies the environment.
func Load(path string, base *Config) (*Config, error) {
	v := viper.New()
	setDefaults(v, base)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &conf, nil
}

func setDefaults(v *viper.Viper, base *Config) {
	v.SetDefault("port", base.Port)
	v.SetDefault("driver", base.Driver)
	v.SetDefault("baud_rate", base.BaudRate)
	v.SetDefault("timeout", base.Timeout)
	v.SetDefault("retries", base.Retries)
	v.SetDefault("loop_wait", base.LoopWait)
	v.SetDefault("settle_delay", base.SettleDelay)
	v.SetDefault("open_retries", base.OpenRetries)
	v.SetDefault("keepalive", base.Keepalive)
	v.SetDefault("log_level", base.LogLevel)
	v.SetDefault("log_file", base.LogFile)
	v.SetDefault("aliases", base.Aliases)
	v.SetDefault("bridge.url", base.Bridge.URL)
	v.SetDefault("bridge.robot_id", base.Bridge.RobotID)
}

// Validate checks the values.
func (c *Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1")
	}
	switch c.Driver {
	case DriverBugst, DriverTarm:
	default:
		return fmt.Errorf("driver must be one of: %s, %s", DriverBugst, DriverTarm)
	}
	if _, err := logging.ParseSeverity(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Severity returns the parsed log level, Warn if invalid.
func (c *Config) Severity() logging.Severity {
	sev, err := logging.ParseSeverity(c.LogLevel)
	if err != nil {
		return logging.Warn
	}
	return sev
}

// NewLogger creates the configured logger: glog, plus a rotating JSON
// transcript when LogFile is set, dropping messages below LogLevel.
func (c *Config) NewLogger() logging.Logger {
	var sink logging.Logger = logging.Glog{}
	if c.LogFile != "" {
		file := logging.NewFileLogger(logging.FileOptions{Path: c.LogFile, MaxBackups: 3})
		sink = logging.Tee{sink, &logging.Zap{Logger: file}}
	}
	return &logging.Filter{Logger: sink, Level: c.Severity()}
}

// ResolvePort expands a port alias. Unknown names are returned unchanged.
func (c *Config) ResolvePort(name string) string {
	if port, ok := c.Aliases[strings.ToLower(name)]; ok {
		return port
	}
	return name
}
