package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"

	"github.com/gary-kim/maps/internal/logging"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"
)

// Config holds all connection and runtime configuration.
type Config struct {
	Host     string
	Port     int
	Socket   string
	Password string
	DB       int
	URI      string

	TLS    bool
	CACert string
	Cert   string
	Key    string

	Volume  string
	User    string
	JSON    bool
	NoColor bool
	Color   bool

	HistoryFile string

	LogLevel  string
	LogFormat string
	LogFile   string

	// Address for the Prometheus /metrics listener; empty disables it.
	MetricsAddr string

	// Remaining args after flag parsing (single-command mode)
	Args []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	histFile := home + "/.maps-cli_history"
	if env := os.Getenv("MAPS_HISTORY"); env != "" {
		histFile = env
	}

	volume := "main"
	if env := os.Getenv("REDIS_FS_VOLUME"); env != "" {
		volume = env
	}

	user := "admin"
	if env := os.Getenv("MAPS_USER"); env != "" {
		user = env
	}

	logLevel := "warn"
	if env := os.Getenv("MAPS_LOG_LEVEL"); env != "" {
		logLevel = env
	}

	return &Config{
		Host:        "127.0.0.1",
		Port:        6379,
		DB:          0,
		Password:    os.Getenv("REDISCLI_AUTH"),
		Volume:      volume,
		User:        user,
		HistoryFile: histFile,
		LogLevel:    logLevel,
		LogFormat:   "console",
	}
}

// RegisterFlags registers CLI flags on the given flag set.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVarP(&c.Host, "host", "h", c.Host, "Server hostname")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "Server port")
	fs.StringVarP(&c.Socket, "socket", "s", c.Socket, "Unix socket path")
	fs.StringVarP(&c.Password, "password", "a", c.Password, "Password")
	fs.IntVarP(&c.DB, "db", "n", c.DB, "Database number")
	fs.StringVarP(&c.URI, "uri", "u", c.URI, "Server URI (redis://...)")

	fs.BoolVar(&c.TLS, "tls", false, "Enable TLS")
	fs.StringVar(&c.CACert, "cacert", "", "CA certificate file")
	fs.StringVar(&c.Cert, "cert", "", "Client certificate file")
	fs.StringVar(&c.Key, "key", "", "Client key file")

	fs.BoolVar(&c.JSON, "json", false, "JSON output mode")
	fs.BoolVar(&c.NoColor, "no-color", false, "Disable colors")
	fs.BoolVar(&c.Color, "color", false, "Force colors")
	fs.StringVar(&c.Volume, "volume", c.Volume, "Filesystem volume name")
	fs.StringVar(&c.User, "user", c.User, "Acting user")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format (console, json)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file (default stderr)")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Serve Prometheus metrics on this address")
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		OutputPath: c.LogFile,
	}
}

// RedisOptions builds a go-redis Options from the config.
func (c *Config) RedisOptions() (*redis.Options, error) {
	if c.URI != "" {
		opts, err := redis.ParseURL(c.URI)
		if err != nil {
			return nil, fmt.Errorf("invalid uri: %w", err)
		}
		if c.DB != 0 {
			opts.DB = c.DB
		}
		return opts, nil
	}

	addr := c.Host + ":" + strconv.Itoa(c.Port)
	opts := &redis.Options{
		Addr:     addr,
		Password: c.Password,
		DB:       c.DB,
	}

	if c.Socket != "" {
		opts.Network = "unix"
		opts.Addr = c.Socket
	}

	if c.TLS {
		tlsCfg, err := c.tlsConfig()
		if err != nil {
			return nil, err
		}
		opts.TLSConfig = tlsCfg
	}

	return opts, nil
}

func (c *Config) tlsConfig() (*tls.Config, error) {
	cfg := &tls.Config{}
	if c.Cert != "" || c.Key != "" {
		cert, err := tls.LoadX509KeyPair(c.Cert, c.Key)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	if c.CACert != "" {
		pool, err := loadCertPool(c.CACert)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

// Addr returns a display-friendly connection address.
func (c *Config) Addr() string {
	if c.URI != "" {
		return c.URI
	}
	if c.Socket != "" {
		return c.Socket
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShouldColor returns true if color output should be enabled.
func (c *Config) ShouldColor() bool {
	if c.NoColor {
		return false
	}
	if c.Color {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}
