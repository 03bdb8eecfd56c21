// Package config loads routerbot settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/routerbot/routerbot/pkg/restconf"
	"github.com/routerbot/routerbot/pkg/util"
)

// DefaultEnvFile is read when present; a missing file is not an error.
const DefaultEnvFile = ".env"

const (
	defaultRouterTimeout   = restconf.DefaultTimeout
	defaultCommandTimeout  = 30 * time.Second
	defaultMonitorInterval = 60 * time.Second
	defaultSSHPort         = 22
	defaultBackupDir       = "backups"
)

// Config holds every setting the bot reads at startup. It is loaded once
// and treated as read-only afterwards.
type Config struct {
	DiscordToken string
	DevGuildID   string

	// Default router. Empty RouterBaseURL means commands must name an
	// inventory router.
	RouterBaseURL   string
	RouterUsername  string
	RouterPassword  string
	RouterToken     string
	RouterVerifyTLS bool
	RouterCAFile    string
	RouterTimeout   time.Duration
	RouterSSHPort   int

	CommandTimeout time.Duration

	LogLevel  string
	LogFormat string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuditLog string
	AuditDSN string

	AuthPolicy string

	MetricsAddr     string
	MonitorInterval time.Duration
	BackupDir       string
}

// Load applies envFile (if it exists) to the process environment without
// overriding variables that are already set, then reads the configuration.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	v := &util.ValidationBuilder{}
	p := envParser{v: v}

	cfg := &Config{
		DiscordToken:    getenv("DISCORD_TOKEN", ""),
		DevGuildID:      getenv("DEV_GUILD_ID", ""),
		RouterBaseURL:   getenv("ROUTER_BASE_URL", ""),
		RouterUsername:  getenv("ROUTER_USERNAME", ""),
		RouterPassword:  getenv("ROUTER_PASSWORD", ""),
		RouterToken:     getenv("ROUTER_TOKEN", ""),
		RouterVerifyTLS: p.bool("ROUTER_VERIFY_TLS", true),
		RouterCAFile:    getenv("ROUTER_CA_FILE", ""),
		RouterTimeout:   p.duration("ROUTER_TIMEOUT", defaultRouterTimeout),
		RouterSSHPort:   p.int("ROUTER_SSH_PORT", defaultSSHPort),
		CommandTimeout:  p.duration("COMMAND_TIMEOUT", defaultCommandTimeout),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "text"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		RedisDB:         p.int("REDIS_DB", 0),
		AuditLog:        getenv("AUDIT_LOG", ""),
		AuditDSN:        getenv("AUDIT_DSN", ""),
		AuthPolicy:      getenv("AUTH_POLICY", ""),
		MetricsAddr:     getenv("METRICS_ADDR", ""),
		MonitorInterval: p.duration("MONITOR_INTERVAL", defaultMonitorInterval),
		BackupDir:       getenv("BACKUP_DIR", defaultBackupDir),
	}

	if cfg.RouterBaseURL == "" {
		if host := getenv("ROUTER_HOST", ""); host != "" {
			cfg.RouterBaseURL = restconf.BaseURLForHost(host)
		}
	}

	cfg.validate(v)
	if err := v.Build(); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (c *Config) validate(v *util.ValidationBuilder) {
	if c.HasDefaultRouter() {
		if err := c.Endpoint().Validate(); err != nil {
			v.AddErrorf("default router: %v", err)
		}
	}
	v.Add(c.RouterTimeout > 0, "ROUTER_TIMEOUT must be positive")
	v.Add(c.CommandTimeout > 0, "COMMAND_TIMEOUT must be positive")
	v.Add(c.MonitorInterval > 0, "MONITOR_INTERVAL must be positive")
	v.Add(c.RouterSSHPort > 0 && c.RouterSSHPort < 65536, "ROUTER_SSH_PORT must be a TCP port")
	v.Add(c.RedisDB >= 0, "REDIS_DB must not be negative")
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		v.AddErrorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.AuditDSN != "" && c.AuditLog != "" {
		v.AddErrorf("AUDIT_LOG and AUDIT_DSN are mutually exclusive")
	}
}

// ValidateBot checks the settings only the Discord transport needs.
func (c *Config) ValidateBot() error {
	if c.DiscordToken == "" {
		return util.NewNotConfiguredError("Discord bot", "set DISCORD_TOKEN")
	}
	return nil
}

// HasDefaultRouter reports whether a default RESTCONF endpoint is set.
func (c *Config) HasDefaultRouter() bool {
	return c.RouterBaseURL != ""
}

// Endpoint returns the default router endpoint.
func (c *Config) Endpoint() restconf.DeviceEndpoint {
	return restconf.DeviceEndpoint{
		BaseURL:   c.RouterBaseURL,
		Username:  c.RouterUsername,
		Password:  c.RouterPassword,
		Token:     c.RouterToken,
		VerifyTLS: c.RouterVerifyTLS,
		CAFile:    c.RouterCAFile,
		Timeout:   c.RouterTimeout,
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envParser reads typed variables, recording parse failures instead of
// stopping at the first one.
type envParser struct {
	v *util.ValidationBuilder
}

func (p envParser) bool(key string, def bool) bool {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	p.v.AddErrorf("%s: invalid boolean %q", key, raw)
	return def
}

func (p envParser) int(key string, def int) int {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.v.AddErrorf("%s: invalid integer %q", key, raw)
		return def
	}
	return n
}

// duration accepts Go durations ("45s", "2m") or a bare number of seconds.
func (p envParser) duration(key string, def time.Duration) time.Duration {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.v.AddErrorf("%s: invalid duration %q", key, raw)
		return def
	}
	return d
}
