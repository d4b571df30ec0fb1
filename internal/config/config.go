package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable pointing at an optional YAML file.
const ConfigPathEnvVar = "BLOG_CONFIG"

// DefaultConfigPath is used when BLOG_CONFIG is unset and the file exists.
const DefaultConfigPath = "config.yaml"

// DefaultSessionSecret signs session cookies in development only.
const DefaultSessionSecret = "inkwell-dev-secret"

var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set when gin_mode is release")

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Mail     MailConfig     `koanf:"mail"`
	Share    ShareConfig    `koanf:"share"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	ListenAddr    string `koanf:"listen_addr"`
	Port          string `koanf:"port"`
	GinMode       string `koanf:"gin_mode"`
	SessionSecret string `koanf:"session_secret"`
	// SiteBaseURL overrides the scheme and host used for absolute links in mail.
	SiteBaseURL string `koanf:"site_base_url"`
	// AllowedHosts lists Host header values accepted when SiteBaseURL is empty.
	// A leading dot matches the domain and its subdomains, "*" matches anything.
	AllowedHosts []string `koanf:"allowed_hosts"`
	// TrustedProxies are the IPs/CIDRs whose X-Forwarded-* headers are honoured.
	TrustedProxies []string `koanf:"trusted_proxies"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// MailConfig configures outbound SMTP. An empty Host logs mail instead of sending it.
type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// ShareConfig limits how often one client may submit the share form.
type ShareConfig struct {
	RequestsPerMinute int `koanf:"requests_per_minute"`
	Burst             int `koanf:"burst"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:           "8080",
			GinMode:        "release",
			SessionSecret:  DefaultSessionSecret,
			AllowedHosts:   []string{"localhost", "127.0.0.1", "[::1]"},
			TrustedProxies: []string{"127.0.0.1", "::1"},
		},
		Database: DatabaseConfig{Path: "inkwell.db"},
		Mail: MailConfig{
			Port: 587,
			From: "noreply@inkwell.local",
		},
		Share: ShareConfig{RequestsPerMinute: 10, Burst: 3},
		Log:   LogConfig{Level: "info", Format: "json"},
	}
}

var envMappings = map[string]string{
	"listen_addr":           "server.listen_addr",
	"port":                  "server.port",
	"gin_mode":              "server.gin_mode",
	"session_secret":        "server.session_secret",
	"site_base_url":         "server.site_base_url",
	"allowed_hosts":         "server.allowed_hosts",
	"trusted_proxies":       "server.trusted_proxies",
	"database_path":         "database.path",
	"smtp_host":             "mail.host",
	"smtp_port":             "mail.port",
	"smtp_username":         "mail.username",
	"smtp_password":         "mail.password",
	"mail_from":             "mail.from",
	"share_rate_per_minute": "share.requests_per_minute",
	"share_rate_burst":      "share.burst",
	"log_level":             "log.level",
	"log_format":            "log.format",
}

// envTransformFunc maps known environment variables to koanf keys and drops the rest.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load 按 默认值 → YAML 文件 → 环境变量 的顺序读取应用配置。
func Load() (AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return AppConfig{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return AppConfig{}, fmt.Errorf("load environment: %w", err)
	}

	if err := splitListKeys(k); err != nil {
		return AppConfig{}, err
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// listKeys hold comma separated lists when they come from the environment.
var listKeys = []string{
	"server.allowed_hosts",
	"server.trusted_proxies",
}

func splitListKeys(k *koanf.Koanf) error {
	for _, key := range listKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}

		items := []string{}
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// Validate rejects settings that are only acceptable during development.
func (c AppConfig) Validate() error {
	if c.Server.GinMode == "release" && c.Server.SessionSecret == DefaultSessionSecret {
		return ErrInsecureSessionSecret
	}
	return nil
}

func findConfigFile() string {
	if path := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

// normalize trims values and restores defaults for fields left empty.
func (c *AppConfig) normalize() {
	defaults := defaultConfig()

	c.Server.Port = orDefault(c.Server.Port, defaults.Server.Port)
	c.Server.ListenAddr = strings.TrimSpace(c.Server.ListenAddr)
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = fmt.Sprintf(":%s", c.Server.Port)
	}
	c.Server.GinMode = orDefault(c.Server.GinMode, defaults.Server.GinMode)
	c.Server.SessionSecret = orDefault(c.Server.SessionSecret, defaults.Server.SessionSecret)
	c.Server.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.Server.SiteBaseURL), "/")
	c.Server.AllowedHosts = trimList(c.Server.AllowedHosts)
	if len(c.Server.AllowedHosts) == 0 {
		c.Server.AllowedHosts = defaults.Server.AllowedHosts
	}
	c.Server.TrustedProxies = trimList(c.Server.TrustedProxies)

	c.Database.Path = orDefault(c.Database.Path, defaults.Database.Path)

	c.Mail.Host = strings.TrimSpace(c.Mail.Host)
	c.Mail.Username = strings.TrimSpace(c.Mail.Username)
	c.Mail.From = orDefault(c.Mail.From, defaults.Mail.From)
	if c.Mail.Port <= 0 {
		c.Mail.Port = defaults.Mail.Port
	}

	if c.Share.RequestsPerMinute <= 0 {
		c.Share.RequestsPerMinute = defaults.Share.RequestsPerMinute
	}
	if c.Share.Burst <= 0 {
		c.Share.Burst = defaults.Share.Burst
	}

	c.Log.Level = orDefault(c.Log.Level, defaults.Log.Level)
	c.Log.Format = orDefault(c.Log.Format, defaults.Log.Format)
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func orDefault(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
