package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines bigyear configuration shared by the CLI, the MCP server and
// the sync backend.
type Config struct {
	DB     DBConfig     `yaml:"db"`
	Store  StoreConfig  `yaml:"store"`
	Assets AssetsConfig `yaml:"assets"`
	Sync   SyncConfig   `yaml:"sync"`
	Server ServerConfig `yaml:"server"`
	MCP    MCPConfig    `yaml:"mcp"`
	Log    LogConfig    `yaml:"log"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type StoreConfig struct {
	// AllowUserDataReset permits dropping lists and entries when their stored
	// schema no longer matches.
	AllowUserDataReset bool `yaml:"allow_user_data_reset"`
}

type AssetsConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Dir              string        `yaml:"dir"`
	S3               S3Config      `yaml:"s3"`
	Timeout          time.Duration `yaml:"timeout"`
	WeekStatCacheTTL time.Duration `yaml:"week_stat_cache_ttl"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type SyncConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Debounce time.Duration `yaml:"debounce"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	DBPath      string   `yaml:"db_path"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type MCPConfig struct {
	Mode string `yaml:"mode"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Token is the bearer token http clients must send. Empty disables the check.
	Token string `yaml:"token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		DB: DBConfig{
			Path: "bigyear.db",
		},
		Assets: AssetsConfig{
			Timeout:          30 * time.Second,
			WeekStatCacheTTL: time.Hour,
		},
		Sync: SyncConfig{
			Debounce: 2 * time.Second,
			Timeout:  15 * time.Second,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			DBPath:      "bigyear-backend.db",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		MCP: MCPConfig{
			Mode: "stdio",
			Host: "127.0.0.1",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. BIGYEAR_CONFIG_PATH names the file; path, when non-empty,
// takes precedence over it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BIGYEAR_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := map[string]*string{
		"BIGYEAR_DB_PATH":            &cfg.DB.Path,
		"BIGYEAR_ASSETS_BASE_URL":    &cfg.Assets.BaseURL,
		"BIGYEAR_ASSETS_DIR":         &cfg.Assets.Dir,
		"BIGYEAR_ASSETS_S3_BUCKET":   &cfg.Assets.S3.Bucket,
		"BIGYEAR_ASSETS_S3_PREFIX":   &cfg.Assets.S3.Prefix,
		"BIGYEAR_ASSETS_S3_REGION":   &cfg.Assets.S3.Region,
		"BIGYEAR_ASSETS_S3_ENDPOINT": &cfg.Assets.S3.Endpoint,
		"BIGYEAR_SYNC_BASE_URL":      &cfg.Sync.BaseURL,
		"BIGYEAR_SERVER_HOST":        &cfg.Server.Host,
		"BIGYEAR_SERVER_DB_PATH":     &cfg.Server.DBPath,
		"BIGYEAR_MCP_MODE":           &cfg.MCP.Mode,
		"BIGYEAR_MCP_HOST":           &cfg.MCP.Host,
		"BIGYEAR_MCP_TOKEN":          &cfg.MCP.Token,
		"BIGYEAR_LOG_LEVEL":          &cfg.Log.Level,
		"BIGYEAR_LOG_PATH":           &cfg.Log.Path,
	}
	for key, dst := range setString {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setInt := map[string]*int{
		"BIGYEAR_SERVER_PORT": &cfg.Server.Port,
		"BIGYEAR_MCP_PORT":    &cfg.MCP.Port,
	}
	for key, dst := range setInt {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	setDuration := map[string]*time.Duration{
		"BIGYEAR_ASSETS_TIMEOUT":      &cfg.Assets.Timeout,
		"BIGYEAR_WEEK_STAT_CACHE_TTL": &cfg.Assets.WeekStatCacheTTL,
		"BIGYEAR_SYNC_DEBOUNCE":       &cfg.Sync.Debounce,
		"BIGYEAR_SYNC_TIMEOUT":        &cfg.Sync.Timeout,
	}
	for key, dst := range setDuration {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	setBool := map[string]*bool{
		"BIGYEAR_ASSETS_S3_PATH_STYLE":        &cfg.Assets.S3.PathStyle,
		"BIGYEAR_STORE_ALLOW_USER_DATA_RESET": &cfg.Store.AllowUserDataReset,
	}
	for key, dst := range setBool {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
	}

	// CORS_ORIGINS is the unprefixed form; BIGYEAR_CORS_ORIGINS wins when both are set.
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	if origins := os.Getenv("BIGYEAR_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
