// Package config loads deptrack configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/raphaelgruber/deptrack/internal/stats"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreSQLite    = "sqlite"
	StoreSurrealDB = "surrealdb"
	StoreMemory    = "memory"
)

// Transports for the server binary.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config holds all configuration values.
type Config struct {
	// Storage
	Store      string
	SQLitePath string

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Server
	Transport           string
	Host                string
	Port                int
	APITokens           []string
	RequiredScopes      []string
	ResourceMetadataURL string
	AuthDisabled        bool

	// Remote client
	ServerURL   string
	ClientToken string

	// Analytics
	StalePolicy stats.NeverUpdatedPolicy

	// Seeding
	Seed     bool
	SeedFile string

	// Observability
	Trace    string
	LogFile  string
	LogLevel slog.Level
}

// Addr returns the listen address for the HTTP transport.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// env maps each key to the environment variables it is read from, in priority order.
var env = map[string][]string{
	"store":                 {"DEPTRACK_STORE"},
	"sqlite_path":           {"DEPTRACK_SQLITE_PATH"},
	"surrealdb_url":         {"SURREALDB_URL"},
	"surrealdb_namespace":   {"SURREALDB_NAMESPACE"},
	"surrealdb_database":    {"SURREALDB_DATABASE"},
	"surrealdb_user":        {"SURREALDB_USER"},
	"surrealdb_pass":        {"SURREALDB_PASS"},
	"surrealdb_auth_level":  {"SURREALDB_AUTH_LEVEL"},
	"transport":             {"DEPTRACK_TRANSPORT"},
	"host":                  {"DEPTRACK_HOST"},
	"port":                  {"DEPTRACK_PORT", "PORT"},
	"api_tokens":            {"DEPTRACK_API_TOKENS"},
	"required_scopes":       {"DEPTRACK_REQUIRED_SCOPES"},
	"resource_metadata_url": {"DEPTRACK_RESOURCE_METADATA_URL"},
	"auth_disabled":         {"DEPTRACK_AUTH_DISABLED"},
	"server_url":            {"DEPTRACK_SERVER_URL"},
	"client_token":          {"DEPTRACK_TOKEN"},
	"stale_never_updated":   {"DEPTRACK_STALE_NEVER_UPDATED"},
	"seed":                  {"DEPTRACK_SEED"},
	"seed_file":             {"DEPTRACK_SEED_FILE"},
	"trace":                 {"DEPTRACK_TRACE"},
	"log_file":              {"DEPTRACK_LOG_FILE"},
	"log_level":             {"DEPTRACK_LOG_LEVEL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store", StoreSQLite)
	v.SetDefault("sqlite_path", "deptrack.db")

	v.SetDefault("surrealdb_url", "ws://localhost:8000/rpc")
	v.SetDefault("surrealdb_namespace", "deptrack")
	v.SetDefault("surrealdb_database", "dependencies")
	v.SetDefault("surrealdb_user", "root")
	v.SetDefault("surrealdb_pass", "root")
	v.SetDefault("surrealdb_auth_level", "root")

	v.SetDefault("transport", TransportHTTP)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("auth_disabled", false)

	v.SetDefault("server_url", "http://localhost:8000/mcp")

	v.SetDefault("stale_never_updated", "created")

	v.SetDefault("seed", true)
	v.SetDefault("trace", "")
	v.SetDefault("log_file", "/tmp/deptrack.log")
	v.SetDefault("log_level", "INFO")
}

// Load reads configuration from environment variables and, when
// DEPTRACK_CONFIG names a file, from that YAML file. Environment wins.
func Load() (Config, error) {
	v := viper.New()
	if err := v.BindEnv("config_file", "DEPTRACK_CONFIG"); err != nil {
		return Config{}, err
	}
	return load(v, v.GetString("config_file"))
}

// LoadFile reads configuration from path with environment overrides.
func LoadFile(path string) (Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, configFile string) (Config, error) {
	setDefaults(v)
	for key, names := range env {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	policy, err := stats.ParseNeverUpdatedPolicy(v.GetString("stale_never_updated"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Store:      strings.ToLower(v.GetString("store")),
		SQLitePath: v.GetString("sqlite_path"),

		SurrealDBURL:       v.GetString("surrealdb_url"),
		SurrealDBNamespace: v.GetString("surrealdb_namespace"),
		SurrealDBDatabase:  v.GetString("surrealdb_database"),
		SurrealDBUser:      v.GetString("surrealdb_user"),
		SurrealDBPass:      v.GetString("surrealdb_pass"),
		SurrealDBAuthLevel: v.GetString("surrealdb_auth_level"),

		Transport:           strings.ToLower(v.GetString("transport")),
		Host:                v.GetString("host"),
		Port:                v.GetInt("port"),
		APITokens:           splitList(v.GetString("api_tokens")),
		RequiredScopes:      splitList(v.GetString("required_scopes")),
		ResourceMetadataURL: v.GetString("resource_metadata_url"),
		AuthDisabled:        v.GetBool("auth_disabled"),

		ServerURL:   v.GetString("server_url"),
		ClientToken: v.GetString("client_token"),

		StalePolicy: policy,

		Seed:     v.GetBool("seed"),
		SeedFile: v.GetString("seed_file"),

		Trace:    strings.ToLower(v.GetString("trace")),
		LogFile:  v.GetString("log_file"),
		LogLevel: parseLogLevel(v.GetString("log_level")),
	}

	switch cfg.Store {
	case StoreSQLite, StoreSurrealDB, StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown store %q (want sqlite, surrealdb or memory)", cfg.Store)
	}
	switch cfg.Transport {
	case TransportHTTP, TransportStdio:
	default:
		return Config{}, fmt.Errorf("unknown transport %q (want http or stdio)", cfg.Transport)
	}

	return cfg, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
