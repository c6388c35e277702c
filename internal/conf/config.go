// config.go: settings struct and loading for the pokeapi caching proxy.
package conf

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dukkea/pokeapi-go/internal/errors"
)

// MainSettings contains process wide settings.
type MainSettings struct {
	Name     string // application name used in logs
	LogLevel string // debug, info, warn, error
	Debug    bool   // true to enable debug output
}

// ServerSettings contains settings for the HTTP server.
type ServerSettings struct {
	Host string // interface to listen on
	Port int    // port to listen on
}

// SQLiteSettings contains SQLite specific settings.
type SQLiteSettings struct {
	Path string // path to the database file
}

// MySQLSettings contains MySQL specific settings.
type MySQLSettings struct {
	Username string
	Password string
	Host     string
	Port     int
	Database string
}

// DatabaseSettings selects and configures the backing store.
type DatabaseSettings struct {
	Type   string // "sqlite" or "mysql"
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// UpstreamSettings configures the PokeAPI client.
type UpstreamSettings struct {
	BaseURL    string        // upstream API base URL
	Timeout    time.Duration // per-request timeout
	MaxRetries int           // fetch attempts before giving up
	RetryDelay time.Duration // fixed delay between attempts
	UserAgent  string        // User-Agent header sent upstream
	TotalCount int           // known upstream catalog size
}

// Settings contains all application settings. It is constructed once at
// process start and passed by reference into each service constructor.
type Settings struct {
	Main     MainSettings
	Server   ServerSettings
	Database DatabaseSettings
	Upstream UpstreamSettings
}

// Load reads the configuration file and environment variables into a new
// Settings instance.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/pokeapi")

	setDefaults(v)

	// POKEAPI_SERVER_PORT=9000 etc. override file values
	v.SetEnvPrefix("pokeapi")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.New(fmt.Errorf("reading config file: %w", err)).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
		// No config file is fine, defaults plus environment apply.
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("main.name", "pokeapi-go")
	v.SetDefault("main.loglevel", "info")
	v.SetDefault("main.debug", false)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.sqlite.path", "pokeapi.db")
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.username", "pokeapi")
	v.SetDefault("database.mysql.database", "pokeapi")

	v.SetDefault("upstream.baseurl", "https://pokeapi.co/api/v2")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.maxretries", 3)
	v.SetDefault("upstream.retrydelay", 5*time.Second)
	v.SetDefault("upstream.useragent", "pokeapi-go https://github.com/dukkea/pokeapi-go")
	v.SetDefault("upstream.totalcount", 1017)
}

// Validate checks settings for values the services cannot run with.
func Validate(s *Settings) error {
	switch s.Database.Type {
	case "sqlite":
		if s.Database.SQLite.Path == "" {
			return configError("database.sqlite.path must not be empty")
		}
	case "mysql":
		if s.Database.MySQL.Host == "" || s.Database.MySQL.Database == "" {
			return configError("database.mysql.host and database.mysql.database must not be empty")
		}
	default:
		return configError(fmt.Sprintf("unsupported database type: %s", s.Database.Type))
	}

	if s.Upstream.BaseURL == "" {
		return configError("upstream.baseurl must not be empty")
	}
	if s.Upstream.TotalCount <= 0 {
		return configError(fmt.Sprintf("upstream.totalcount must be positive, got %d", s.Upstream.TotalCount))
	}
	if s.Upstream.MaxRetries <= 0 {
		return configError(fmt.Sprintf("upstream.maxretries must be positive, got %d", s.Upstream.MaxRetries))
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return configError(fmt.Sprintf("server.port out of range: %d", s.Server.Port))
	}
	return nil
}

func configError(msg string) error {
	return errors.Newf("%s", msg).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Build()
}

// LogLevel maps the configured log level string to a slog.Level.
// Unknown values fall back to info.
func (s *Settings) LogLevel() slog.Level {
	switch strings.ToLower(s.Main.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
