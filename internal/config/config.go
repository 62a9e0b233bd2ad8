package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/shelfmark/shelfmark/internal/merge"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Library  LibraryConfig  `mapstructure:"library" yaml:"library"`
	Sources  SourcesConfig  `mapstructure:"sources" yaml:"sources"`
	Merge    MergeConfig    `mapstructure:"merge" yaml:"merge"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours" yaml:"token_ttl_hours"`
}

// LibraryConfig holds media library paths and organizer settings.
type LibraryConfig struct {
	InputDir       string `mapstructure:"input_dir" yaml:"input_dir"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
	FolderTemplate string `mapstructure:"folder_template" yaml:"folder_template"`
	ScanCron       string `mapstructure:"scan_cron" yaml:"scan_cron"`
}

// SourcesConfig holds per-source scraper settings.
type SourcesConfig struct {
	// Enabled lists source ids in the order their records are handed to the
	// merge, which is also the fallback tie-break order.
	Enabled []string   `mapstructure:"enabled" yaml:"enabled"`
	TMDB    TMDBConfig `mapstructure:"tmdb" yaml:"tmdb"`
	OMDB    OMDBConfig `mapstructure:"omdb" yaml:"omdb"`
}

// TMDBConfig holds TMDB API client configuration.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url" yaml:"image_base_url"`
	Timeout      int    `mapstructure:"timeout" yaml:"timeout"`
}

// OMDBConfig holds OMDb API client configuration.
type OMDBConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Timeout int    `mapstructure:"timeout" yaml:"timeout"`
}

// MergeConfig holds the user-editable merge policy: per-field source
// priorities and the genre blacklist.
type MergeConfig struct {
	FieldPriorities map[string][]string `mapstructure:"field_priorities" yaml:"field_priorities"`
	GenreBlacklist  []string            `mapstructure:"genre_blacklist" yaml:"genre_blacklist"`
}

// Priorities converts the configured field priorities to the merge engine's
// representation.
func (m *MergeConfig) Priorities() merge.Priorities {
	p := make(merge.Priorities, len(m.FieldPriorities))
	for field, order := range m.FieldPriorities {
		p[merge.Field(field)] = append([]string(nil), order...)
	}
	return p
}

// Blacklist builds the genre blacklist set from configuration.
func (m *MergeConfig) Blacklist() merge.Blacklist {
	return merge.NewBlacklist(m.GenreBlacklist)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8585,
		},
		Database: DatabaseConfig{
			Path: "./data/shelfmark.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
		},
		Library: LibraryConfig{
			FolderTemplate: "{title} ({year})",
			ScanCron:       "*/30 * * * *",
		},
		Sources: SourcesConfig{
			Enabled: []string{"tmdb", "omdb"},
			TMDB: TMDBConfig{
				BaseURL:      "https://api.themoviedb.org/3",
				ImageBaseURL: "https://image.tmdb.org/t/p",
				Timeout:      15,
			},
			OMDB: OMDBConfig{
				BaseURL: "https://www.omdbapi.com",
				Timeout: 15,
			},
		},
		Merge: MergeConfig{
			FieldPriorities: defaultFieldPriorities(),
		},
	}
}

// defaultFieldPriorities gives every field a full ranking so the settings UI
// has something to reorder. TMDB leads for descriptive text and artwork,
// OMDb for dates, runtime, and director credits.
func defaultFieldPriorities() map[string][]string {
	return map[string][]string{
		"title":          {"tmdb", "omdb"},
		"original_title": {"tmdb", "omdb"},
		"description":    {"tmdb", "omdb"},
		"release_date":   {"omdb", "tmdb"},
		"runtime":        {"omdb", "tmdb"},
		"director":       {"omdb", "tmdb"},
		"studio":         {"tmdb", "omdb"},
		"label":          {"tmdb", "omdb"},
		"series":         {"tmdb", "omdb"},
		"poster_url":     {"tmdb", "omdb"},
		"genres":         {"tmdb", "omdb"},
		"cast":           {"tmdb", "omdb"},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.shelfmark")
	}

	v.SetEnvPrefix("SHELFMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", d.Auth.TokenTTLHours)

	v.SetDefault("library.input_dir", d.Library.InputDir)
	v.SetDefault("library.output_dir", d.Library.OutputDir)
	v.SetDefault("library.folder_template", d.Library.FolderTemplate)
	v.SetDefault("library.scan_cron", d.Library.ScanCron)

	v.SetDefault("sources.enabled", d.Sources.Enabled)
	v.SetDefault("sources.tmdb.base_url", d.Sources.TMDB.BaseURL)
	v.SetDefault("sources.tmdb.image_base_url", d.Sources.TMDB.ImageBaseURL)
	v.SetDefault("sources.tmdb.timeout", d.Sources.TMDB.Timeout)
	v.SetDefault("sources.omdb.base_url", d.Sources.OMDB.BaseURL)
	v.SetDefault("sources.omdb.timeout", d.Sources.OMDB.Timeout)

	v.SetDefault("merge.field_priorities", d.Merge.FieldPriorities)
	v.SetDefault("merge.genre_blacklist", []string{})
}

// UnprioritizedSources returns enabled source ids that appear in no field's
// priority list. They still participate in merges, ranked by input order
// only; the caller logs a warning so the user can review their settings.
func (c *Config) UnprioritizedSources() []string {
	ranked := make(map[string]struct{})
	for _, order := range c.Merge.FieldPriorities {
		for _, id := range order {
			ranked[id] = struct{}{}
		}
	}

	var unused []string
	for _, id := range c.Sources.Enabled {
		if _, ok := ranked[id]; !ok {
			unused = append(unused, id)
		}
	}
	return unused
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Save writes the current configuration snapshot to path as YAML, so
// settings edited through the UI (priorities, blacklist, library paths)
// survive restarts.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
