// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"portfolio-activity/internal/aggregator"
)

// DefaultAuthorAliases are the names the site owner commits under.
var DefaultAuthorAliases = []string{
	"kylealanjeffrey",
	"alphabeard",
	"kjeffery",
	"business kyle",
	"kylejeffrey",
}

// Config holds all configuration for the application.
type Config struct {
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr       string        `mapstructure:"HTTP_ADDR"`
	GithubToken    string        `mapstructure:"GITHUB_TOKEN"`
	GithubAPIURL   string        `mapstructure:"GITHUB_API_URL"`
	GithubAccount  string        `mapstructure:"GITHUB_ACCOUNT"`
	AuthorAliases  []string      `mapstructure:"AUTHOR_ALIASES"`
	ReposPerPage   int           `mapstructure:"REPOS_PER_PAGE"`
	CommitsPerPage int           `mapstructure:"COMMITS_PER_PAGE"`
	FanOutLimit    int           `mapstructure:"FAN_OUT_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ThoughtsRepo   string        `mapstructure:"THOUGHTS_REPO"`
	ThoughtsDir    string        `mapstructure:"THOUGHTS_DIR"`
}

// LoadConfig reads configuration from an optional config file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_URL", "")
	v.SetDefault("GITHUB_ACCOUNT", "Kylealanjeffrey")
	v.SetDefault("AUTHOR_ALIASES", DefaultAuthorAliases)
	v.SetDefault("REPOS_PER_PAGE", aggregator.DefaultReposPerPage)
	v.SetDefault("COMMITS_PER_PAGE", 0)
	v.SetDefault("FAN_OUT_LIMIT", 0)
	v.SetDefault("REQUEST_TIMEOUT", "0s")
	v.SetDefault("THOUGHTS_REPO", "KyleAlanJeffrey/daily-haiku")
	v.SetDefault("THOUGHTS_DIR", "daily-response")

	// Load from config.yaml if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.AuthorAliases = normalizeAliases(cfg.AuthorAliases)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values. A missing token is allowed: the aggregator
// then serves empty results.
func (c *Config) Validate() error {
	if c.GithubAccount == "" {
		return errors.New("GITHUB_ACCOUNT is a required configuration field")
	}
	if len(c.AuthorAliases) == 0 {
		return errors.New("AUTHOR_ALIASES must contain at least one alias")
	}
	if c.ReposPerPage < 0 || c.CommitsPerPage < 0 {
		return errors.New("REPOS_PER_PAGE and COMMITS_PER_PAGE must not be negative")
	}
	if c.FanOutLimit < 0 {
		return errors.New("FAN_OUT_LIMIT must not be negative")
	}
	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must not be negative")
	}
	if c.ThoughtsRepo != "" {
		if _, _, err := aggregator.ParseRepoPath(c.ThoughtsRepo); err != nil {
			return fmt.Errorf("THOUGHTS_REPO: %w", err)
		}
	}
	return nil
}

// AggregatorOptions maps the configuration onto aggregator.Options.
func (c *Config) AggregatorOptions() aggregator.Options {
	return aggregator.Options{
		Token:          c.GithubToken,
		Account:        c.GithubAccount,
		AuthorAliases:  c.AuthorAliases,
		ReposPerPage:   c.ReposPerPage,
		CommitsPerPage: c.CommitsPerPage,
		FanOutLimit:    c.FanOutLimit,
		RequestTimeout: c.RequestTimeout,
		ThoughtsRepo:   c.ThoughtsRepo,
		ThoughtsDir:    c.ThoughtsDir,
	}
}

func normalizeAliases(aliases []string) []string {
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}
