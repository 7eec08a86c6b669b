// Package config loads the catalog settings from defaults, an optional YAML
// file, a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all repo-catalog settings.
type Config struct {
	// Token is optional for REST and only raises rate limits.
	Token string `yaml:"token"`
	Org   string `yaml:"org"`

	// API selects the data source: "rest" or "graphql".
	API      string `yaml:"api"`
	APIURL   string `yaml:"api_url"`
	PerPage  int    `yaml:"per_page"`
	MaxPages int    `yaml:"max_pages"`

	PageSize int `yaml:"page_size"`
	PacingMS int `yaml:"pacing_ms"`

	DataDir   string `yaml:"data_dir"`
	Storage   string `yaml:"storage"` // file, sqlite
	ExportDir string `yaml:"export_dir"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Org:       "godaddy",
		API:       "rest",
		APIURL:    "https://api.github.com/",
		PerPage:   100,
		MaxPages:  10,
		PageSize:  12,
		PacingMS:  500,
		DataDir:   defaultDataDir(),
		Storage:   "file",
		ExportDir: ".",
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".repo-catalog"
	}
	return filepath.Join(dir, "repo-catalog")
}

// Load builds the configuration. path names a YAML file; when empty,
// CATALOG_CONFIG or <data dir>/config.yaml is used, and a missing file falls
// back to defaults. envFiles are loaded with godotenv (".env" when none) and
// never override variables already set.
func Load(path string, envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := Default()
	if dir := os.Getenv("CATALOG_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CATALOG_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"GITHUB_TOKEN":       &c.Token,
		"CATALOG_ORG":        &c.Org,
		"CATALOG_API":        &c.API,
		"CATALOG_API_URL":    &c.APIURL,
		"CATALOG_DATA_DIR":   &c.DataDir,
		"CATALOG_STORAGE":    &c.Storage,
		"CATALOG_EXPORT_DIR": &c.ExportDir,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CATALOG_PER_PAGE":  &c.PerPage,
		"CATALOG_MAX_PAGES": &c.MaxPages,
		"CATALOG_PAGE_SIZE": &c.PageSize,
		"CATALOG_PACING_MS": &c.PacingMS,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Org == "":
		return errors.New("organization is required (set CATALOG_ORG)")
	case c.API != "rest" && c.API != "graphql":
		return fmt.Errorf("unknown api %q (want rest or graphql)", c.API)
	case c.API == "graphql" && c.Token == "":
		return errors.New("the graphql api requires GITHUB_TOKEN")
	case c.PerPage < 1 || c.PerPage > 100:
		return fmt.Errorf("per_page must be between 1 and 100, got %d", c.PerPage)
	case c.MaxPages < 1:
		return fmt.Errorf("max_pages must be positive, got %d", c.MaxPages)
	case c.PageSize < 1:
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	case c.PacingMS < 0:
		return fmt.Errorf("pacing_ms must not be negative, got %d", c.PacingMS)
	case c.Storage != "file" && c.Storage != "sqlite":
		return fmt.Errorf("unknown storage %q (want file or sqlite)", c.Storage)
	}
	return nil
}

// Pacing is the delay before a load-more extension is applied.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.PacingMS) * time.Millisecond
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Token != "" {
		out.Token = "********"
	}
	return &out
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
