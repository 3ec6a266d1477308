// Package config loads defaults for the CLI and server from an optional
// YAML file and the environment. Command-line flags override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tordrt/erdschema/internal/diagram"
)

// FileName is the config file looked up in the working directory
const FileName = ".erdschema.yaml"

// Config holds every tunable setting
type Config struct {
	Format      string       `yaml:"format"`
	DatabaseURL string       `yaml:"database_url"`
	Schema      string       `yaml:"schema"`
	Store       string       `yaml:"store"`
	Server      ServerConfig `yaml:"server"`
	Router      RouterConfig `yaml:"router"`
}

// ServerConfig configures `erdschema serve`
type ServerConfig struct {
	Port         int      `yaml:"port"`
	RedisAddr    string   `yaml:"redis_addr"`
	CacheSize    int      `yaml:"cache_size"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// RouterConfig overrides router defaults. Zero values keep the default.
type RouterConfig struct {
	GridSize       float64 `yaml:"grid_size"`
	ObstacleMargin float64 `yaml:"obstacle_margin"`
	MaxIterations  int     `yaml:"max_iterations"`
	Workers        int     `yaml:"workers"`
	EnumEdges      *bool   `yaml:"enum_edges"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Format: "text",
		Store:  "erdschema.db",
		Server: ServerConfig{
			Port:         8080,
			CacheSize:    256,
			AllowOrigins: []string{"*"},
		},
	}
}

// Load reads .env (if present) into the process environment, then the YAML
// file at path, then applies ERDSCHEMA_* and the conventional DATABASE_URL,
// REDIS_ADDR and PORT variables. A missing file at path is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				return v
			}
		}
		return ""
	}

	if v := first("ERDSCHEMA_FORMAT"); v != "" {
		c.Format = v
	}
	if v := first("ERDSCHEMA_DATABASE_URL", "DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := first("ERDSCHEMA_SCHEMA"); v != "" {
		c.Schema = v
	}
	if v := first("ERDSCHEMA_STORE"); v != "" {
		c.Store = v
	}
	if v := first("ERDSCHEMA_REDIS_ADDR", "REDIS_ADDR"); v != "" {
		c.Server.RedisAddr = v
	}
	if v := first("ERDSCHEMA_ALLOW_ORIGINS"); v != "" {
		c.Server.AllowOrigins = splitList(v)
	}
	if v := first("ERDSCHEMA_PORT", "PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// DiagramOptions merges the router overrides into the diagram defaults
func (c *Config) DiagramOptions() diagram.Options {
	opts := diagram.DefaultOptions()
	r := c.Router
	if r.GridSize > 0 {
		opts.Route.GridSize = r.GridSize
	}
	if r.ObstacleMargin > 0 {
		opts.Route.ObstacleMargin = r.ObstacleMargin
	}
	if r.MaxIterations > 0 {
		opts.Route.MaxIterations = r.MaxIterations
	}
	if r.Workers > 0 {
		opts.Route.Workers = r.Workers
	}
	if r.EnumEdges != nil {
		opts.EnumEdges = *r.EnumEdges
	}
	return opts
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
