package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"bedrockproxy/pkg/types"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified"; Default supplies the built-in values and
// Merge layers a more specific source on top.
type Config struct {
	Addr                 string        `json:"addr" yaml:"addr" toml:"addr"`
	Region               string        `json:"region" yaml:"region" toml:"region"`
	EndpointURL          string        `json:"endpoint_url" yaml:"endpoint_url" toml:"endpoint_url"`
	DefaultModel         string        `json:"default_model" yaml:"default_model" toml:"default_model"`
	MaxBodyBytes         int64         `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	StreamTimeoutSeconds int64         `json:"stream_timeout_seconds" yaml:"stream_timeout_seconds" toml:"stream_timeout_seconds"`
	LogLevel             string        `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat            string        `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSEnabled          *bool         `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins   []string      `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods   []string      `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders   []string      `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`
	Tracing              bool          `json:"tracing" yaml:"tracing" toml:"tracing"`
	Models               []types.Model `json:"models" yaml:"models" toml:"models"`
}

// Default returns the built-in configuration: listen on :8000, Bedrock in
// ca-central-1, CORS open to every origin.
func Default() Config {
	enabled := true
	return Config{
		Addr:               ":8000",
		Region:             "ca-central-1",
		MaxBodyBytes:       1 << 20,
		LogLevel:           "info",
		LogFormat:          "json",
		CORSEnabled:        &enabled,
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		CORSAllowedHeaders: []string{"*"},
	}
}

// Merge returns c with every non-zero field of o applied on top.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.Region != "" {
		c.Region = o.Region
	}
	if o.EndpointURL != "" {
		c.EndpointURL = o.EndpointURL
	}
	if o.DefaultModel != "" {
		c.DefaultModel = o.DefaultModel
	}
	if o.MaxBodyBytes != 0 {
		c.MaxBodyBytes = o.MaxBodyBytes
	}
	if o.StreamTimeoutSeconds != 0 {
		c.StreamTimeoutSeconds = o.StreamTimeoutSeconds
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.CORSEnabled != nil {
		v := *o.CORSEnabled
		c.CORSEnabled = &v
	}
	if len(o.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = append([]string(nil), o.CORSAllowedOrigins...)
	}
	if len(o.CORSAllowedMethods) > 0 {
		c.CORSAllowedMethods = append([]string(nil), o.CORSAllowedMethods...)
	}
	if len(o.CORSAllowedHeaders) > 0 {
		c.CORSAllowedHeaders = append([]string(nil), o.CORSAllowedHeaders...)
	}
	if o.Tracing {
		c.Tracing = true
	}
	if len(o.Models) > 0 {
		c.Models = append([]types.Model(nil), o.Models...)
	}
	return c
}

// CORS reports whether the CORS middleware should be installed.
func (c Config) CORS() bool { return c.CORSEnabled != nil && *c.CORSEnabled }

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
