package main

import (
	"fmt"
	"strconv"
	"strings"

	"bedrockproxy/internal/common/fsutil"
	"bedrockproxy/internal/config"
)

const envPrefix = "BEDROCKPROXY_"

type lookupFunc func(string) (string, bool)

// resolveConfig layers defaults, the config file, the environment and flags,
// in that order. It also returns the config file path used, if any.
func resolveConfig(o *options, lookup lookupFunc) (config.Config, string, error) {
	cfg := config.Default()
	path, err := fsutil.ResolveConfigPath(o.configPath, fsutil.DefaultConfigPaths...)
	if err != nil {
		return cfg, "", err
	}
	if path != "" {
		fc, err := config.Load(path)
		if err != nil {
			return cfg, path, err
		}
		cfg = cfg.Merge(fc)
	}
	ec, err := envConfig(lookup)
	if err != nil {
		return cfg, path, err
	}
	cfg = cfg.Merge(ec)
	return cfg.Merge(o.overlay()), path, nil
}

func (o *options) overlay() config.Config {
	return config.Config{
		Addr:                 o.addr,
		Region:               o.region,
		EndpointURL:          o.endpointURL,
		DefaultModel:         o.defaultModel,
		LogLevel:             o.logLevel,
		LogFormat:            o.logFormat,
		CORSAllowedOrigins:   splitCSV(o.corsOrigins),
		MaxBodyBytes:         o.maxBodyBytes,
		StreamTimeoutSeconds: o.streamTimeoutSeconds,
		Tracing:              o.tracing,
	}
}

// envConfig reads BEDROCKPROXY_* variables. AWS credentials and profile
// selection stay with the SDK's own AWS_* variables.
func envConfig(lookup lookupFunc) (config.Config, error) {
	get := func(name string) string {
		v, _ := lookup(envPrefix + name)
		return strings.TrimSpace(v)
	}
	c := config.Config{
		Addr:               get("ADDR"),
		Region:             get("REGION"),
		EndpointURL:        get("ENDPOINT_URL"),
		DefaultModel:       get("DEFAULT_MODEL"),
		LogLevel:           get("LOG_LEVEL"),
		LogFormat:          get("LOG_FORMAT"),
		CORSAllowedOrigins: splitCSV(get("CORS_ORIGINS")),
	}
	var err error
	if c.MaxBodyBytes, err = envInt(get, "MAX_BODY_BYTES"); err != nil {
		return c, err
	}
	if c.StreamTimeoutSeconds, err = envInt(get, "STREAM_TIMEOUT_SECONDS"); err != nil {
		return c, err
	}
	if v := get("CORS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("%sCORS_ENABLED: %w", envPrefix, err)
		}
		c.CORSEnabled = &b
	}
	if v := get("TRACING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("%sTRACING: %w", envPrefix, err)
		}
		c.Tracing = b
	}
	return c, nil
}

func envInt(get func(string) string, name string) (int64, error) {
	v := get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	return n, nil
}

// splitCSV splits a comma-separated list, dropping blanks.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
