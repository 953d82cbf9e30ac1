package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables tasted reads.
const envPrefix = "TASTED_"

const maxConfigFileSize = 1 << 20

// Load merges defaults, an optional YAML file, and TASTED_-prefixed
// environment variables, highest precedence last.
//
// Environment variables map to config paths by stripping the prefix,
// lowercasing, and splitting on the first underscore:
//
//	TASTED_LOGGING_LEVEL      -> logging.level
//	TASTED_GROUP_STRATEGY     -> group.strategy
//	TASTED_GENERATOR_API_KEY  -> generator.api_key
//
// A missing config file is not an error; an unreadable or invalid one is.
// Validation failures are returned as errors: bad config is fatal at
// startup, never deferred to request time.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		info, err := os.Stat(configPath)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment only.
		case err != nil:
			return nil, fmt.Errorf("stat config file: %w", err)
		case info.Size() > maxConfigFileSize:
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		default:
			content, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
