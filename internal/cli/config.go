package cli

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/pcfguess/pkg/errors"
)

// profile holds run defaults read from a TOML file. Pointer fields
// distinguish "unset" from zero values so an explicit limit = 0 can be
// rejected.
//
// Example:
//
//	grammar         = "grammars/rockyou"
//	algorithm       = "pivot-forward"
//	mangle          = true
//	limit           = 1000000
//	min_length      = 6
//	min_probability = 1e-12
//	probabilities   = false
//	output          = "guesses.txt"
//	redis_url       = "redis://localhost:6379/0"
//	redis_key       = "pcfguess:rockyou"
//	redis_ttl       = "24h"
type profile struct {
	Grammar        string   `toml:"grammar"`
	Algorithm      string   `toml:"algorithm"`
	Mangle         *bool    `toml:"mangle"`
	Limit          *int64   `toml:"limit"`
	MinLength      *int     `toml:"min_length"`
	MinProbability *float64 `toml:"min_probability"`
	Probabilities  *bool    `toml:"probabilities"`
	Output         string   `toml:"output"`
	RedisURL       string   `toml:"redis_url"`
	RedisKey       string   `toml:"redis_key"`
	// RedisTTL is a Go duration string such as "90m".
	RedisTTL time.Duration `toml:"redis_ttl"`
}

// loadProfile decodes the TOML file at path. An empty path yields an
// empty profile. Unknown keys are rejected so typos do not pass silently.
func loadProfile(path string) (*profile, error) {
	p := &profile{}
	if path == "" {
		return p, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	md, err := toml.DecodeFile(path, p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if p.Limit != nil && *p.Limit <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "config %s: limit must be positive (got %d); omit it for no limit", path, *p.Limit)
	}
	if p.RedisTTL < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "config %s: redis_ttl must not be negative (got %s)", path, p.RedisTTL)
	}
	return p, nil
}

// applyEnv overrides profile values with PCFGUESS_* environment variables.
func (p *profile) applyEnv() {
	if v := os.Getenv(envPrefix + "GRAMMAR"); v != "" {
		p.Grammar = v
	}
	if v := os.Getenv(envPrefix + "REDIS_URL"); v != "" {
		p.RedisURL = v
	}
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return nil
}
