package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/pcfguess/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeConfig(t, `
grammar = "grammars/rockyou"
algorithm = "deadbeat"
mangle = true
limit = 100
min_length = 6
min_probability = 1e-9
redis_key = "run:1"
redis_ttl = "90m"
`)
	p, err := loadProfile(path)
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	if p.Grammar != "grammars/rockyou" || p.Algorithm != "deadbeat" || p.RedisKey != "run:1" {
		t.Errorf("strings = %+v", p)
	}
	if p.Mangle == nil || !*p.Mangle {
		t.Error("mangle not set")
	}
	if p.Limit == nil || *p.Limit != 100 {
		t.Errorf("limit = %v", p.Limit)
	}
	if p.MinLength == nil || *p.MinLength != 6 {
		t.Errorf("min_length = %v", p.MinLength)
	}
	if p.MinProbability == nil || *p.MinProbability != 1e-9 {
		t.Errorf("min_probability = %v", p.MinProbability)
	}
	if p.RedisTTL != 90*time.Minute {
		t.Errorf("redis_ttl = %v, want 90m", p.RedisTTL)
	}
	if p.Probabilities != nil {
		t.Error("probabilities set without a key")
	}

	empty, err := loadProfile("")
	if err != nil || empty.Limit != nil || empty.Grammar != "" {
		t.Errorf("empty path = %+v, %v", empty, err)
	}
}

func TestLoadProfileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"zero limit", "limit = 0", errors.ErrCodeInvalidConfig},
		{"negative limit", "limit = -10", errors.ErrCodeInvalidConfig},
		{"unknown key", "limti = 10", errors.ErrCodeInvalidConfig},
		{"bad toml", "limit = ", errors.ErrCodeInvalidConfig},
		{"wrong type", `mangle = "yes"`, errors.ErrCodeInvalidConfig},
		{"negative ttl", `redis_ttl = "-1h"`, errors.ErrCodeInvalidConfig},
		{"bad ttl", `redis_ttl = "soon"`, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadProfile(writeConfig(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	_, err := loadProfile(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestProfileApplyEnv(t *testing.T) {
	t.Setenv(envPrefix+"GRAMMAR", "/env/grammar")
	t.Setenv(envPrefix+"REDIS_URL", "")

	p := &profile{Grammar: "/profile/grammar", RedisURL: "redis://profile"}
	p.applyEnv()
	if p.Grammar != "/env/grammar" {
		t.Errorf("Grammar = %q, want env override", p.Grammar)
	}
	if p.RedisURL != "redis://profile" {
		t.Errorf("RedisURL = %q, empty env must not override", p.RedisURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = envPrefix + "DOTENV_TEST"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := loadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q", key, got)
	}

	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env: %v", err)
	}
}

func TestGenerateWithProfile(t *testing.T) {
	dir := writeGrammar(t)
	cfg := writeConfig(t, "grammar = \""+filepath.ToSlash(dir)+"\"\nlimit = 2\nmangle = true\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"profile only", []string{"--config", cfg, "gen"}, "cat1\nCAT1\n"},
		{"flag overrides limit", []string{"--config", cfg, "gen", "-n", "3"}, "cat1\nCAT1\nCat1\n"},
		{"flag overrides mangle", []string{"--config", cfg, "gen", "--mangle=false"}, "cat1\ndog1\n"},
		{"argument overrides grammar", []string{"--config", cfg, "gen", dir, "-n", "1"}, "cat1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}
