package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/fibcost/internal/errors"
)

var availableAlgos = []string{"iterative", "recursive"}

func TestParseConfig(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		cfg, err := ParseConfig("fibcost", nil, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != DefaultN {
			t.Errorf("Expected default N %d, got %d", DefaultN, cfg.N)
		}
		if cfg.Algo != "all" {
			t.Errorf("Expected default Algo 'all', got %s", cfg.Algo)
		}
		if cfg.Timeout != time.Minute {
			t.Errorf("Expected default Timeout 1m, got %v", cfg.Timeout)
		}
		if cfg.MaxRecursiveN != DefaultMaxRecursiveN {
			t.Errorf("Expected default MaxRecursiveN %d, got %d", DefaultMaxRecursiveN, cfg.MaxRecursiveN)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("Expected default LogLevel info, got %s", cfg.LogLevel)
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		args := []string{
			"-n", "25",
			"-algo", "Recursive",
			"-d",
			"-timeout", "10s",
			"-sweep",
			"-server",
			"-port", "9090",
			"-max-recursive-n", "30",
			"-q",
			"-o", "out.txt",
		}
		cfg, err := ParseConfig("fibcost", args, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := AppConfig{
			N: 25, Algo: "recursive", Details: true, Timeout: 10 * time.Second,
			Sweep: true, ServerMode: true, Port: "9090", MaxRecursiveN: 30,
			Quiet: true, OutputFile: "out.txt", LogLevel: DefaultLogLevel,
		}
		if cfg != want {
			t.Errorf("got %+v\nwant %+v", cfg, want)
		}
	})

	t.Run("Help", func(t *testing.T) {
		var buf strings.Builder
		_, err := ParseConfig("fibcost", []string{"-h"}, &buf, availableAlgos)
		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("expected flag.ErrHelp, got %v", err)
		}
		if !strings.Contains(buf.String(), "Usage:") || !strings.Contains(buf.String(), "-max-recursive-n") {
			t.Errorf("usage output incomplete: %q", buf.String())
		}
	})

	t.Run("VersionFlagAccepted", func(t *testing.T) {
		if _, err := ParseConfig("fibcost", []string{"-version"}, io.Discard, availableAlgos); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestParseConfigInvalid(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"UnknownFlag", []string{"-threshold", "4096"}},
		{"NonIntegerN", []string{"-n", "ten"}},
		{"NegativeN", []string{"-n", "-1"}},
		{"OverflowingN", []string{"-n", "94"}},
		{"UnknownAlgo", []string{"-algo", "matrix"}},
		{"ZeroTimeout", []string{"-timeout", "0s"}},
		{"MaxRecursiveTooLarge", []string{"-max-recursive-n", "93"}},
		{"UnsupportedShell", []string{"-completion", "powershell"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseConfig("fibcost", tc.args, io.Discard, availableAlgos); err == nil {
				t.Errorf("expected error for args %v", tc.args)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	base := AppConfig{N: 10, Algo: "all", Timeout: time.Second, MaxRecursiveN: 35}

	if err := base.Validate(availableAlgos); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := base
	bad.Algo = "fast"
	err := bad.Validate(availableAlgos)
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !strings.Contains(cfgErr.Message, "iterative, recursive") {
		t.Errorf("error should list valid algorithms: %q", cfgErr.Message)
	}

	edge := base
	edge.N = 93
	if err := edge.Validate(availableAlgos); err != nil {
		t.Errorf("n=93 should be accepted: %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("FIBCOST_N", "12")
	t.Setenv("FIBCOST_ALGO", "iterative")
	t.Setenv("FIBCOST_TIMEOUT", "5s")
	t.Setenv("FIBCOST_JSON", "yes")
	t.Setenv("FIBCOST_MAX_RECURSIVE_N", "20")
	t.Setenv("FIBCOST_LOG_LEVEL", "debug")

	cfg, err := ParseConfig("fibcost", []string{"-n", "15"}, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.N != 15 {
		t.Errorf("flag should win over environment, got N=%d", cfg.N)
	}
	if cfg.Algo != "iterative" || cfg.Timeout != 5*time.Second || !cfg.JSONOutput {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.MaxRecursiveN != 20 || cfg.LogLevel != "debug" {
		t.Errorf("environment not applied: %+v", cfg)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("FIBCOST_TEST_INT", "abc")
	t.Setenv("FIBCOST_TEST_BOOL", "maybe")
	t.Setenv("FIBCOST_TEST_DUR", "forever")

	if got := getEnvInt("TEST_INT", 7); got != 7 {
		t.Errorf("invalid int should fall back, got %d", got)
	}
	if got := getEnvBool("TEST_BOOL", true); !got {
		t.Error("invalid bool should fall back")
	}
	if got := getEnvDuration("TEST_DUR", time.Second); got != time.Second {
		t.Errorf("invalid duration should fall back, got %v", got)
	}
	if got := getEnvString("TEST_UNSET", "def"); got != "def" {
		t.Errorf("unset string should fall back, got %q", got)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fibcost.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
n: 32
algo: recursive
timeout: 90s
details: true
log_level: warn
server:
  port: "7070"
  max_recursive_n: 28
`)

	t.Run("FileValues", func(t *testing.T) {
		cfg, err := ParseConfig("fibcost", []string{"-config", path}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 32 || cfg.Algo != "recursive" || cfg.Timeout != 90*time.Second || !cfg.Details {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.Port != "7070" || cfg.MaxRecursiveN != 28 || cfg.LogLevel != "warn" {
			t.Errorf("nested file values not applied: %+v", cfg)
		}
	})

	t.Run("Priority", func(t *testing.T) {
		t.Setenv("FIBCOST_ALGO", "iterative")
		cfg, err := ParseConfig("fibcost", []string{"-config", path, "-n", "5"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 5 {
			t.Errorf("flag should win over file, got N=%d", cfg.N)
		}
		if cfg.Algo != "iterative" {
			t.Errorf("environment should win over file, got Algo=%s", cfg.Algo)
		}
	})

	t.Run("FromEnvironment", func(t *testing.T) {
		t.Setenv("FIBCOST_CONFIG", path)
		cfg, err := ParseConfig("fibcost", nil, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 32 {
			t.Errorf("FIBCOST_CONFIG file not loaded, got N=%d", cfg.N)
		}
	})
}

func TestConfigFileErrors(t *testing.T) {
	_, err := ParseConfig("fibcost", []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, io.Discard, availableAlgos)
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("missing file should be a ConfigError, got %v", err)
	}

	typo := writeConfigFile(t, "algoritm: recursive\n")
	if _, err := LoadFile(typo); err == nil {
		t.Error("unknown key should be rejected")
	}

	badDuration := writeConfigFile(t, "timeout: soon\n")
	if _, err := LoadFile(badDuration); err == nil {
		t.Error("invalid duration should be rejected")
	}

	empty := writeConfigFile(t, "")
	if fc, err := LoadFile(empty); err != nil || fc.N != nil {
		t.Errorf("empty file should decode to zero config, got %+v, %v", fc, err)
	}
}
