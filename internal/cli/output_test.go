package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/testutil"
	"github.com/agbru/fibcost/internal/ui"
)

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "result.txt")
	m := fibonacci.Measurement{N: 10, Result: 55, Cost: 109}

	if err := WriteResultToFile(m, fibonacci.RecursiveName, path); err != nil {
		t.Fatalf("WriteResultToFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	for _, want := range []string{"# Algorithm: recursive", "# N: 10", "F(10) = 55", "cost = 109 calls"} {
		if !strings.Contains(content, want) {
			t.Errorf("file missing %q:\n%s", want, content)
		}
	}
}

func TestWriteResultToFile_EmptyPath(t *testing.T) {
	t.Parallel()
	if err := WriteResultToFile(fibonacci.Measurement{}, "iterative", ""); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}

func TestWriteResultToFile_BadPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteResultToFile(fibonacci.Measurement{}, "iterative", filepath.Join(blocker, "out.txt")); err == nil {
		t.Error("expected an error when the parent is a regular file")
	}
}

func TestDisplayResultWithConfig(t *testing.T) {
	ui.InitTheme(true)
	m := fibonacci.Measurement{N: 10, Result: 55, Cost: 9}

	t.Run("quiet", func(t *testing.T) {
		var out bytes.Buffer
		path := filepath.Join(t.TempDir(), "r.txt")
		if err := DisplayResultWithConfig(&out, m, "iterative", OutputConfig{Quiet: true, OutputFile: path}); err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != "55 9\n" {
			t.Errorf("quiet output = %q, want %q", got, "55 9\n")
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("result file not written: %v", err)
		}
	})

	t.Run("standard with file", func(t *testing.T) {
		var out bytes.Buffer
		path := filepath.Join(t.TempDir(), "r.txt")
		if err := DisplayResultWithConfig(&out, m, "iterative", OutputConfig{OutputFile: path, Details: true}); err != nil {
			t.Fatal(err)
		}
		testutil.AssertContainsPlain(t, out.String(), "F(10) = 55", "Cost             : 9 steps", "Result saved to: "+path)
	})
}
