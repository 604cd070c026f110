// Package app wires configuration, logging and the run modes of fibcost.
package app

import (
	"fmt"
	"io"
	"runtime"
	"slices"

	"github.com/agbru/fibcost/internal/fibonacci"
)

// Set at build time, e.g.
//
//	go build -ldflags="-X github.com/agbru/fibcost/internal/app.Version=v1.2.3" ./cmd/fibcost
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionFlags = []string{"--version", "-version", "-V"}

// HasVersionFlag reports whether args ask for the version. The flag may
// appear anywhere, so "fibcost -n 10 --version" prints it too.
func HasVersionFlag(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return slices.Contains(versionFlags, arg)
	})
}

// PrintVersion writes the build metadata and the largest index each
// algorithm accepts.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "fibcost %s (commit %s, built %s)\n", Version, Commit, BuildDate)
	fmt.Fprintf(out, "  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  max n: %s %d, %s %d\n",
		fibonacci.IterativeName, fibonacci.MaxFibUint64,
		fibonacci.RecursiveName, fibonacci.MaxRecursiveIndex)
}
