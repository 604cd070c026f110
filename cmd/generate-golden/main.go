package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

// GoldenData represents a single test case in the golden file.
type GoldenData struct {
	N             int     `json:"n"`
	Result        uint64  `json:"result"`
	IterativeCost uint64  `json:"iterative_cost"`
	RecursiveCost *uint64 `json:"recursive_cost,omitempty"`
}

// maxRecursiveIndex is the largest n whose recursive call count fits in a
// uint64.
const maxRecursiveIndex = 92

func main() {
	outputDir := flag.String("out", "internal/fibonacci/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "fibonacci_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Every index up to 30, then samples up to the last one that fits in
	// a uint64.
	var targets []int
	for n := 0; n <= 30; n++ {
		targets = append(targets, n)
	}
	targets = append(targets, 35, 40, 50, 64, 80, 90, 92, 93)

	data := make([]GoldenData, 0, len(targets))
	fmt.Println("Generating golden data...")

	for _, n := range targets {
		entry, err := goldenEntry(n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating F(%d): %v\n", n, err)
			os.Exit(1)
		}
		data = append(data, entry)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated %d entries in %s\n", len(data), filename)
}

// goldenEntry computes F(n) and both costs with math/big, independently of
// the algorithms under test.
func goldenEntry(n int) (GoldenData, error) {
	f := fibBig(n)
	if !f.IsUint64() {
		return GoldenData{}, fmt.Errorf("F(%d) does not fit in 64 bits", n)
	}

	entry := GoldenData{N: n, Result: f.Uint64(), IterativeCost: 1}
	if n >= 2 {
		entry.IterativeCost = uint64(n - 1)
	}

	if n <= maxRecursiveIndex {
		// recursive(n) makes 2F(n)-1 calls, and one call for n = 0.
		calls := uint64(1)
		if n > 0 {
			c := new(big.Int).Lsh(f, 1)
			calls = c.Sub(c, big.NewInt(1)).Uint64()
		}
		entry.RecursiveCost = &calls
	}
	return entry, nil
}

// fibBig calculates the nth Fibonacci number using math/big (iterative implementation).
// This serves as our "Oracle" using the standard library.
func fibBig(n int) *big.Int {
	a := big.NewInt(0)
	b := big.NewInt(1)
	if n == 0 {
		return a
	}

	for i := 2; i <= n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return b
}
