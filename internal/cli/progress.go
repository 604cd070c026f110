package cli

import (
	"fmt"
	"sync"
	"time"
)

// ProgressState aggregates the progress of concurrent calculations and
// estimates the remaining time.
//
// The recursive algorithm reports progress as calls made over calls
// expected, and calls are made at a steady rate, so a linear extrapolation
// from the elapsed time is a good estimate.
type ProgressState struct {
	mu         sync.Mutex
	progresses []float64
	start      time.Time
	now        func() time.Time
}

// NewProgressState creates a tracker for numCalculators calculations.
func NewProgressState(numCalculators int) *ProgressState {
	if numCalculators < 0 {
		numCalculators = 0
	}
	return &ProgressState{
		progresses: make([]float64, numCalculators),
		start:      time.Now(),
		now:        time.Now,
	}
}

// Update records the progress of one calculator. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// Average returns the mean progress over all calculators.
func (ps *ProgressState) Average() float64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.averageLocked()
}

func (ps *ProgressState) averageLocked() float64 {
	if len(ps.progresses) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

// ETA extrapolates the remaining time from the elapsed time and the average
// progress. It returns 0 while there is not enough data, and caps the
// estimate at 24 hours.
func (ps *ProgressState) ETA() time.Duration {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	progress := ps.averageLocked()
	elapsed := ps.now().Sub(ps.start)
	if progress <= 0.001 || progress >= 1.0 || elapsed < 100*time.Millisecond {
		return 0
	}
	eta := time.Duration(float64(elapsed) * (1 - progress) / progress)
	if eta > 24*time.Hour {
		eta = 24 * time.Hour
	}
	return eta
}

// FormatETA formats a remaining-time estimate: "calculating..." when
// unknown, "< 1s", "42s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		minutes := int(eta.Minutes())
		if seconds := int(eta.Seconds()) % 60; seconds > 0 {
			return fmt.Sprintf("%dm%ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}
	hours := int(eta.Hours())
	if minutes := int(eta.Minutes()) % 60; minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}
