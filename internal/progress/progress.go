// Package progress renders the pack pipeline's rate-limited spinner: a
// non-blocking entry counter plus the most recently processed relative
// path, per spec.md §5 ("a thread-safe counter plus a rate-limited
// spinner rendering the most recent path; increments are non-blocking").
package progress

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Reporter tracks how many archive entries a pack run has emitted and
// renders a spinner showing the most recent one. All methods are no-ops
// when disabled, so callers don't need to branch on the --quiet flag
// themselves. Count is safe to read concurrently; Advance/Finish are only
// ever called from the writer goroutine.
type Reporter struct {
	bar     *progressbar.ProgressBar
	entries atomic.Int64
	op      string
}

// New creates a Reporter labeling its spinner with op (e.g. "pack"). If
// enabled is false, every method on the returned Reporter is a no-op.
func New(enabled bool, op string) *Reporter {
	if !enabled {
		return &Reporter{}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(false),
	)
	return &Reporter{bar: bar, op: op}
}

// Advance records that one more archive entry (identified by relPath) has
// been written and refreshes the spinner's description.
func (r *Reporter) Advance(relPath string) {
	if r.bar == nil {
		return
	}
	n := r.entries.Add(1)
	r.bar.Describe(fmt.Sprintf("%s: %d entries, %s", r.op, n, relPath))
}

// Count returns the number of entries advanced so far.
func (r *Reporter) Count() int64 {
	return r.entries.Load()
}

// Finish stops the spinner and prints a final summary line.
func (r *Reporter) Finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	fmt.Fprintf(os.Stderr, "zstar: done — %s finished, %d entries\n", r.op, r.entries.Load())
}
