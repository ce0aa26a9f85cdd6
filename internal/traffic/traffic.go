package traffic

import (
	"sync"
	"time"
)

// outcomeKind tags a recorded request outcome.
type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeError
	outcomeDenied
)

// maxOutcomeAge bounds how long outcomes are retained. Queries never look
// further back than the health window, which is well under this.
const maxOutcomeAge = 5 * time.Minute

var defaultTracker tracker

// RecordSuccess records a successful request outcome.
func RecordSuccess() {
	defaultTracker.record(outcomeSuccess, time.Now())
}

// RecordError records a failed request outcome (upstream error, timeout, etc.).
func RecordError() {
	defaultTracker.record(outcomeError, time.Now())
}

// RecordDenied records a rate-limit denial (429).
func RecordDenied() {
	defaultTracker.record(outcomeDenied, time.Now())
}

// RequestCount returns the number of outcomes of any kind within the window.
func RequestCount(window time.Duration) int {
	s, e, d := defaultTracker.counts(window)
	return s + e + d
}

// DenialCount returns the number of rate-limit denials within the window.
func DenialCount(window time.Duration) int {
	_, _, d := defaultTracker.counts(window)
	return d
}

// ErrorRate returns (errorCount, totalCount) within the window. The total
// covers successes and errors only; denials never enter the error rate, so a
// rate-limited burst cannot flip the service to degraded.
func ErrorRate(window time.Duration) (errors, total int) {
	s, e, _ := defaultTracker.counts(window)
	return e, e + s
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.reset()
}

// tracker is a sliding-window log of request outcomes. It backs the health
// endpoint's error-rate check and the rate-limit load gauges, so all three
// outcome kinds share one timeline and one pruning pass.
type tracker struct {
	mu       sync.Mutex
	outcomes []outcome
}

type outcome struct {
	at   time.Time
	kind outcomeKind
}

func (t *tracker) record(kind outcomeKind, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = append(t.outcomes, outcome{at: now, kind: kind})
	t.pruneLocked(now)
}

// counts tallies outcomes within the window by kind.
func (t *tracker) counts(window time.Duration) (successes, errors, denials int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-window)
	for _, o := range t.outcomes {
		if o.at.Before(cutoff) {
			continue
		}
		switch o.kind {
		case outcomeSuccess:
			successes++
		case outcomeError:
			errors++
		case outcomeDenied:
			denials++
		}
	}
	return successes, errors, denials
}

func (t *tracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = nil
}

// pruneLocked drops outcomes older than maxOutcomeAge. The log is
// append-only, so everything before the first young entry can go at once.
// Must be called with mu held.
func (t *tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-maxOutcomeAge)
	i := 0
	for ; i < len(t.outcomes) && t.outcomes[i].at.Before(cutoff); i++ {
	}
	if i > 0 {
		t.outcomes = append(t.outcomes[:0], t.outcomes[i:]...)
	}
}
