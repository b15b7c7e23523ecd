package synth

import "math"

// RateAdapter converts an externally-supplied, possibly irregular, elapsed
// amount of wall time into a whole number of logical steps at a fixed rate.
//
// The host ticks at whatever cadence it likes (typically a display refresh)
// and asks StepsDue how many logical steps have become due. The adapter only
// ever advances by whole steps - the fractional remainder stays behind and
// accumulates - so the total step count over any sequence of calls is
// floor(elapsed * rate) regardless of how the elapsed time was chunked
// across calls. No drift over arbitrarily long runs.
//
// Thread-safety: none. The host owns one adapter per synth and queries it
// from its run-loop goroutine.
type RateAdapter struct {
	rate    float64
	origin  float64 // external time of the first query
	emitted int64   // whole steps reported since origin
	started bool
}

// NewRateAdapter creates an adapter for the given logical rate (steps per
// unit of external time). A rate <= 0 never produces steps.
func NewRateAdapter(rate float64) *RateAdapter {
	return &RateAdapter{rate: rate}
}

// Rate returns the fixed logical rate.
func (a *RateAdapter) Rate() float64 { return a.rate }

// StepsDue returns how many whole logical steps have elapsed since the last
// call.
//
// The very first call returns 0 regardless of now: it establishes the time
// origin rather than retroactively catching up on a history the adapter
// never observed. The step cursor (origin + emitted/rate) trails now by the
// not-yet-due fraction of a step. If now moves backwards, zero steps are
// reported and the cursor stays put.
func (a *RateAdapter) StepsDue(now float64) int {
	if a.rate <= 0 {
		return 0
	}
	if !a.started {
		a.started = true
		a.origin = now
		return 0
	}
	due := int64(math.Floor((now-a.origin)*a.rate)) - a.emitted
	if due <= 0 {
		return 0
	}
	a.emitted += due
	return int(due)
}
