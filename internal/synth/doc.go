// Package synth implements the patchbay graph execution engine.
//
// A patch is a set of typed computation modules wired together by the user
// into an arbitrary, possibly cyclic, graph. Each module declares named
// inputs, outputs, and settings once per module type; the engine evaluates
// every live module exactly once per logical step.
//
// ARCHITECTURE:
//
// Single-Threaded Stepping:
// One step is one complete synchronous pass over all live modules in
// insertion order. There is no parallel evaluation within a step - the
// stale/fresh read rule below depends on sequential order, and output cells
// are written exactly once per step by their owning module.
//
// Cycle Semantics:
// Modules are evaluated once per step in a fixed pass, not topologically
// re-settled. A module reading from an output owned by a module evaluated
// later in the pass observes that output's value from the previous step; a
// module reading from one evaluated earlier observes the current step's
// fresh value. Feedback loops therefore evaluate without recursion, at the
// cost of up to one step of latency on edges that run against the pass
// order. The pass order is stable across steps for an unchanged module set.
//
// Error Isolation:
// A module computation failure is captured on that module's LastError slot,
// its output cells keep their previous values for the step, and the pass
// continues with the remaining modules. Failures never propagate out of
// Step. This "log and continue" behavior keeps the whole patch running at
// full rate regardless of how many modules are failing.
//
// Rate Decoupling:
// The external driver ticks at an arbitrary cadence (typically a display
// refresh). RateAdapter converts irregular elapsed wall time into a whole
// number of logical steps at the engine's fixed rate, carrying fractional
// remainders forward so long runs never drift.
//
// Values are github.com/zclconf/go-cty values. Port and setting types are
// nominal cty types; the engine never coerces between them.
package synth
