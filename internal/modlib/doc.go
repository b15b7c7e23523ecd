// Package modlib is the builtin module library: content built on top of the
// synth engine contract, not part of the engine itself.
//
// Each builtin exposes a function returning a fresh *synth.Spec. Specs are
// declaration data only; all per-instance state lives in the evaluator the
// spec's New constructor allocates, so instances never share state.
package modlib
