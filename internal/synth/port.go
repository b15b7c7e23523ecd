package synth

import "github.com/zclconf/go-cty/cty"

// Input is a typed slot a module reads from. An input optionally sources its
// value from exactly one output; when unconnected (or the source has not yet
// produced a value) the declared default is used instead.
type Input struct {
	module *Module
	name   string
	typ    cty.Type
	def    cty.Value
	source *Output
}

// Name returns the declared input name.
func (in *Input) Name() string { return in.name }

// Type returns the declared value type.
func (in *Input) Type() cty.Type { return in.typ }

// Default returns the declared default value.
func (in *Input) Default() cty.Value { return in.def }

// Source returns the output this input currently reads from, or nil.
func (in *Input) Source() *Output { return in.source }

// bind points the input at out, maintaining the output-side back-reference
// set on both the old and the new source. bind(nil) disconnects.
//
// This is the only place either side of the edge is mutated, which keeps the
// input→output pointer and the output→inputs back-set in agreement at every
// observable point.
func (in *Input) bind(out *Output) {
	if in.source != nil {
		delete(in.source.targets, in)
	}
	in.source = out
	if out != nil {
		out.targets[in] = struct{}{}
	}
}

// Output is a typed value cell written by its owning module once per step and
// read by any number of downstream inputs during the same step.
type Output struct {
	module  *Module
	name    string
	typ     cty.Type
	value   cty.Value // cty.NilVal before the first successful evaluation
	targets map[*Input]struct{}
}

// Name returns the declared output name.
func (out *Output) Name() string { return out.name }

// Type returns the declared value type.
func (out *Output) Type() cty.Type { return out.typ }

// Value returns the current cell value, or cty.NilVal if the owning module
// has not produced this output yet.
func (out *Output) Value() cty.Value { return out.value }

// Module returns the module that owns and writes this output.
func (out *Output) Module() *Module { return out.module }
