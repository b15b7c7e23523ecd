package synth

import (
	"fmt"
	"log/slog"

	"github.com/zclconf/go-cty/cty"
)

// Step evaluates every live module once at logical time t, in the stable
// insertion order.
//
// For each module, the effective input bindings are gathered first: a
// connected input reads its source output's current cell value (falling back
// to the declared default until the source has produced a value), an
// unconnected input reads its default. Because the pass order is fixed, an
// edge pointing at a module evaluated later in the pass delivers the
// previous step's value - this is what makes feedback loops well-defined.
//
// A module failure is captured on that module's LastError slot, its outputs
// keep their previous values, and the pass continues. Failures never
// propagate out of Step.
func (s *Synth) Step(t float64) {
	for _, m := range s.modules {
		s.evalModule(m, t)
	}
}

// Run performs exactly n steps, passing each step a logical time obtained by
// evenly subdividing [t0, t1). n <= 0 performs zero steps.
func (s *Synth) Run(n int, t0, t1 float64) {
	if n <= 0 {
		return
	}
	dt := (t1 - t0) / float64(n)
	for i := 0; i < n; i++ {
		s.Step(t0 + float64(i)*dt)
	}
}

func (s *Synth) evalModule(m *Module, t float64) {
	in := make(Values, len(m.inputs))
	for _, p := range m.inputs {
		if p.source != nil && p.source.value != cty.NilVal {
			in[p.name] = p.source.value
		} else {
			in[p.name] = p.def
		}
	}

	out, err := safeEval(m, t, in)
	if err == nil {
		err = checkOutputs(m, out)
	}
	if err != nil {
		wasOK := m.lastErr == nil
		m.lastErr = &StepError{Module: m.spec.Name, Time: t, Err: err}
		if wasOK {
			// Log the transition into the error state once; repeat failures
			// at a high logical rate would otherwise flood the log.
			slog.Warn("module evaluation failed", "module", m.spec.Name, "t", t, "error", err)
		} else {
			slog.Debug("module still failing", "module", m.spec.Name, "t", t, "error", err)
		}
		return
	}

	for name, v := range out {
		m.outputsBy[name].value = v
		m.current[name] = v
	}
	m.lastErr = nil
}

// safeEval invokes the evaluator, converting a panic in module code into an
// ordinary error so one buggy module cannot abort the step.
func safeEval(m *Module, t float64, in Values) (out Values, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic in module evaluator: %v", r)
		}
	}()
	return m.eval.Eval(m, t, in)
}

// checkOutputs verifies that every returned value names a declared output
// and matches its declared type. Violations are authoring bugs surfaced as
// evaluation failures so the offending module is isolated like any other
// failing module.
func checkOutputs(m *Module, out Values) error {
	for name, v := range out {
		o, ok := m.outputsBy[name]
		if !ok {
			return fmt.Errorf("evaluator produced undeclared output %q", name)
		}
		if !v.Type().Equals(o.typ) {
			return fmt.Errorf("output %q: value of type %s does not match declared type %s",
				name, v.Type().FriendlyName(), o.typ.FriendlyName())
		}
	}
	return nil
}
