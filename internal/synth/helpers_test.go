package synth

import (
	"github.com/zclconf/go-cty/cty"
)

// evalFunc adapts a plain function to the Evaluator interface for tests.
type evalFunc func(m *Module, t float64, in Values) (Values, error)

func (f evalFunc) Eval(m *Module, t float64, in Values) (Values, error) {
	return f(m, t, in)
}

func num(f float64) cty.Value { return cty.NumberFloatVal(f) }

func asFloat(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}

// constSpec emits a fixed number on "out" every step.
func constSpec(name string, v float64) *Spec {
	return &Spec{
		Name:    name,
		Outputs: []OutputSpec{{Name: "out", Type: cty.Number}},
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				return Values{"out": num(v)}, nil
			})
		},
	}
}

// passSpec copies "in" to "out".
func passSpec(name string) *Spec {
	return &Spec{
		Name:    name,
		Inputs:  []InputSpec{{Name: "in", Type: cty.Number, Default: num(0)}},
		Outputs: []OutputSpec{{Name: "out", Type: cty.Number}},
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				return Values{"out": in["in"]}, nil
			})
		},
	}
}

// addOneSpec emits in + 1 on "out".
func addOneSpec(name string) *Spec {
	return &Spec{
		Name:    name,
		Inputs:  []InputSpec{{Name: "in", Type: cty.Number, Default: num(0)}},
		Outputs: []OutputSpec{{Name: "out", Type: cty.Number}},
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				return Values{"out": num(asFloat(in["in"]) + 1)}, nil
			})
		},
	}
}

// checkBidirectional asserts the output→inputs back-set agrees with every
// input's source pointer, across the whole graph.
func checkBidirectional(s *Synth) bool {
	for _, m := range s.modules {
		for _, out := range m.outputs {
			for in := range out.targets {
				if in.source != out {
					return false
				}
			}
		}
		for _, in := range m.inputs {
			if in.source != nil {
				if _, ok := in.source.targets[in]; !ok {
					return false
				}
			}
		}
	}
	return true
}
