package modlib

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/roach88/patchbay/internal/synth"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Expr evaluates a user-supplied HCL expression over the variables `in` (the
// input value) and `t` (the logical time): out = expr(in, t).
//
// The expression source lives in the "expr" text setting. Compilation is
// expensive relative to a tick, so the compiled form is cached and rebuilt
// in the SettingChanged reaction rather than on every evaluation. A source
// that fails to compile puts the module into the error state until the
// setting is fixed; the engine keeps the rest of the patch running.
func Expr() *synth.Spec {
	return &synth.Spec{
		Name: "expr",
		Inputs: []synth.InputSpec{
			{Name: "in", Type: cty.Number, Default: cty.NumberFloatVal(0)},
		},
		Outputs: []synth.OutputSpec{
			{Name: "out", Type: cty.Number},
		},
		Settings: []synth.SettingSpec{
			synth.TextSettingSpec{Name: "expr", Default: "in"},
		},
		New: func() synth.Evaluator { return &expr{} },
	}
}

type expr struct {
	prog       hcl.Expression
	compileErr error
	compiled   bool
}

// SettingChanged recompiles the cached expression when the source changes.
func (e *expr) SettingChanged(m *synth.Module, name string) {
	if name != "expr" {
		return
	}
	s, err := m.Setting("expr")
	if err != nil {
		return
	}
	e.compile(s.(*synth.TextSetting).Text())
}

func (e *expr) compile(src string) {
	e.compiled = true
	prog, diags := hclsyntax.ParseExpression([]byte(src), "expr", hcl.InitialPos)
	if diags.HasErrors() {
		e.prog, e.compileErr = nil, diags
		return
	}
	e.prog, e.compileErr = prog, nil
}

func (e *expr) Eval(m *synth.Module, t float64, in synth.Values) (synth.Values, error) {
	if !e.compiled {
		// First evaluation: compile the declared default lazily.
		s, err := m.Setting("expr")
		if err != nil {
			return nil, err
		}
		e.compile(s.(*synth.TextSetting).Text())
	}
	if e.compileErr != nil {
		return nil, fmt.Errorf("compile expression: %w", e.compileErr)
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"in": in["in"],
			"t":  cty.NumberFloatVal(t),
		},
	}
	v, diags := e.prog.Value(ctx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluate expression: %w", diags)
	}
	v, err := convert.Convert(v, cty.Number)
	if err != nil {
		return nil, fmt.Errorf("expression result: %w", err)
	}
	return synth.Values{"out": v}, nil
}
