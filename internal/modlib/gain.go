package modlib

import (
	"github.com/roach88/patchbay/internal/synth"
	"github.com/zclconf/go-cty/cty"
)

// Gain scales its input by the "gain" value setting: out = in * gain.
func Gain() *synth.Spec {
	return &synth.Spec{
		Name: "gain",
		Inputs: []synth.InputSpec{
			{Name: "in", Type: cty.Number, Default: cty.NumberFloatVal(0)},
		},
		Outputs: []synth.OutputSpec{
			{Name: "out", Type: cty.Number},
		},
		Settings: []synth.SettingSpec{
			synth.ValueSettingSpec{Name: "gain", Type: cty.Number, Default: cty.NumberFloatVal(1)},
		},
		New: func() synth.Evaluator { return gain{} },
	}
}

type gain struct{}

func (gain) Eval(m *synth.Module, t float64, in synth.Values) (synth.Values, error) {
	return synth.Values{
		"out": cty.NumberFloatVal(f64(in["in"]) * f64(setting(m, "gain"))),
	}, nil
}
