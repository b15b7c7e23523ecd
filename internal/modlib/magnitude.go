package modlib

import (
	"github.com/roach88/patchbay/internal/synth"
	"github.com/zclconf/go-cty/cty"
)

// Magnitude is a constant source emitting one of a decade ladder of values,
// selected by its enum setting. Useful as a patchable scale factor.
func Magnitude() *synth.Spec {
	return &synth.Spec{
		Name: "magnitude",
		Outputs: []synth.OutputSpec{
			{Name: "out", Type: cty.Number},
		},
		Settings: []synth.SettingSpec{
			synth.EnumSettingSpec{
				Name: "value",
				Options: []cty.Value{
					cty.NumberFloatVal(0.0001),
					cty.NumberFloatVal(0.001),
					cty.NumberFloatVal(0.01),
					cty.NumberFloatVal(0.1),
					cty.NumberFloatVal(1),
					cty.NumberFloatVal(10),
					cty.NumberFloatVal(100),
					cty.NumberFloatVal(1000),
					cty.NumberFloatVal(10000),
				},
				Default: 4,
			},
		},
		New: func() synth.Evaluator { return magnitude{} },
	}
}

type magnitude struct{}

func (magnitude) Eval(m *synth.Module, t float64, in synth.Values) (synth.Values, error) {
	return synth.Values{"out": setting(m, "value")}, nil
}
