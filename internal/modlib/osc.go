package modlib

import (
	"math"

	"github.com/roach88/patchbay/internal/synth"
	"github.com/zclconf/go-cty/cty"
)

// Osc is a waveform oscillator: out = wave(t * frequency), with the wave
// shape selected by the "waveform" enum setting.
func Osc() *synth.Spec {
	return &synth.Spec{
		Name: "osc",
		Inputs: []synth.InputSpec{
			{Name: "frequency", Type: cty.Number, Default: cty.NumberFloatVal(1)},
		},
		Outputs: []synth.OutputSpec{
			{Name: "out", Type: cty.Number},
		},
		Settings: []synth.SettingSpec{
			synth.EnumSettingSpec{
				Name: "waveform",
				Options: []cty.Value{
					cty.StringVal("sin"),
					cty.StringVal("tri"),
					cty.StringVal("saw"),
					cty.StringVal("squ"),
				},
				Default: 0,
			},
		},
		New: func() synth.Evaluator { return osc{} },
	}
}

type osc struct{}

func (osc) Eval(m *synth.Module, t float64, in synth.Values) (synth.Values, error) {
	x := t * f64(in["frequency"])

	var y float64
	switch setting(m, "waveform").AsString() {
	case "sin":
		y = math.Sin(x)
	case "tri":
		y = math.Abs(pmod(2*x/math.Pi, 4)-2) - 1
	case "saw":
		y = pmod(x/math.Pi, 2) - 1
	case "squ":
		if pmod(x, 2*math.Pi) < math.Pi {
			y = 1
		} else {
			y = -1
		}
	}
	return synth.Values{"out": cty.NumberFloatVal(y)}, nil
}

// pmod is a modulo that stays in [0, n) for negative operands.
func pmod(v, n float64) float64 {
	r := math.Mod(v, n)
	if r < 0 {
		r += n
	}
	return r
}
