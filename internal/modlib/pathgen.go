package modlib

import (
	"github.com/roach88/patchbay/internal/synth"
	"github.com/zclconf/go-cty/cty"
)

// PathGen scans a virtual grid one cell per step and emits the pointer
// position as x/y coordinates normalized to [-1, 1). The scan pattern and
// grid resolution are settings; the "reset" trigger returns the pointer to
// the origin.
func PathGen() *synth.Spec {
	return &synth.Spec{
		Name: "pathgen",
		Outputs: []synth.OutputSpec{
			{Name: "x", Type: cty.Number},
			{Name: "y", Type: cty.Number},
		},
		Settings: []synth.SettingSpec{
			synth.EnumSettingSpec{
				Name: "resolution",
				Options: []cty.Value{
					cty.NumberIntVal(100),
					cty.NumberIntVal(200),
					cty.NumberIntVal(300),
				},
				Default: 0,
			},
			synth.EnumSettingSpec{
				Name: "mode",
				Options: []cty.Value{
					cty.StringVal("vertical"),
					cty.StringVal("horizontal"),
					cty.StringVal("boustro (h)"),
					cty.StringVal("boustro (v)"),
				},
				Default: 0,
			},
			synth.TriggerSettingSpec{
				Name: "reset",
				Action: func(m *synth.Module) {
					m.Evaluator().(*pathGen).reset()
				},
			},
		},
		New: func() synth.Evaluator { return &pathGen{} },
	}
}

type pathGen struct {
	x, y int
}

func (p *pathGen) reset() {
	p.x, p.y = 0, 0
}

func (p *pathGen) Eval(m *synth.Module, t float64, in synth.Values) (synth.Values, error) {
	res := int(f64(setting(m, "resolution")))

	switch setting(m, "mode").AsString() {
	case "horizontal":
		p.x = wrap(p.x+1, res)
		if p.x == 0 {
			p.y = wrap(p.y+1, res)
		}
	case "vertical":
		p.y = wrap(p.y+1, res)
		if p.y == 0 {
			p.x = wrap(p.x+1, res)
		}
	case "boustro (h)":
		d := 1
		if p.y%2 != 0 {
			d = -1
		}
		p.x = wrap(p.x+d, res)
		if p.x == 0 {
			p.y = wrap(p.y+1, res)
		}
	case "boustro (v)":
		d := 1
		if p.x%2 != 0 {
			d = -1
		}
		p.y = wrap(p.y+d, res)
		if p.y == 0 {
			p.x = wrap(p.x+1, res)
		}
	}

	half := float64(res) / 2
	return synth.Values{
		"x": cty.NumberFloatVal(float64(p.x)/half - 1),
		"y": cty.NumberFloatVal(float64(p.y)/half - 1),
	}, nil
}

// wrap is a modulo that stays in [0, n) for negative operands.
func wrap(v, n int) int {
	return ((v % n) + n) % n
}
