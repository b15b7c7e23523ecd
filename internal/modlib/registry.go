package modlib

import (
	"sort"

	"github.com/roach88/patchbay/internal/synth"
	"github.com/zclconf/go-cty/cty"
)

// builtins maps module type names to spec constructors.
var builtins = map[string]func() *synth.Spec{
	"osc":       Osc,
	"pathgen":   PathGen,
	"magnitude": Magnitude,
	"gain":      Gain,
	"expr":      Expr,
}

// Names returns the builtin module type names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the spec constructor for a builtin module type.
func Lookup(name string) (func() *synth.Spec, bool) {
	fn, ok := builtins[name]
	return fn, ok
}

func f64(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}

func setting(m *synth.Module, name string) cty.Value {
	s, err := m.Setting(name)
	if err != nil {
		// Builtins only look up settings they declare themselves.
		panic(err)
	}
	return s.Value()
}
