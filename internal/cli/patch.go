package cli

import (
	"fmt"
	"sort"

	"github.com/roach88/patchbay/internal/modlib"
	"github.com/roach88/patchbay/internal/synth"
)

// Demo patches for the run command. A real host would let the user wire the
// graph interactively; the CLI ships a few canned patches instead.
var patches = map[string]func(*synth.Synth) error{
	"demo":    buildDemoPatch,
	"counter": buildCounterPatch,
}

// PatchNames returns the available demo patch names, sorted.
func PatchNames() []string {
	names := make([]string, 0, len(patches))
	for name := range patches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildPatch wires the named demo patch into s.
func BuildPatch(s *synth.Synth, name string) error {
	build, ok := patches[name]
	if !ok {
		return fmt.Errorf("unknown patch %q (have %v)", name, PatchNames())
	}
	return build(s)
}

// buildDemoPatch wires magnitude.out -> osc.frequency and osc.out -> gain.in: an
// oscillator with a patchable frequency, scaled on the way out.
func buildDemoPatch(s *synth.Synth) error {
	mag, err := s.CreateModule(modlib.Magnitude())
	if err != nil {
		return err
	}
	osc, err := s.CreateModule(modlib.Osc())
	if err != nil {
		return err
	}
	gain, err := s.CreateModule(modlib.Gain())
	if err != nil {
		return err
	}

	if err := s.Connect(osc.Handle(), "frequency", mag.Handle(), "out"); err != nil {
		return err
	}
	return s.Connect(gain.Handle(), "in", osc.Handle(), "out")
}

// buildCounterPatch feeds an expr module back into itself: out = in + 1 per
// step, a minimal feedback loop exercising the one-step-latency rule.
func buildCounterPatch(s *synth.Synth) error {
	ex, err := s.CreateModule(modlib.Expr())
	if err != nil {
		return err
	}
	src, err := ex.Setting("expr")
	if err != nil {
		return err
	}
	src.(*synth.TextSetting).SetText("in + 1")
	return s.Connect(ex.Handle(), "in", ex.Handle(), "out")
}
