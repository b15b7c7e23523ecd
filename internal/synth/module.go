package synth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
)

// Values maps port names to values. It is the currency of module evaluation:
// the engine passes one value per declared input, and the evaluator returns
// values for a subset of the declared outputs.
type Values map[string]cty.Value

// InputSpec declares one input of a module type.
type InputSpec struct {
	Name    string
	Type    cty.Type
	Default cty.Value
}

// OutputSpec declares one output of a module type.
type OutputSpec struct {
	Name string
	Type cty.Type
}

// Evaluator is the computation half of the module-authoring contract.
// Implementations hold whatever per-instance state the module needs; a fresh
// evaluator is allocated for every module instance via Spec.New.
//
// Eval receives the logical time and one value per declared input (connected
// inputs deliver their source output's value, the rest deliver declared
// defaults) and returns values for any subset of the declared outputs.
// Outputs not mentioned keep their previous cell values.
//
// Eval must not block: one step is one synchronous pass over all live
// modules, with no suspension points.
type Evaluator interface {
	Eval(m *Module, t float64, in Values) (Values, error)
}

// SettingObserver is the optional reaction half of the authoring contract.
// If an evaluator implements it, SettingChanged is invoked synchronously
// whenever one of the module's settings changes. The reaction must not be
// required for correctness - it exists so expensive derived artifacts can be
// recomputed on change rather than on every tick.
type SettingObserver interface {
	SettingChanged(m *Module, name string)
}

// Spec is the immutable declaration of a module type: its name, ports,
// settings, and evaluator constructor. One Spec describes a module type;
// every CreateModule call instantiates fresh per-instance ports, settings,
// and evaluator state from it, so no state is ever shared between instances.
type Spec struct {
	Name     string
	Inputs   []InputSpec
	Outputs  []OutputSpec
	Settings []SettingSpec

	// New allocates the per-instance evaluator.
	New func() Evaluator
}

// Module is a live computation unit in a graph. Modules have reference
// identity: the same spec instantiated twice yields two distinct graph nodes
// with disjoint ports and settings.
type Module struct {
	handle uuid.UUID
	spec   *Spec
	eval   Evaluator
	obs    SettingObserver // nil unless eval implements SettingObserver

	inputs     []*Input
	outputs    []*Output
	settings   []Setting
	inputsBy   map[string]*Input
	outputsBy  map[string]*Output
	settingsBy map[string]Setting

	lastErr *StepError
	current Values // snapshot of last successfully produced outputs
}

// newModule validates spec and allocates a module instance with fresh ports
// and settings. Returns a SpecError on any invalid declaration.
func newModule(spec *Spec, handle uuid.UUID) (*Module, error) {
	if spec.Name == "" {
		return nil, &SpecError{Module: "(unnamed)", Reason: "module spec has no name"}
	}
	if spec.New == nil {
		return nil, &SpecError{Module: spec.Name, Reason: "module spec has no evaluator constructor"}
	}

	m := &Module{
		handle:     handle,
		spec:       spec,
		inputsBy:   make(map[string]*Input, len(spec.Inputs)),
		outputsBy:  make(map[string]*Output, len(spec.Outputs)),
		settingsBy: make(map[string]Setting, len(spec.Settings)),
		current:    make(Values),
	}

	for _, is := range spec.Inputs {
		if _, dup := m.inputsBy[is.Name]; dup {
			return nil, &SpecError{Module: spec.Name, Decl: is.Name, Reason: "duplicate input name"}
		}
		if is.Type == cty.NilType {
			return nil, &SpecError{Module: spec.Name, Decl: is.Name, Reason: "input has no declared type"}
		}
		if !is.Default.Type().Equals(is.Type) {
			return nil, &SpecError{
				Module: spec.Name,
				Decl:   is.Name,
				Reason: fmt.Sprintf("default value %#v is not of declared type %s", is.Default, is.Type.FriendlyName()),
			}
		}
		in := &Input{module: m, name: is.Name, typ: is.Type, def: is.Default}
		m.inputs = append(m.inputs, in)
		m.inputsBy[is.Name] = in
	}

	for _, os := range spec.Outputs {
		if _, dup := m.outputsBy[os.Name]; dup {
			return nil, &SpecError{Module: spec.Name, Decl: os.Name, Reason: "duplicate output name"}
		}
		if os.Type == cty.NilType {
			return nil, &SpecError{Module: spec.Name, Decl: os.Name, Reason: "output has no declared type"}
		}
		out := &Output{module: m, name: os.Name, typ: os.Type, targets: make(map[*Input]struct{})}
		m.outputs = append(m.outputs, out)
		m.outputsBy[os.Name] = out
	}

	for _, ss := range spec.Settings {
		if _, dup := m.settingsBy[ss.settingName()]; dup {
			return nil, &SpecError{Module: spec.Name, Decl: ss.settingName(), Reason: "duplicate setting name"}
		}
		s, err := ss.instantiate(m)
		if err != nil {
			return nil, err
		}
		m.settings = append(m.settings, s)
		m.settingsBy[s.Name()] = s
	}

	m.eval = spec.New()
	if m.eval == nil {
		return nil, &SpecError{Module: spec.Name, Reason: "evaluator constructor returned nil"}
	}
	if obs, ok := m.eval.(SettingObserver); ok {
		m.obs = obs
	}
	return m, nil
}

// Handle returns the stable identity of this module within its graph.
func (m *Module) Handle() uuid.UUID { return m.handle }

// Name returns the module type name.
func (m *Module) Name() string { return m.spec.Name }

// Evaluator returns the per-instance evaluator. Trigger actions use it to
// reach instance state.
func (m *Module) Evaluator() Evaluator { return m.eval }

// Inputs returns the module's inputs in declaration order.
func (m *Module) Inputs() []*Input {
	ins := make([]*Input, len(m.inputs))
	copy(ins, m.inputs)
	return ins
}

// Outputs returns the module's outputs in declaration order.
func (m *Module) Outputs() []*Output {
	outs := make([]*Output, len(m.outputs))
	copy(outs, m.outputs)
	return outs
}

// Settings returns the module's settings in declaration order.
func (m *Module) Settings() []Setting {
	ss := make([]Setting, len(m.settings))
	copy(ss, m.settings)
	return ss
}

// Setting looks up a setting by name.
func (m *Module) Setting(name string) (Setting, error) {
	s, ok := m.settingsBy[name]
	if !ok {
		return nil, &GraphError{Code: ErrCodeUnknownSetting, Message: "no such setting", Module: m.spec.Name, Port: name}
	}
	return s, nil
}

// Input looks up an input by name.
func (m *Module) Input(name string) (*Input, error) {
	in, ok := m.inputsBy[name]
	if !ok {
		return nil, &GraphError{Code: ErrCodeUnknownInput, Message: "no such input", Module: m.spec.Name, Port: name}
	}
	return in, nil
}

// Output looks up an output by name.
func (m *Module) Output(name string) (*Output, error) {
	out, ok := m.outputsBy[name]
	if !ok {
		return nil, &GraphError{Code: ErrCodeUnknownOutput, Message: "no such output", Module: m.spec.Name, Port: name}
	}
	return out, nil
}

// LastError returns the failure from the most recent evaluation, or nil if
// the last evaluation succeeded (or the module has not been evaluated yet).
func (m *Module) LastError() error {
	if m.lastErr == nil {
		return nil
	}
	return m.lastErr
}

// CurrentValues returns a copy of the outputs produced by the most recent
// successful evaluation, for display and inspection.
func (m *Module) CurrentValues() Values {
	vals := make(Values, len(m.current))
	for k, v := range m.current {
		vals[k] = v
	}
	return vals
}

// settingChanged runs the evaluator's SettingChanged reaction, if any.
func (m *Module) settingChanged(name string) {
	if m.obs != nil {
		m.obs.SettingChanged(m, name)
	}
}
