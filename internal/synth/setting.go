package synth

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Setting is the capability shared by all setting variants. Settings are
// user-adjustable parameters local to a module; they are not part of the
// graph's data edges and are read, never written, during evaluation.
//
// New variants are added as new SettingSpec/Setting implementations without
// touching the engine.
type Setting interface {
	// Name returns the declared setting name.
	Name() string

	// Kind identifies the variant: "value", "enum", "text", or "trigger".
	Kind() string

	// Value returns the current value. Triggers store no value and return
	// cty.NilVal.
	Value() cty.Value
}

// SettingSpec declares one setting of a module type. Specs are immutable
// declaration data; a fresh Setting object is instantiated from the spec for
// every module instance.
type SettingSpec interface {
	settingName() string

	// instantiate allocates the per-instance setting, validating the
	// declaration. A validation failure is a SpecError.
	instantiate(m *Module) (Setting, error)
}

// ValueSettingSpec declares a plain typed value setting.
type ValueSettingSpec struct {
	Name    string
	Type    cty.Type
	Default cty.Value
}

func (s ValueSettingSpec) settingName() string { return s.Name }

func (s ValueSettingSpec) instantiate(m *Module) (Setting, error) {
	if s.Type == cty.NilType {
		return nil, &SpecError{Module: m.spec.Name, Decl: s.Name, Reason: "setting has no declared type"}
	}
	if !s.Default.Type().Equals(s.Type) {
		return nil, &SpecError{
			Module: m.spec.Name,
			Decl:   s.Name,
			Reason: fmt.Sprintf("default value %#v is not of declared type %s", s.Default, s.Type.FriendlyName()),
		}
	}
	return &ValueSetting{module: m, name: s.Name, typ: s.Type, def: s.Default, cur: s.Default}, nil
}

// EnumSettingSpec declares a multiple-choice setting selecting one of a fixed
// option list by index.
type EnumSettingSpec struct {
	Name    string
	Options []cty.Value
	Default int // index into Options
}

func (s EnumSettingSpec) settingName() string { return s.Name }

func (s EnumSettingSpec) instantiate(m *Module) (Setting, error) {
	if len(s.Options) == 0 {
		return nil, &SpecError{Module: m.spec.Name, Decl: s.Name, Reason: "enum setting has no options"}
	}
	if s.Default < 0 || s.Default >= len(s.Options) {
		return nil, &SpecError{
			Module: m.spec.Name,
			Decl:   s.Name,
			Reason: fmt.Sprintf("default choice %d out of range [0,%d)", s.Default, len(s.Options)),
		}
	}
	opts := make([]cty.Value, len(s.Options))
	copy(opts, s.Options)
	return &EnumSetting{module: m, name: s.Name, options: opts, choice: s.Default}, nil
}

// TextSettingSpec declares a free-text setting.
type TextSettingSpec struct {
	Name    string
	Default string
}

func (s TextSettingSpec) settingName() string { return s.Name }

func (s TextSettingSpec) instantiate(m *Module) (Setting, error) {
	return &TextSetting{module: m, name: s.Name, text: s.Default}, nil
}

// TriggerSettingSpec declares a fire-and-forget action with no stored value.
type TriggerSettingSpec struct {
	Name   string
	Action func(m *Module)
}

func (s TriggerSettingSpec) settingName() string { return s.Name }

func (s TriggerSettingSpec) instantiate(m *Module) (Setting, error) {
	if s.Action == nil {
		return nil, &SpecError{Module: m.spec.Name, Decl: s.Name, Reason: "trigger setting has no action"}
	}
	return &TriggerSetting{module: m, name: s.Name, action: s.Action}, nil
}

// ValueSetting holds a single typed value.
type ValueSetting struct {
	module *Module
	name   string
	typ    cty.Type
	def    cty.Value
	cur    cty.Value
}

func (s *ValueSetting) Name() string { return s.name }

func (s *ValueSetting) Kind() string { return "value" }

func (s *ValueSetting) Value() cty.Value { return s.cur }

// Type returns the declared value type.
func (s *ValueSetting) Type() cty.Type { return s.typ }

// Default returns the declared default value.
func (s *ValueSetting) Default() cty.Value { return s.def }

// Set replaces the current value and notifies the owning module. The new
// value must match the declared type; the engine never coerces.
func (s *ValueSetting) Set(v cty.Value) error {
	if !v.Type().Equals(s.typ) {
		return &GraphError{
			Code:    ErrCodeTypeMismatch,
			Message: fmt.Sprintf("value of type %s for setting of type %s", v.Type().FriendlyName(), s.typ.FriendlyName()),
			Module:  s.module.spec.Name,
			Port:    s.name,
		}
	}
	s.cur = v
	s.module.settingChanged(s.name)
	return nil
}

// EnumSetting selects one of a fixed option list by index.
type EnumSetting struct {
	module  *Module
	name    string
	options []cty.Value
	choice  int
}

func (s *EnumSetting) Name() string { return s.name }

func (s *EnumSetting) Kind() string { return "enum" }

// Value returns the currently selected option.
func (s *EnumSetting) Value() cty.Value { return s.options[s.choice] }

// Choice returns the index of the currently selected option.
func (s *EnumSetting) Choice() int { return s.choice }

// Options returns the fixed option list.
func (s *EnumSetting) Options() []cty.Value {
	opts := make([]cty.Value, len(s.options))
	copy(opts, s.options)
	return opts
}

// SetChoice selects the option at index i and notifies the owning module.
func (s *EnumSetting) SetChoice(i int) error {
	if i < 0 || i >= len(s.options) {
		return &GraphError{
			Code:    ErrCodeUnknownSetting,
			Message: fmt.Sprintf("choice %d out of range [0,%d)", i, len(s.options)),
			Module:  s.module.spec.Name,
			Port:    s.name,
		}
	}
	s.choice = i
	s.module.settingChanged(s.name)
	return nil
}

// TextSetting holds free text.
type TextSetting struct {
	module *Module
	name   string
	text   string
}

func (s *TextSetting) Name() string { return s.name }

func (s *TextSetting) Kind() string { return "text" }

func (s *TextSetting) Value() cty.Value { return cty.StringVal(s.text) }

// Text returns the current text.
func (s *TextSetting) Text() string { return s.text }

// SetText replaces the text and notifies the owning module. Modules that
// derive an expensive artifact from the text (a compiled expression, say)
// recompile in their SettingChanged reaction rather than on every tick.
func (s *TextSetting) SetText(text string) {
	s.text = text
	s.module.settingChanged(s.name)
}

// TriggerSetting is a fire-and-forget action with no stored value.
type TriggerSetting struct {
	module *Module
	name   string
	action func(m *Module)
}

func (s *TriggerSetting) Name() string { return s.name }

func (s *TriggerSetting) Kind() string { return "trigger" }

func (s *TriggerSetting) Value() cty.Value { return cty.NilVal }

// Fire runs the trigger action, then notifies the owning module.
func (s *TriggerSetting) Fire() {
	s.action(s.module)
	s.module.settingChanged(s.name)
}
