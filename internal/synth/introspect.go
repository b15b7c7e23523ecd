package synth

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// The introspection snapshot is the read surface for hosts and editors: per
// module, the declared ports and settings with their types, current values,
// sources, and last error. It is plain serializable data - rendering it is
// the host's problem.

// PortRef identifies a port on a module, for reporting connection sources.
type PortRef struct {
	Module string `json:"module"` // handle, not type name: handles are unique
	Port   string `json:"port"`
}

// InputInfo describes one input of a module.
type InputInfo struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Default json.RawMessage `json:"default"`
	Source  *PortRef        `json:"source,omitempty"`
}

// OutputInfo describes one output of a module.
type OutputInfo struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"` // absent before first evaluation
}

// SettingInfo describes one setting of a module.
type SettingInfo struct {
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"` // absent for triggers
}

// ModuleInfo describes one live module.
type ModuleInfo struct {
	Handle    string        `json:"handle"`
	Name      string        `json:"name"`
	Inputs    []InputInfo   `json:"inputs,omitempty"`
	Outputs   []OutputInfo  `json:"outputs,omitempty"`
	Settings  []SettingInfo `json:"settings,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

// Snapshot reports every live module in evaluation order.
func (s *Synth) Snapshot() ([]ModuleInfo, error) {
	infos := make([]ModuleInfo, 0, len(s.modules))
	for _, m := range s.modules {
		info, err := m.describe()
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (m *Module) describe() (ModuleInfo, error) {
	info := ModuleInfo{
		Handle: m.handle.String(),
		Name:   m.spec.Name,
	}
	if m.lastErr != nil {
		info.LastError = m.lastErr.Error()
	}

	for _, in := range m.inputs {
		def, err := marshalValue(in.def)
		if err != nil {
			return ModuleInfo{}, fmt.Errorf("module %q input %q: %w", m.spec.Name, in.name, err)
		}
		ii := InputInfo{Name: in.name, Type: in.typ.FriendlyName(), Default: def}
		if in.source != nil {
			ii.Source = &PortRef{Module: in.source.module.handle.String(), Port: in.source.name}
		}
		info.Inputs = append(info.Inputs, ii)
	}

	for _, out := range m.outputs {
		oi := OutputInfo{Name: out.name, Type: out.typ.FriendlyName()}
		if out.value != cty.NilVal {
			v, err := marshalValue(out.value)
			if err != nil {
				return ModuleInfo{}, fmt.Errorf("module %q output %q: %w", m.spec.Name, out.name, err)
			}
			oi.Value = v
		}
		info.Outputs = append(info.Outputs, oi)
	}

	for _, s := range m.settings {
		si := SettingInfo{Name: s.Name(), Kind: s.Kind()}
		if v := s.Value(); v != cty.NilVal {
			raw, err := marshalValue(v)
			if err != nil {
				return ModuleInfo{}, fmt.Errorf("module %q setting %q: %w", m.spec.Name, s.Name(), err)
			}
			si.Value = raw
		}
		info.Settings = append(info.Settings, si)
	}
	return info, nil
}

func marshalValue(v cty.Value) (json.RawMessage, error) {
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
