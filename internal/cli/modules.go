package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/patchbay/internal/modlib"
	"github.com/roach88/patchbay/internal/synth"
)

// PortDecl describes one declared port of a module type.
type PortDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SettingDecl describes one declared setting of a module type.
type SettingDecl struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ModuleTypeInfo describes a builtin module type's declarations.
type ModuleTypeInfo struct {
	Name     string        `json:"name"`
	Inputs   []PortDecl    `json:"inputs,omitempty"`
	Outputs  []PortDecl    `json:"outputs,omitempty"`
	Settings []SettingDecl `json:"settings,omitempty"`
}

// NewModulesCommand creates the modules command, which lists the builtin
// module library.
func NewModulesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List builtin module types and their declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]ModuleTypeInfo, 0, len(modlib.Names()))
			for _, name := range modlib.Names() {
				build, _ := modlib.Lookup(name)
				infos = append(infos, describeSpec(build()))
			}

			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}
			if rootOpts.Format == "json" {
				return formatter.Success(infos)
			}
			return formatter.Success(renderModuleTypes(infos))
		},
	}
}

func describeSpec(spec *synth.Spec) ModuleTypeInfo {
	info := ModuleTypeInfo{Name: spec.Name}
	for _, in := range spec.Inputs {
		info.Inputs = append(info.Inputs, PortDecl{Name: in.Name, Type: in.Type.FriendlyName()})
	}
	for _, out := range spec.Outputs {
		info.Outputs = append(info.Outputs, PortDecl{Name: out.Name, Type: out.Type.FriendlyName()})
	}
	for _, ss := range spec.Settings {
		info.Settings = append(info.Settings, describeSettingSpec(ss))
	}
	return info
}

func describeSettingSpec(ss synth.SettingSpec) SettingDecl {
	switch s := ss.(type) {
	case synth.ValueSettingSpec:
		return SettingDecl{Name: s.Name, Kind: "value"}
	case synth.EnumSettingSpec:
		return SettingDecl{Name: s.Name, Kind: "enum"}
	case synth.TextSettingSpec:
		return SettingDecl{Name: s.Name, Kind: "text"}
	case synth.TriggerSettingSpec:
		return SettingDecl{Name: s.Name, Kind: "trigger"}
	default:
		return SettingDecl{Name: "?", Kind: "unknown"}
	}
}

func renderModuleTypes(infos []ModuleTypeInfo) string {
	var b strings.Builder
	for i, mi := range infos {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", mi.Name)
		for _, in := range mi.Inputs {
			fmt.Fprintf(&b, "  in  %s: %s\n", in.Name, in.Type)
		}
		for _, out := range mi.Outputs {
			fmt.Fprintf(&b, "  out %s: %s\n", out.Name, out.Type)
		}
		for _, set := range mi.Settings {
			fmt.Fprintf(&b, "  set %s (%s)\n", set.Name, set.Kind)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
