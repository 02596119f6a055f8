package render

import "github.com/systemstart/stepc/pkg/ir"

// Policy gates renderer invocation on deployment preconditions.
type Policy struct {
	// ModuleName and HasRuntimeMapping gate plugin-server generation: a
	// plugin server without both cannot be addressed at runtime, so its
	// stub would be useless.
	ModuleName        string
	HasRuntimeMapping bool

	// PluginHost suppresses plugin-client artifacts: the host itself does
	// not call through a client stub.
	PluginHost bool
}

// Allow reports whether the binding's artifact should be generated; when it
// should not, the second return names the reason.
func (p Policy) Allow(b ir.Binding) (bool, string) {
	model := b.Step()

	if model.Role == ir.RolePluginServer && b.Target().Server() {
		if p.ModuleName == "" {
			return false, "plugin server requires a module name"
		}
		if !p.HasRuntimeMapping {
			return false, "plugin server requires a runtime mapping"
		}
	}

	if model.Role == ir.RolePluginClient && p.PluginHost && !b.Target().Server() {
		return false, "plugin host does not generate its own plugin client"
	}

	return true, ""
}
