package ir

import "sort"

// Context is the single mutable container threaded through the compilation
// phases. It is constructed once per run, owned exclusively by that run, and
// discarded when rendering completes or the run aborts. Nothing here is
// thread-safe and nothing needs to be.
type Context struct {
	Steps         []*StepModel
	Aspects       []*AspectModel
	Orchestrators []*OrchestratorModel

	Transport  Transport
	Platform   Platform
	PluginHost bool
	ModuleName string
	Mapping    *RuntimeMapping

	// OutputRoot is the resolved generated-artifact root; ModuleDir is its
	// parent (or the working directory when undeterminable).
	OutputRoot string
	ModuleDir  string

	// StrictFunctionUnary restricts FUNCTION-platform steps to the
	// UNARY_UNARY shape (legacy sub-mode).
	StrictFunctionUnary bool

	// AutoConvertMappers enables the global mapper fallback for delegated
	// steps with mismatched types.
	AutoConvertMappers bool

	ResolvedTargets map[Target]bool
	Bindings        map[string]Binding

	excluded map[string]bool

	Diags Diagnostics
}

// NewContext returns an empty compilation context with defaults applied.
func NewContext() *Context {
	return &Context{
		Transport:       TransportGRPC,
		Platform:        PlatformCompute,
		ResolvedTargets: make(map[Target]bool),
		Bindings:        make(map[string]Binding),
		excluded:        make(map[string]bool),
	}
}

// Exclude removes a step from all downstream phases. The model stays in
// Steps so diagnostics can still refer to it.
func (c *Context) Exclude(stepName string) {
	c.excluded[stepName] = true
}

// Excluded reports whether a step was excluded by an earlier phase.
func (c *Context) Excluded(stepName string) bool {
	return c.excluded[stepName]
}

// ActiveSteps returns the steps not excluded by earlier phases, in
// declaration order.
func (c *Context) ActiveSteps() []*StepModel {
	out := make([]*StepModel, 0, len(c.Steps))
	for _, m := range c.Steps {
		if !c.excluded[m.ServiceName] {
			out = append(out, m)
		}
	}
	return out
}

// AddBinding registers a binding under its (step, target) key.
func (c *Context) AddBinding(b Binding) {
	c.Bindings[BindingKey(b.Step().ServiceName, b.Target())] = b
}

// SortedBindings returns bindings ordered by key so downstream passes are
// deterministic regardless of map iteration.
func (c *Context) SortedBindings() []Binding {
	keys := make([]string, 0, len(c.Bindings))
	for k := range c.Bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Binding, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.Bindings[k])
	}
	return out
}

// StepByName finds a step model by service name.
func (c *Context) StepByName(name string) *StepModel {
	for _, m := range c.Steps {
		if m.ServiceName == name {
			return m
		}
	}
	return nil
}
