package ir

import (
	"fmt"
	"strings"
)

// TypeMapping pairs a domain type with an optional mapper and, for delegated
// steps, the external type the delegate works with.
type TypeMapping struct {
	TypeName           string
	MapperTypeName     string
	ConversionRequired bool
	ExternalTypeName   string
}

// Delegate describes a step that forwards to an externally implemented
// service. ImplementedContracts is the declared-interface table supplied
// with the step declaration; exactly one entry must name a known reactive
// service contract.
type Delegate struct {
	ServiceTypeName      string
	Package              string
	InputTypeName        string
	OutputTypeName       string
	MapperTypeName       string
	ImplementedContracts []string
}

// StepModel is the IR node for one pipeline step.
//
// Created by model extraction; its target set is replaced exactly once by
// target resolution and the model is read-only afterwards.
type StepModel struct {
	ServiceName     string
	GeneratedName   string
	Package         string
	DeclaredType    string
	Input           TypeMapping
	Output          TypeMapping
	Cardinality     string
	Shape           Shape
	Targets         []Target
	DedicatedPool   bool
	Role            Role
	SideEffect      bool
	CacheKeyGen     string
	Delegate        *Delegate
	MapperFallback  MapperFallback
	DeclaringModule string

	targetsResolved bool
}

// NewStepModel builds a StepModel, enforcing the structural contract on
// required fields. A violation here is a caller bug, not a user input
// problem, and aborts the compilation run.
func NewStepModel(serviceName, pkg string) (*StepModel, error) {
	serviceName = strings.TrimSpace(serviceName)
	if serviceName == "" {
		return nil, fmt.Errorf("step model requires a service name")
	}
	if strings.TrimSpace(pkg) == "" {
		return nil, fmt.Errorf("step model %q requires a package", serviceName)
	}
	return &StepModel{
		ServiceName:   serviceName,
		GeneratedName: GeneratedName(serviceName),
		Package:       pkg,
		Shape:         ShapeUnaryUnary,
		Role:          RolePipelineServer,
	}, nil
}

// ResolveTargets installs the resolved target set. It may be called exactly
// once per model; a second call is a structural error.
func (m *StepModel) ResolveTargets(targets []Target) error {
	if m.targetsResolved {
		return fmt.Errorf("step %q: targets already resolved", m.ServiceName)
	}
	m.Targets = targets
	m.targetsResolved = true
	return nil
}

// HasTarget reports whether the resolved target set contains t.
func (m *StepModel) HasTarget(t Target) bool {
	for _, have := range m.Targets {
		if have == t {
			return true
		}
	}
	return false
}

// ServerTargets returns the serving-side subset of the resolved targets.
func (m *StepModel) ServerTargets() []Target {
	var out []Target
	for _, t := range m.Targets {
		if t.Server() {
			out = append(out, t)
		}
	}
	return out
}

// GeneratedName derives the exported artifact base name from a service name:
// "user-lookup" becomes "UserLookup".
func GeneratedName(serviceName string) string {
	var b strings.Builder
	upper := true
	for _, r := range serviceName {
		if r == '-' || r == '_' || r == '.' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AspectModel is a named cross-cutting behavior attachable globally or to a
// single step.
type AspectModel struct {
	Name     string
	Scope    AspectScope
	Position AspectPosition
	Params   map[string]string

	// SyntheticStep, when set on a GLOBAL aspect, is realized as an extra
	// side-effect StepModel during model extraction.
	SyntheticStep *StepModel
}

// OrchestratorModel describes a top-level entry point that sequences steps.
type OrchestratorModel struct {
	Name        string
	BasePackage string
	Aspects     []string
	Generate    bool
}

// RuntimeMapping assigns steps to deployment modules and modules to runtime
// identifiers, driving cross-module client generation.
type RuntimeMapping struct {
	Runtimes map[string]string // module name -> runtime identifier
	Steps    map[string]string // step name -> module name
}

// ModuleOf returns the module a step is mapped to, or "" if unmapped.
func (rm *RuntimeMapping) ModuleOf(stepName string) string {
	if rm == nil {
		return ""
	}
	return rm.Steps[stepName]
}
