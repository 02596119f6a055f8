// Package compiler drives the compilation pipeline: discovery, model
// extraction, semantic analysis, target resolution, binding construction,
// and rendering, strictly in that order over one shared context.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/systemstart/stepc/pkg/api"
	"github.com/systemstart/stepc/pkg/descriptor"
	"github.com/systemstart/stepc/pkg/ir"
)

// Run is the mutable state of one compilation run: the IR context plus the
// inputs and once-loaded documents shared between phases.
type Run struct {
	Ctx *ir.Context

	// Options is the processor option map; it takes precedence over
	// environment variables, which take precedence over config file values.
	Options   map[string]string
	LookupEnv func(string) (string, bool)

	ConfigPath     string
	DescriptorPath string
	MappingPath    string

	// Config is loaded exactly once, by discovery. Later phases read it from
	// here instead of re-parsing.
	Config      *api.Config
	StepDecls   []api.StepDecl
	AspectDecls map[string]*api.AspectDecl
	Descriptors *descriptor.Registry

	outputSetting string
}

// NewRun builds a run around a fresh context.
func NewRun(options map[string]string, lookupEnv func(string) (string, bool)) *Run {
	if options == nil {
		options = map[string]string{}
	}
	if lookupEnv == nil {
		lookupEnv = func(string) (string, bool) { return "", false }
	}
	return &Run{
		Ctx:         ir.NewContext(),
		Options:     options,
		LookupEnv:   lookupEnv,
		AspectDecls: map[string]*api.AspectDecl{},
	}
}

// Phase is one ordered stage of the compilation pipeline. A phase reports
// recoverable findings through the context's diagnostics and returns an
// error only for unrecoverable conditions, which abort the whole run.
type Phase interface {
	Name() string
	Run(r *Run) error
}

// Phases returns the full pipeline in execution order.
func Phases() []Phase {
	return []Phase{
		&discoveryPhase{},
		&extractPhase{},
		&semanticPhase{},
		&targetPhase{},
		&bindingPhase{},
		&renderPhase{},
	}
}

// Execute runs the given phases in order over the run state.
func Execute(r *Run, phases ...Phase) error {
	for _, p := range phases {
		slog.Debug("running phase", "phase", p.Name())
		if err := p.Run(r); err != nil {
			return fmt.Errorf("phase %s: %w", p.Name(), err)
		}
	}
	return nil
}

// Compile executes the full pipeline and returns the context for diagnostic
// inspection. The context is still returned when the run aborts.
func Compile(r *Run) (*ir.Context, error) {
	err := Execute(r, Phases()...)
	return r.Ctx, err
}
