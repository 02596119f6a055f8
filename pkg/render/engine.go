// Package render emits the generated source artifacts, one renderer per
// generation-target tag, into role-specific output trees.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/stepc/pkg/descriptor"
	"github.com/systemstart/stepc/pkg/ir"
)

// GenContext carries the facilities a renderer needs: the output root, the
// enabled aspect names, the optional descriptor set, and the platform mode.
type GenContext struct {
	OutputRoot  string
	AspectNames []string
	Descriptors *descriptor.Registry
	Platform    ir.Platform
}

// Renderer produces one artifact kind from a binding.
type Renderer interface {
	Target() ir.Target
	FileName(model *ir.StepModel) string
	Render(b ir.Binding, g *GenContext) ([]byte, error)
}

// Engine dispatches bindings to renderers behind the generation policy.
type Engine struct {
	renderers map[ir.Target]Renderer
	policy    Policy
}

// NewEngine builds an engine with the full renderer set.
func NewEngine(policy Policy) *Engine {
	e := &Engine{renderers: make(map[ir.Target]Renderer), policy: policy}
	for _, r := range []Renderer{
		newGrpcServiceRenderer(),
		newGrpcClientRenderer(),
		newRestResourceRenderer(),
		newRestClientRenderer(),
		newLocalClientRenderer(),
		newAdapterRenderer(),
	} {
		e.renderers[r.Target()] = r
	}
	return e
}

// Render walks the context's bindings in deterministic order and writes one
// source file per (step, target) pair, plus the orchestrator entry points.
// Re-running against unchanged inputs rewrites byte-identical files. It
// returns the written paths.
func (e *Engine) Render(ctx *ir.Context, g *GenContext) ([]string, error) {
	var written []string

	for _, binding := range ctx.SortedBindings() {
		model := binding.Step()
		if ctx.Excluded(model.ServiceName) {
			continue
		}

		if ok, reason := e.policy.Allow(binding); !ok {
			ctx.Diags.Notef(model.ServiceName, "suppressing %s: %s", binding.Target(), reason)
			continue
		}

		renderer, ok := e.renderers[binding.Target()]
		if !ok {
			return written, fmt.Errorf("no renderer for target %s", binding.Target())
		}

		content, err := renderer.Render(binding, g)
		if err != nil {
			return written, fmt.Errorf("rendering %s for step %q: %w", binding.Target(), model.ServiceName, err)
		}

		path := e.outputPath(g.OutputRoot, model, renderer.FileName(model))
		if err := writeArtifact(path, content); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	orchestrated, err := e.renderOrchestrators(ctx, g)
	if err != nil {
		return written, err
	}
	return append(written, orchestrated...), nil
}

func (e *Engine) renderOrchestrators(ctx *ir.Context, g *GenContext) ([]string, error) {
	renderer := newOrchestratorRenderer()
	var written []string
	for _, o := range ctx.Orchestrators {
		if !o.Generate {
			continue
		}
		content, err := renderer.Render(o, g)
		if err != nil {
			return written, fmt.Errorf("rendering orchestrator %q: %w", o.Name, err)
		}
		path := filepath.Join(g.OutputRoot, ir.RoleOrchestratorClient.OutputDir(),
			packagePath(o.BasePackage), fileBase(o.Name)+"_orchestrator.go")
		if err := writeArtifact(path, content); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// outputPath places an artifact under the role directory, keyed by the
// step's declared package.
func (e *Engine) outputPath(root string, model *ir.StepModel, fileName string) string {
	return filepath.Join(root, model.Role.OutputDir(), packagePath(model.Package), fileName)
}

func writeArtifact(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// packagePath converts a dotted package name to a directory path.
func packagePath(pkg string) string {
	parts := strings.FieldsFunc(pkg, func(r rune) bool { return r == '.' || r == '/' })
	return filepath.Join(parts...)
}

// fileBase turns a service name into a file name stem: "user-lookup"
// becomes "user_lookup".
func fileBase(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				prev := rune(name[i-1])
				if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// goPackage derives the generated file's package clause from the last
// segment of the declared package.
func goPackage(pkg string) string {
	parts := strings.FieldsFunc(pkg, func(r rune) bool { return r == '.' || r == '/' })
	if len(parts) == 0 {
		return "generated"
	}
	return strings.ToLower(parts[len(parts)-1])
}
