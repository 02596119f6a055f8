package compiler

import (
	"fmt"
	"strings"

	"github.com/systemstart/stepc/pkg/descriptor"
	"github.com/systemstart/stepc/pkg/ir"
)

// bindingPhase resolves each enabled target into a concrete binding. A
// missing descriptor or path degrades to a warning: that one artifact is
// skipped and the rest of the compilation continues.
type bindingPhase struct{}

func (*bindingPhase) Name() string { return "binding construction" }

func (p *bindingPhase) Run(r *Run) error {
	p.loadDescriptors(r)

	for _, model := range r.Ctx.ActiveSteps() {
		if model.Delegate != nil {
			p.bindDelegated(r, model)
			continue
		}
		for _, target := range model.Targets {
			p.bindTarget(r, model, target)
		}
	}
	return nil
}

// loadDescriptors reads the descriptor set once for the run. An absent or
// invalid bundle degrades to an empty registry: every lookup misses and the
// per-artifact warnings explain what was skipped.
func (p *bindingPhase) loadDescriptors(r *Run) {
	if r.Descriptors != nil {
		return
	}

	path := r.resolve(OptDescriptor, EnvDescriptor, r.DescriptorPath, "")
	if path == "" {
		r.Descriptors = descriptor.Empty()
		return
	}

	reg, err := descriptor.Load(path)
	if err != nil {
		r.Ctx.Diags.Warnf(path, "descriptor set not usable, no bindings found: %v", err)
		r.Descriptors = descriptor.Empty()
		return
	}
	r.Descriptors = reg
}

// bindDelegated builds the external adapter binding for a forwarding step. A
// delegating step cannot also be a server, so server-side targets are
// dropped with a warning. A local client target additionally gets its local
// binding.
func (p *bindingPhase) bindDelegated(r *Run, model *ir.StepModel) {
	if dropped := model.ServerTargets(); len(dropped) > 0 {
		r.Ctx.Diags.Warnf(model.ServiceName,
			"delegating step ignores server targets %v", dropped)
	}

	d := model.Delegate
	pkg := d.Package
	if pkg == "" {
		pkg = model.Package
	}
	mapper := d.MapperTypeName
	if mapper == "" {
		mapper = model.Input.MapperTypeName
	}

	r.Ctx.AddBinding(&ir.ExternalAdapterBinding{
		Model:            model,
		AdapterName:      model.GeneratedName + "Adapter",
		Package:          pkg,
		DelegateTypeName: d.ServiceTypeName,
		MapperTypeName:   mapper,
	})

	if model.HasTarget(ir.TargetLocalClientStep) {
		r.Ctx.AddBinding(&ir.LocalBinding{Model: model})
	}
}

func (p *bindingPhase) bindTarget(r *Run, model *ir.StepModel, target ir.Target) {
	switch target {
	case ir.TargetGrpcService, ir.TargetClientStep:
		p.bindGrpc(r, model, target)
	case ir.TargetRestResource, ir.TargetRestClientStep:
		p.bindRest(r, model, target)
	case ir.TargetLocalClientStep:
		r.Ctx.AddBinding(&ir.LocalBinding{Model: model})
	}
}

func (p *bindingPhase) bindGrpc(r *Run, model *ir.StepModel, target ir.Target) {
	// Method selection: the step's own name first, then the conventional
	// "process" method, then the service's single method (inside Lookup).
	method, ok := r.Descriptors.Lookup(model.ServiceName, model.ServiceName)
	if !ok {
		method, ok = r.Descriptors.Lookup(model.ServiceName, "process")
	}
	if !ok {
		r.Ctx.Diags.Warnf(model.ServiceName,
			"Skipping %s: no matching service descriptor for %q", skipArtifact(target), model.ServiceName)
		return
	}

	r.Ctx.AddBinding(&ir.GrpcBinding{
		Model:       model,
		ServiceName: method.Service,
		MethodName:  method.Name,
		InputType:   method.InputType,
		OutputType:  method.OutputType,
		Tag:         target,
	})
}

func (p *bindingPhase) bindRest(r *Run, model *ir.StepModel, target ir.Target) {
	path, err := RestPath(model)
	if err != nil {
		r.Ctx.Diags.Warnf(model.ServiceName,
			"Skipping %s: %v", skipArtifact(target), err)
		return
	}

	r.Ctx.AddBinding(&ir.RestBinding{Model: model, Path: path, Tag: target})
}

// skipArtifact names the artifact kind in missing-binding warnings.
func skipArtifact(target ir.Target) string {
	switch target {
	case ir.TargetGrpcService:
		return "gRPC service generation"
	case ir.TargetClientStep:
		return "gRPC client step generation"
	case ir.TargetRestResource:
		return "REST resource generation"
	case ir.TargetRestClientStep:
		return "REST client step generation"
	default:
		return string(target) + " generation"
	}
}

// RestPath computes the resource path for a step from the last segment of
// its package and its service name.
func RestPath(model *ir.StepModel) (string, error) {
	var segment string
	for _, s := range strings.Split(model.Package, ".") {
		if s != "" {
			segment = s
		}
	}
	if segment == "" {
		return "", fmt.Errorf("no resource path: package %q has no usable segment", model.Package)
	}
	return "/" + strings.ToLower(segment) + "/" + model.ServiceName, nil
}
