package compiler

import (
	"fmt"

	"github.com/systemstart/stepc/pkg/api"
	"github.com/systemstart/stepc/pkg/ir"
)

// reactiveContracts maps the recognized reactive service interfaces a
// delegate may implement to the exchange shape each one prescribes.
var reactiveContracts = map[string]ir.Shape{
	"ReactiveService":         ir.ShapeUnaryUnary,
	"ReactiveExpanderService": ir.ShapeUnaryStreaming,
	"ReactiveReducerService":  ir.ShapeStreamingUnary,
	"ReactiveStreamService":   ir.ShapeStreamingStreaming,
}

// extractPhase merges the declaration sources into StepModel IR nodes,
// resolves delegation contracts and mapper fallbacks, realizes synthetic
// aspect steps, and forces cross-module steps into the client role.
type extractPhase struct{}

func (*extractPhase) Name() string { return "extract" }

func (p *extractPhase) Run(r *Run) error {
	decls := r.StepDecls
	if len(decls) == 0 {
		decls = p.scanLegacy(r)
	}

	for i := range decls {
		model, err := p.buildStep(r, &decls[i])
		if err != nil {
			return err
		}
		if model != nil {
			r.Ctx.Steps = append(r.Ctx.Steps, model)
		}
	}

	return p.synthesizeAspectSteps(r)
}

// scanLegacy activates the annotation-style fallback source. It only runs
// when the config file declares no steps at all.
func (p *extractPhase) scanLegacy(r *Run) []api.StepDecl {
	root := r.Ctx.ModuleDir
	if root == "" {
		return nil
	}

	decls, bad, err := api.ScanLegacySteps(root)
	if err != nil {
		r.Ctx.Diags.Warnf(root, "legacy declaration scan failed: %v", err)
		return nil
	}
	for _, e := range bad {
		r.Ctx.Diags.Errorf(root, "malformed legacy step declaration: %v", e)
	}
	if len(decls) > 0 {
		r.Ctx.Diags.Notef(root, "no steps declared in config, using %d legacy step declaration(s)", len(decls))
	}
	return decls
}

func (p *extractPhase) buildStep(r *Run, decl *api.StepDecl) (*ir.StepModel, error) {
	pkg := decl.Package
	if pkg == "" {
		pkg = p.basePackage(r)
	}

	model, err := ir.NewStepModel(decl.Name, pkg)
	if err != nil {
		return nil, err
	}

	role, err := ir.ParseRole(decl.Role)
	if err != nil {
		r.Ctx.Diags.Errorf(decl.Name, "%v", err)
		return nil, nil
	}
	model.Role = role

	fallback, err := ir.ParseMapperFallback(decl.MapperFallback)
	if err != nil {
		r.Ctx.Diags.Errorf(decl.Name, "%v", err)
		return nil, nil
	}
	model.MapperFallback = fallback

	model.Cardinality = decl.Cardinality
	model.DedicatedPool = decl.Dedicated
	model.SideEffect = decl.SideEffect
	model.CacheKeyGen = decl.CacheKeyGenerator
	model.DeclaredType = decl.DeclaredType
	if model.DeclaredType == "" {
		model.DeclaredType = pkg + "." + model.GeneratedName
	}

	model.Input = typeMapping(decl.Input)
	model.Output = typeMapping(decl.Output)

	if decl.Delegate != nil {
		if !p.resolveDelegate(r, decl, model) {
			return nil, nil
		}
	}

	p.assignModule(r, model)
	return model, nil
}

func (p *extractPhase) basePackage(r *Run) string {
	if r.Config != nil && r.Config.BasePackage != "" {
		return r.Config.BasePackage
	}
	return api.DefaultBasePackage
}

func typeMapping(decl api.TypeDecl) ir.TypeMapping {
	return ir.TypeMapping{
		TypeName:           decl.Type,
		MapperTypeName:     decl.Mapper,
		ConversionRequired: decl.Mapper != "",
	}
}

// resolveDelegate checks the delegate's declared contract table and its type
// compatibility with the step. Contract and mapper violations are per-step
// errors: the step is dropped, the run continues.
func (p *extractPhase) resolveDelegate(r *Run, decl *api.StepDecl, model *ir.StepModel) bool {
	d := decl.Delegate

	var matched []string
	for _, contract := range d.Contracts {
		if _, ok := reactiveContracts[contract]; ok {
			matched = append(matched, contract)
		}
	}
	switch {
	case len(matched) == 0:
		r.Ctx.Diags.Errorf(decl.Name, "delegate %q implements no reactive service interface", d.Service)
		return false
	case len(matched) > 1:
		r.Ctx.Diags.Errorf(decl.Name, "delegate %q implements multiple reactive service interfaces: %v", d.Service, matched)
		return false
	}

	model.Delegate = &ir.Delegate{
		ServiceTypeName:      d.Service,
		Package:              d.Package,
		InputTypeName:        d.Input,
		OutputTypeName:       d.Output,
		MapperTypeName:       d.Mapper,
		ImplementedContracts: d.Contracts,
	}
	model.Input.ExternalTypeName = d.Input
	model.Output.ExternalTypeName = d.Output

	if !p.resolveMapper(r, decl, model) {
		return false
	}
	return true
}

// resolveMapper applies the mapper-fallback rules when the delegate's types
// differ from the step's own. An explicit NONE on the step always wins over
// the global auto-convert enablement.
func (p *extractPhase) resolveMapper(r *Run, decl *api.StepDecl, model *ir.StepModel) bool {
	d := model.Delegate
	inputDiffers := d.InputTypeName != "" && d.InputTypeName != model.Input.TypeName
	outputDiffers := d.OutputTypeName != "" && d.OutputTypeName != model.Output.TypeName
	if !inputDiffers && !outputDiffers {
		return true
	}

	hasMapper := d.MapperTypeName != "" || model.Input.MapperTypeName != "" || model.Output.MapperTypeName != ""
	if hasMapper {
		model.Input.ConversionRequired = model.Input.ConversionRequired || inputDiffers
		model.Output.ConversionRequired = model.Output.ConversionRequired || outputDiffers
		return true
	}

	autoConvert := model.MapperFallback == ir.FallbackAutoConvert ||
		(model.MapperFallback == ir.FallbackUnset && r.Ctx.AutoConvertMappers)
	if !autoConvert {
		r.Ctx.Diags.Errorf(decl.Name,
			"delegate %q requires an external mapper: step types (%s, %s) differ from delegate types (%s, %s)",
			d.ServiceTypeName, model.Input.TypeName, model.Output.TypeName, d.InputTypeName, d.OutputTypeName)
		return false
	}

	model.MapperFallback = ir.FallbackAutoConvert
	model.Input.ConversionRequired = inputDiffers
	model.Output.ConversionRequired = outputDiffers
	return true
}

// assignModule binds the step to its declaring module via the runtime
// mapping. A step declared by another module can only be called from here,
// so its role is forced to ORCHESTRATOR_CLIENT regardless of its nominal
// role.
func (p *extractPhase) assignModule(r *Run, model *ir.StepModel) {
	module := r.Ctx.Mapping.ModuleOf(model.ServiceName)
	if module == "" {
		model.DeclaringModule = r.Ctx.ModuleName
		return
	}
	model.DeclaringModule = module

	if r.Ctx.ModuleName != "" && module != r.Ctx.ModuleName {
		if model.Role != ir.RoleOrchestratorClient {
			r.Ctx.Diags.Notef(model.ServiceName,
				"step is declared by module %q, generating client role only", module)
		}
		model.Role = ir.RoleOrchestratorClient
	}
}

// synthesizeAspectSteps realizes the synthetic side-effect steps of GLOBAL
// aspects (a cache aspect's lookup step, for example).
func (p *extractPhase) synthesizeAspectSteps(r *Run) error {
	for _, aspect := range r.Ctx.Aspects {
		decl, ok := r.AspectDecls[aspect.Name]
		if !ok || decl.Step == nil || aspect.Scope != ir.ScopeGlobal {
			continue
		}

		if err := decl.Step.Check(); err != nil {
			r.Ctx.Diags.Errorf(aspect.Name, "malformed synthetic step declaration: %v", err)
			continue
		}

		model, err := p.buildStep(r, decl.Step)
		if err != nil {
			return fmt.Errorf("synthesizing step for aspect %q: %w", aspect.Name, err)
		}
		if model == nil {
			continue
		}
		model.SideEffect = true
		aspect.SyntheticStep = model
		r.Ctx.Steps = append(r.Ctx.Steps, model)
	}
	return nil
}
