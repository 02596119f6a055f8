package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/stepc/pkg/api"
	"github.com/systemstart/stepc/pkg/ir"
)

// discoveryPhase resolves the configuration inputs: the config file (parsed
// exactly once for the whole run), option/environment overrides, the output
// root, aspects, orchestrators, and the optional runtime mapping.
type discoveryPhase struct{}

func (*discoveryPhase) Name() string { return "discovery" }

func (p *discoveryPhase) Run(r *Run) error {
	ctx := r.Ctx

	p.loadConfig(r)
	p.resolveSettings(r)
	p.resolveOutputRoot(r)

	if r.Config != nil {
		p.loadSteps(r)
		p.loadAspects(r)
		p.loadOrchestrators(r)
	}

	p.loadMapping(r)

	ctx.PluginHost = r.resolveBool(OptPluginHost, EnvPluginHost, r.Config != nil && r.Config.PluginHost)
	return nil
}

func (p *discoveryPhase) loadConfig(r *Run) {
	path := r.resolve(OptConfig, EnvConfig, r.ConfigPath, api.ConfigFilename)
	r.ConfigPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.Ctx.Diags.Notef(path, "no config file found, using defaults and legacy declarations")
		return
	}

	cfg, err := api.LoadConfig(path)
	if err != nil {
		r.Ctx.Diags.Errorf(path, "unusable config file: %v", err)
		return
	}
	r.Config = cfg
}

func (p *discoveryPhase) resolveSettings(r *Run) {
	ctx := r.Ctx

	var cfgTransport, cfgPlatform, cfgOutput, cfgModule string
	if r.Config != nil {
		cfgTransport = r.Config.Transport
		cfgPlatform = r.Config.Platform
		cfgOutput = r.Config.OutputDir
		cfgModule = r.Config.ModuleName
	}

	transport, err := ir.ParseTransport(r.resolve(OptTransport, EnvTransport, cfgTransport, ""))
	if err != nil {
		ctx.Diags.Errorf(r.ConfigPath, "invalid transport: %v", err)
		transport = ir.TransportGRPC
	}
	ctx.Transport = transport

	platform, err := ir.ParsePlatform(r.resolve(OptPlatform, EnvPlatform, cfgPlatform, ""))
	if err != nil {
		ctx.Diags.Errorf(r.ConfigPath, "invalid platform: %v", err)
		platform = ir.PlatformCompute
	}
	ctx.Platform = platform

	ctx.ModuleName = strings.TrimSpace(r.resolve(OptModuleName, EnvModuleName, cfgModule, ""))

	ctx.StrictFunctionUnary = r.resolveBool(OptFunctionStrict, EnvFunctionStrict,
		r.Config != nil && r.Config.FunctionStrictUnary)
	ctx.AutoConvertMappers = r.resolveBool(OptAutoConvert, EnvAutoConvert,
		r.Config != nil && r.Config.AutoConvertMappers)

	r.outputSetting = r.resolve(OptOutputDir, EnvOutputDir, cfgOutput, api.DefaultOutputDir)
}

// resolveOutputRoot turns the output setting into an absolute root and
// derives the module directory as its parent, falling back to the working
// directory when that cannot be determined.
func (p *discoveryPhase) resolveOutputRoot(r *Run) {
	root := r.outputSetting
	if !filepath.IsAbs(root) {
		base := ""
		if r.Config != nil {
			base = r.Config.Dir
		} else if wd, err := os.Getwd(); err == nil {
			base = wd
		}
		root = filepath.Join(base, root)
	}
	r.Ctx.OutputRoot = root

	moduleDir := filepath.Dir(root)
	if moduleDir == "" || moduleDir == "." {
		if wd, err := os.Getwd(); err == nil {
			moduleDir = wd
		}
	}
	r.Ctx.ModuleDir = moduleDir
}

// loadSteps applies per-declaration checks, dropping each malformed step
// with its own diagnostic while the rest of the run continues.
func (p *discoveryPhase) loadSteps(r *Run) {
	good, bad := r.Config.CheckSteps()
	for _, e := range bad {
		r.Ctx.Diags.Errorf(r.ConfigPath, "malformed step declaration: %v", e)
	}
	r.StepDecls = good
}

func (p *discoveryPhase) loadAspects(r *Run) {
	for i := range r.Config.Aspects {
		decl := &r.Config.Aspects[i]
		aspect, err := aspectModel(decl)
		if err != nil {
			r.Ctx.Diags.Errorf(r.ConfigPath, "malformed aspect %q: %v", decl.Name, err)
			continue
		}
		r.Ctx.Aspects = append(r.Ctx.Aspects, aspect)
		r.AspectDecls[decl.Name] = decl
	}
}

func aspectModel(decl *api.AspectDecl) (*ir.AspectModel, error) {
	scope := ir.ScopeStep
	switch strings.ToUpper(strings.TrimSpace(decl.Scope)) {
	case "", "STEP":
	case "GLOBAL":
		scope = ir.ScopeGlobal
	default:
		return nil, fmt.Errorf("unknown scope %q", decl.Scope)
	}

	position := ir.PositionBeforeStep
	switch strings.ToUpper(strings.TrimSpace(decl.Position)) {
	case "", "BEFORE_STEP", "BEFORE":
	case "AFTER_STEP", "AFTER":
		position = ir.PositionAfterStep
	default:
		return nil, fmt.Errorf("unknown position %q", decl.Position)
	}

	return &ir.AspectModel{
		Name:     decl.Name,
		Scope:    scope,
		Position: position,
		Params:   decl.Params,
	}, nil
}

func (p *discoveryPhase) loadOrchestrators(r *Run) {
	for _, decl := range r.Config.Orchestrators {
		base := decl.BasePackage
		if base == "" {
			base = r.Config.BasePackage
		}
		r.Ctx.Orchestrators = append(r.Ctx.Orchestrators, &ir.OrchestratorModel{
			Name:        decl.Name,
			BasePackage: base,
			Aspects:     decl.Aspects,
			Generate:    decl.Generate,
		})
	}
}

func (p *discoveryPhase) loadMapping(r *Run) {
	path := r.resolve(OptMapping, EnvMapping, r.MappingPath, "")
	if path == "" {
		return
	}
	r.MappingPath = path

	doc, err := api.LoadMapping(path)
	if err != nil {
		r.Ctx.Diags.Warnf(path, "runtime mapping not loaded: %v", err)
		return
	}
	r.Ctx.Mapping = &ir.RuntimeMapping{Runtimes: doc.Runtimes, Steps: doc.Steps}
}
