package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/systemstart/stepc/pkg/ir"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runDiscovery(t *testing.T, r *Run) {
	t.Helper()
	if err := (&discoveryPhase{}).Run(r); err != nil {
		t.Fatalf("discovery: %v", err)
	}
}

func TestDiscovery_ConfigResolution(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepc.yaml", `
basePackage: acme.search
transport: REST
platform: COMPUTE
moduleName: "  search  "
steps:
  - name: tokenize
    cardinality: one-to-many
    input: {type: Document}
    output: {type: Token}
`)

	r := NewRun(nil, nil)
	r.ConfigPath = cfg
	runDiscovery(t, r)

	if r.Config == nil {
		t.Fatal("config not loaded")
	}
	if r.Ctx.Transport != ir.TransportREST {
		t.Errorf("transport = %s", r.Ctx.Transport)
	}
	if r.Ctx.ModuleName != "search" {
		t.Errorf("module name not trimmed: %q", r.Ctx.ModuleName)
	}
	if len(r.StepDecls) != 1 {
		t.Errorf("step decls = %d", len(r.StepDecls))
	}

	wantRoot := filepath.Join(dir, "generated")
	if r.Ctx.OutputRoot != wantRoot {
		t.Errorf("output root = %q, want %q", r.Ctx.OutputRoot, wantRoot)
	}
	if r.Ctx.ModuleDir != dir {
		t.Errorf("module dir = %q, want %q", r.Ctx.ModuleDir, dir)
	}
}

func TestDiscovery_OverridePrecedence(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepc.yaml", "basePackage: acme\ntransport: REST\n")

	r := NewRun(
		map[string]string{OptTransport: "LOCAL"},
		envMap(map[string]string{EnvTransport: "GRPC"}),
	)
	r.ConfigPath = cfg
	runDiscovery(t, r)

	if r.Ctx.Transport != ir.TransportLocal {
		t.Errorf("transport = %s, want LOCAL (option wins)", r.Ctx.Transport)
	}
}

func TestDiscovery_MalformedStepDropped(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepc.yaml", `
basePackage: acme
steps:
  - name: good
    cardinality: one-to-one
    input: {type: A}
    output: {type: B}
  - name: bad
    input: {type: A}
    output: {type: B}
`)

	r := NewRun(nil, nil)
	r.ConfigPath = cfg
	runDiscovery(t, r)

	if len(r.StepDecls) != 1 || r.StepDecls[0].Name != "good" {
		t.Fatalf("step decls = %v", r.StepDecls)
	}
	if r.Ctx.Diags.Count(ir.Error) != 1 {
		t.Errorf("expected 1 error diagnostic, got %d", r.Ctx.Diags.Count(ir.Error))
	}
	if !diagContains(r.Ctx, ir.Error, "malformed step declaration") {
		t.Error("missing malformed-step diagnostic")
	}
}

func TestDiscovery_MissingConfig(t *testing.T) {
	r := NewRun(nil, nil)
	r.ConfigPath = filepath.Join(t.TempDir(), "absent.yaml")
	runDiscovery(t, r)

	if r.Config != nil {
		t.Error("expected nil config")
	}
	if r.Ctx.Diags.HasErrors() {
		t.Error("missing config must not be an error")
	}
}

func TestDiscovery_MappingFailureDegrades(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepc.yaml", "basePackage: acme\n")
	badMapping := writeFile(t, dir, "mapping.yaml", "{{nope")

	r := NewRun(nil, nil)
	r.ConfigPath = cfg
	r.MappingPath = badMapping
	runDiscovery(t, r)

	if r.Ctx.Mapping != nil {
		t.Error("expected no mapping")
	}
	if !diagContains(r.Ctx, ir.Warning, "runtime mapping not loaded") {
		t.Error("expected mapping warning")
	}
	if r.Ctx.Diags.HasErrors() {
		t.Error("mapping failure must not fail the run")
	}
}

func TestDiscovery_AspectsAndOrchestrators(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stepc.yaml", `
basePackage: acme
aspects:
  - name: cache
    scope: GLOBAL
    position: BEFORE_STEP
  - name: retry
orchestrators:
  - name: flow
    generate: true
`)

	r := NewRun(nil, nil)
	r.ConfigPath = cfg
	runDiscovery(t, r)

	if len(r.Ctx.Aspects) != 2 {
		t.Fatalf("aspects = %d", len(r.Ctx.Aspects))
	}
	if r.Ctx.Aspects[0].Scope != ir.ScopeGlobal {
		t.Errorf("cache scope = %s", r.Ctx.Aspects[0].Scope)
	}
	if r.Ctx.Aspects[1].Scope != ir.ScopeStep {
		t.Errorf("retry default scope = %s", r.Ctx.Aspects[1].Scope)
	}
	if len(r.Ctx.Orchestrators) != 1 || r.Ctx.Orchestrators[0].BasePackage != "acme" {
		t.Errorf("orchestrators = %+v", r.Ctx.Orchestrators)
	}
}

func diagContains(ctx *ir.Context, sev ir.Severity, substr string) bool {
	for _, d := range ctx.Diags.Items() {
		if d.Severity == sev && strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}
