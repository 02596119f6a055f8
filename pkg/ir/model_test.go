package ir

import (
	"strings"
	"testing"
)

func TestNewStepModel_RequiredFields(t *testing.T) {
	if _, err := NewStepModel("", "acme.pipeline"); err == nil {
		t.Fatal("expected error for blank service name")
	}
	if _, err := NewStepModel("tokenize", "  "); err == nil {
		t.Fatal("expected error for blank package")
	}

	m, err := NewStepModel("user-lookup", "acme.pipeline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.GeneratedName != "UserLookup" {
		t.Errorf("generated name = %q, want UserLookup", m.GeneratedName)
	}
	if m.Role != RolePipelineServer {
		t.Errorf("default role = %s, want PIPELINE_SERVER", m.Role)
	}
	if m.Shape != ShapeUnaryUnary {
		t.Errorf("default shape = %s, want UNARY_UNARY", m.Shape)
	}
}

func TestGeneratedName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"tokenize", "Tokenize"},
		{"user-lookup", "UserLookup"},
		{"cache_probe", "CacheProbe"},
		{"acme.index", "AcmeIndex"},
	}
	for _, tt := range tests {
		if got := GeneratedName(tt.in); got != tt.want {
			t.Errorf("GeneratedName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveTargets_Once(t *testing.T) {
	m, err := NewStepModel("tokenize", "acme.pipeline")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.ResolveTargets([]Target{TargetGrpcService}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.HasTarget(TargetGrpcService) {
		t.Error("resolved target missing")
	}

	err = m.ResolveTargets([]Target{TargetClientStep})
	if err == nil {
		t.Fatal("expected error on second resolution")
	}
	if !strings.Contains(err.Error(), "already resolved") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestServerTargets(t *testing.T) {
	m, err := NewStepModel("tokenize", "acme.pipeline")
	if err != nil {
		t.Fatal(err)
	}
	m.Targets = []Target{TargetGrpcService, TargetLocalClientStep, TargetRestResource}

	got := m.ServerTargets()
	if len(got) != 2 {
		t.Fatalf("expected 2 server targets, got %v", got)
	}
}

func TestRuntimeMapping_ModuleOf(t *testing.T) {
	var nilMapping *RuntimeMapping
	if nilMapping.ModuleOf("tokenize") != "" {
		t.Error("nil mapping should map every step to the empty module")
	}

	rm := &RuntimeMapping{
		Runtimes: map[string]string{"search": "rt-1"},
		Steps:    map[string]string{"tokenize": "search"},
	}
	if rm.ModuleOf("tokenize") != "search" {
		t.Error("mapped step should resolve to its module")
	}
	if rm.ModuleOf("unmapped") != "" {
		t.Error("unmapped step should resolve to the empty module")
	}
}
