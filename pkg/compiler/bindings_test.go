package compiler

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/systemstart/stepc/pkg/descriptor"
	"github.com/systemstart/stepc/pkg/ir"
)

// descriptorSetBytes builds a serialized FileDescriptorSet holding one
// unary Tokenize service.
func descriptorSetBytes(t *testing.T) []byte {
	t.Helper()
	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("acme/pipeline.proto"),
		Package: proto.String("acme.pipeline"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("Document")},
			{Name: proto.String("Token")},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Tokenize"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("Process"),
				InputType:  proto.String(".acme.pipeline.Document"),
				OutputType: proto.String(".acme.pipeline.Token"),
			}},
		}},
	}
	data, err := proto.Marshal(&descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{file},
	})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// multiMethodRegistry indexes a Tokenize service with two methods, one of
// them named after the step.
func multiMethodRegistry(t *testing.T) *descriptor.Registry {
	t.Helper()
	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("acme/multi.proto"),
		Package: proto.String("acme.pipeline"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("Document")},
			{Name: proto.String("Token")},
			{Name: proto.String("Explanation")},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Tokenize"),
			Method: []*descriptorpb.MethodDescriptorProto{
				{
					Name:       proto.String("Tokenize"),
					InputType:  proto.String(".acme.pipeline.Document"),
					OutputType: proto.String(".acme.pipeline.Token"),
				},
				{
					Name:       proto.String("Explain"),
					InputType:  proto.String(".acme.pipeline.Document"),
					OutputType: proto.String(".acme.pipeline.Explanation"),
				},
			},
		}},
	}
	data, err := proto.Marshal(&descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{file},
	})
	if err != nil {
		t.Fatal(err)
	}
	reg, err := descriptor.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func registryOf(t *testing.T) *descriptor.Registry {
	t.Helper()
	reg, err := descriptor.Parse(descriptorSetBytes(t))
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func boundModel(t *testing.T, name string, role ir.Role, targets ...ir.Target) *ir.StepModel {
	t.Helper()
	m, err := ir.NewStepModel(name, "acme.pipeline")
	if err != nil {
		t.Fatal(err)
	}
	m.Role = role
	m.Input = ir.TypeMapping{TypeName: "Document"}
	m.Output = ir.TypeMapping{TypeName: "Token"}
	if err := m.ResolveTargets(targets); err != nil {
		t.Fatal(err)
	}
	return m
}

func runBindings(t *testing.T, r *Run) {
	t.Helper()
	if err := (&bindingPhase{}).Run(r); err != nil {
		t.Fatalf("bindings: %v", err)
	}
}

func TestBindings_GrpcServiceMatched(t *testing.T) {
	r := NewRun(nil, nil)
	r.Descriptors = registryOf(t)
	r.Ctx.Steps = []*ir.StepModel{
		boundModel(t, "tokenize", ir.RolePipelineServer, ir.TargetGrpcService),
	}

	runBindings(t, r)

	b, ok := r.Ctx.Bindings[ir.BindingKey("tokenize", ir.TargetGrpcService)]
	if !ok {
		t.Fatal("expected gRPC binding")
	}
	gb := b.(*ir.GrpcBinding)
	if gb.ServiceName != "acme.pipeline.Tokenize" || gb.MethodName != "Process" {
		t.Errorf("binding = %+v", gb)
	}
}

func TestBindings_MultiMethodServiceMatchesStepName(t *testing.T) {
	r := NewRun(nil, nil)
	r.Descriptors = multiMethodRegistry(t)
	r.Ctx.Steps = []*ir.StepModel{
		boundModel(t, "tokenize", ir.RolePipelineServer, ir.TargetGrpcService),
	}

	runBindings(t, r)

	b, ok := r.Ctx.Bindings[ir.BindingKey("tokenize", ir.TargetGrpcService)]
	if !ok {
		t.Fatal("expected a binding for the method named after the step")
	}
	gb := b.(*ir.GrpcBinding)
	if gb.MethodName != "Tokenize" {
		t.Errorf("method = %q, want %q", gb.MethodName, "Tokenize")
	}
	if diagContains(r.Ctx, ir.Warning, "Skipping gRPC service generation") {
		t.Error("unexpected skip warning")
	}
}

func TestBindings_MissingDescriptorSkips(t *testing.T) {
	r := NewRun(nil, nil)
	r.Descriptors = descriptor.Empty()
	r.Ctx.Steps = []*ir.StepModel{
		boundModel(t, "tokenize", ir.RolePipelineServer, ir.TargetGrpcService),
	}

	runBindings(t, r)

	if len(r.Ctx.Bindings) != 0 {
		t.Error("no binding may be produced without a descriptor")
	}
	if !diagContains(r.Ctx, ir.Warning, "Skipping gRPC service generation") {
		t.Error("missing skip warning")
	}
	if r.Ctx.Diags.HasErrors() {
		t.Error("a missing descriptor is a warning, not an error")
	}
}

func TestBindings_RestPath(t *testing.T) {
	r := NewRun(nil, nil)
	r.Descriptors = descriptor.Empty()
	r.Ctx.Steps = []*ir.StepModel{
		boundModel(t, "tokenize", ir.RoleOrchestratorClient, ir.TargetRestClientStep),
	}

	runBindings(t, r)

	b, ok := r.Ctx.Bindings[ir.BindingKey("tokenize", ir.TargetRestClientStep)]
	if !ok {
		t.Fatal("expected REST binding")
	}
	rb := b.(*ir.RestBinding)
	if rb.Path != "/pipeline/tokenize" {
		t.Errorf("path = %q", rb.Path)
	}
}

func TestBindings_RestPathUnresolvable(t *testing.T) {
	m := boundModel(t, "tokenize", ir.RoleOrchestratorClient, ir.TargetRestClientStep)
	m.Package = "..."

	r := NewRun(nil, nil)
	r.Descriptors = descriptor.Empty()
	r.Ctx.Steps = []*ir.StepModel{m}

	runBindings(t, r)

	if len(r.Ctx.Bindings) != 0 {
		t.Error("expected no binding")
	}
	if !diagContains(r.Ctx, ir.Warning, "Skipping REST client step generation") {
		t.Error("missing skip warning")
	}
}

func TestBindings_LocalClient(t *testing.T) {
	r := NewRun(nil, nil)
	r.Descriptors = descriptor.Empty()
	r.Ctx.Steps = []*ir.StepModel{
		boundModel(t, "tokenize", ir.RoleOrchestratorClient, ir.TargetLocalClientStep),
	}

	runBindings(t, r)

	if _, ok := r.Ctx.Bindings[ir.BindingKey("tokenize", ir.TargetLocalClientStep)]; !ok {
		t.Error("local binding needs no descriptors")
	}
}

func TestBindings_DelegatedStep(t *testing.T) {
	m := boundModel(t, "forward", ir.RoleOrchestratorClient, ir.TargetLocalClientStep)
	m.Delegate = &ir.Delegate{
		ServiceTypeName:      "ExternalTokenizer",
		Package:              "vendor.tokenize",
		ImplementedContracts: []string{"ReactiveService"},
	}

	r := NewRun(nil, nil)
	r.Descriptors = descriptor.Empty()
	r.Ctx.Steps = []*ir.StepModel{m}

	runBindings(t, r)

	ab, ok := r.Ctx.Bindings[ir.BindingKey("forward", ir.TargetExternalAdapter)]
	if !ok {
		t.Fatal("expected external adapter binding")
	}
	adapter := ab.(*ir.ExternalAdapterBinding)
	if adapter.AdapterName != "ForwardAdapter" || adapter.Package != "vendor.tokenize" {
		t.Errorf("adapter = %+v", adapter)
	}

	if _, ok := r.Ctx.Bindings[ir.BindingKey("forward", ir.TargetLocalClientStep)]; !ok {
		t.Error("delegated step with a local client target also gets its local binding")
	}
}

func TestBindings_DelegatedStepIgnoresServerTargets(t *testing.T) {
	m := boundModel(t, "forward", ir.RolePipelineServer, ir.TargetGrpcService)
	m.Delegate = &ir.Delegate{ServiceTypeName: "ExternalTokenizer"}

	r := NewRun(nil, nil)
	r.Descriptors = registryOf(t)
	r.Ctx.Steps = []*ir.StepModel{m}

	runBindings(t, r)

	if _, ok := r.Ctx.Bindings[ir.BindingKey("forward", ir.TargetGrpcService)]; ok {
		t.Error("delegating step must not produce a server binding")
	}
	if !diagContains(r.Ctx, ir.Warning, "ignores server targets") {
		t.Error("missing server-target warning")
	}
}

func TestBindings_InvalidDescriptorSetDegrades(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "descriptors.pb", "garbage")

	r := NewRun(nil, nil)
	r.DescriptorPath = bad
	r.Ctx.Steps = []*ir.StepModel{
		boundModel(t, "tokenize", ir.RolePipelineServer, ir.TargetGrpcService),
	}

	runBindings(t, r)

	if !diagContains(r.Ctx, ir.Warning, "descriptor set not usable") {
		t.Error("missing degrade warning")
	}
	if r.Ctx.Diags.HasErrors() {
		t.Error("invalid descriptor set must not abort the run")
	}
}
