package descriptor

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// testDescriptorSet builds a serialized FileDescriptorSet with one Tokenize
// service (single method) and one Search service (two methods).
func testDescriptorSet(t *testing.T) []byte {
	t.Helper()

	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("acme/search.proto"),
		Package: proto.String("acme.search"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("Document")},
			{Name: proto.String("Token")},
			{Name: proto.String("Query")},
			{Name: proto.String("Result")},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("Tokenize"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:            proto.String("Process"),
						InputType:       proto.String(".acme.search.Document"),
						OutputType:      proto.String(".acme.search.Token"),
						ServerStreaming: proto.Bool(true),
					},
				},
			},
			{
				Name: proto.String("Search"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:       proto.String("Process"),
						InputType:  proto.String(".acme.search.Query"),
						OutputType: proto.String(".acme.search.Result"),
					},
					{
						Name:       proto.String("Explain"),
						InputType:  proto.String(".acme.search.Query"),
						OutputType: proto.String(".acme.search.Result"),
					},
				},
			},
		},
	}

	data, err := proto.Marshal(&descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{file},
	})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestParse_LookupBySimpleName(t *testing.T) {
	reg, err := Parse(testDescriptorSet(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 services, got %d", reg.Len())
	}

	m, ok := reg.Lookup("Tokenize", "process")
	if !ok {
		t.Fatal("expected to resolve Tokenize")
	}
	if m.Service != "acme.search.Tokenize" {
		t.Errorf("service = %q", m.Service)
	}
	if m.Name != "Process" {
		t.Errorf("method = %q", m.Name)
	}
	if m.InputType != "acme.search.Document" || m.OutputType != "acme.search.Token" {
		t.Errorf("types = %q -> %q", m.InputType, m.OutputType)
	}
	if m.ClientStreaming || !m.ServerStreaming {
		t.Errorf("streaming flags = %v/%v", m.ClientStreaming, m.ServerStreaming)
	}
}

func TestLookup_NameNormalization(t *testing.T) {
	reg, err := Parse(testDescriptorSet(t))
	if err != nil {
		t.Fatal(err)
	}

	// step names are kebab-case; descriptor names are CamelCase
	if _, ok := reg.Lookup("tokenize", ""); !ok {
		t.Error("lower-case step name should match")
	}
	if _, ok := reg.Lookup("acme.search.Tokenize", ""); !ok {
		t.Error("fully qualified name should match")
	}
}

func TestLookup_MethodHint(t *testing.T) {
	reg, err := Parse(testDescriptorSet(t))
	if err != nil {
		t.Fatal(err)
	}

	m, ok := reg.Lookup("Search", "explain")
	if !ok || m.Name != "Explain" {
		t.Errorf("hint lookup = %+v, %v", m, ok)
	}

	// Two methods and no matching hint: ambiguous, no match.
	if _, ok := reg.Lookup("Search", "nope"); ok {
		t.Error("ambiguous service without hint match should miss")
	}
}

func TestLookup_MissingService(t *testing.T) {
	reg, err := Parse(testDescriptorSet(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup("Unknown", "process"); ok {
		t.Error("unknown service should miss")
	}
}

func TestParse_InvalidBytes(t *testing.T) {
	if _, err := Parse([]byte("not a descriptor set")); err == nil {
		t.Fatal("expected error for invalid bytes")
	}
}

func TestEmpty(t *testing.T) {
	reg := Empty()
	if reg.Len() != 0 {
		t.Errorf("empty registry has %d services", reg.Len())
	}
	if _, ok := reg.Lookup("anything", ""); ok {
		t.Error("empty registry must miss")
	}
}
