// Package descriptor loads the serialized protocol-descriptor bundle that
// binding construction matches gRPC steps against.
package descriptor

import (
	"fmt"
	"os"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Method is one resolved service method from the descriptor set.
type Method struct {
	Service         string // fully qualified service name
	Name            string
	InputType       string // fully qualified request message name
	OutputType      string // fully qualified response message name
	ClientStreaming bool
	ServerStreaming bool
}

type service struct {
	fullName string
	methods  []Method
}

// Registry indexes the services of a loaded FileDescriptorSet by simple and
// fully qualified name.
type Registry struct {
	services map[string]*service
}

// Empty returns a registry with no services; every lookup misses.
func Empty() *Registry {
	return &Registry{services: make(map[string]*service)}
}

// Load reads a serialized FileDescriptorSet from disk and indexes its
// services.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor set: %w", err)
	}
	return Parse(data)
}

// Parse indexes a serialized FileDescriptorSet.
func Parse(data []byte) (*Registry, error) {
	var fds descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &fds); err != nil {
		return nil, fmt.Errorf("unmarshaling descriptor set: %w", err)
	}

	files, err := protodesc.NewFiles(&fds)
	if err != nil {
		return nil, fmt.Errorf("building descriptor files: %w", err)
	}

	r := Empty()
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		svcs := fd.Services()
		for i := 0; i < svcs.Len(); i++ {
			r.index(svcs.Get(i))
		}
		return true
	})
	return r, nil
}

func (r *Registry) index(sd protoreflect.ServiceDescriptor) {
	svc := &service{fullName: string(sd.FullName())}
	mds := sd.Methods()
	for i := 0; i < mds.Len(); i++ {
		md := mds.Get(i)
		svc.methods = append(svc.methods, Method{
			Service:         svc.fullName,
			Name:            string(md.Name()),
			InputType:       string(md.Input().FullName()),
			OutputType:      string(md.Output().FullName()),
			ClientStreaming: md.IsStreamingClient(),
			ServerStreaming: md.IsStreamingServer(),
		})
	}
	r.services[normalize(string(sd.Name()))] = svc
	r.services[normalize(svc.fullName)] = svc
}

// Len returns the number of distinct indexed services.
func (r *Registry) Len() int {
	seen := make(map[string]bool)
	for _, svc := range r.services {
		seen[svc.fullName] = true
	}
	return len(seen)
}

// Lookup resolves a service by simple or fully qualified name (matched
// case-insensitively, ignoring separators) and picks its method: the one
// matching methodHint if present, otherwise the service's single method.
func (r *Registry) Lookup(serviceName, methodHint string) (Method, bool) {
	svc, ok := r.services[normalize(serviceName)]
	if !ok {
		return Method{}, false
	}

	if methodHint != "" {
		want := normalize(methodHint)
		for _, m := range svc.methods {
			if normalize(m.Name) == want {
				return m, true
			}
		}
	}

	if len(svc.methods) == 1 {
		return svc.methods[0], true
	}
	return Method{}, false
}

// normalize folds case and strips the separators that differ between step
// names and descriptor names ("user-lookup" matches "UserLookup").
func normalize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '-', '_', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
