package ir

import "fmt"

// Binding pairs a step model with the transport-specific descriptors its
// renderer needs. The concrete variants are GrpcBinding, RestBinding,
// LocalBinding, and ExternalAdapterBinding.
type Binding interface {
	Step() *StepModel
	Target() Target
}

// BindingKey identifies one (step, target) binding in the context map.
func BindingKey(stepName string, target Target) string {
	return fmt.Sprintf("%s/%s", stepName, target)
}

// GrpcBinding carries the matched service and method descriptors for a gRPC
// artifact.
type GrpcBinding struct {
	Model       *StepModel
	ServiceName string // fully qualified descriptor service name
	MethodName  string
	InputType   string // fully qualified request message name
	OutputType  string // fully qualified response message name
	Tag         Target // GRPC_SERVICE or CLIENT_STEP
}

func (b *GrpcBinding) Step() *StepModel { return b.Model }
func (b *GrpcBinding) Target() Target   { return b.Tag }

// RestBinding carries the computed resource path for a REST artifact.
type RestBinding struct {
	Model *StepModel
	Path  string
	Tag   Target // REST_RESOURCE or REST_CLIENT_STEP
}

func (b *RestBinding) Step() *StepModel { return b.Model }
func (b *RestBinding) Target() Target   { return b.Tag }

// LocalBinding is an in-process binding; it needs no descriptors.
type LocalBinding struct {
	Model *StepModel
}

func (b *LocalBinding) Step() *StepModel { return b.Model }
func (b *LocalBinding) Target() Target   { return TargetLocalClientStep }

// ExternalAdapterBinding wires a delegating step to its external
// implementation.
type ExternalAdapterBinding struct {
	Model            *StepModel
	AdapterName      string
	Package          string
	DelegateTypeName string
	MapperTypeName   string
}

func (b *ExternalAdapterBinding) Step() *StepModel { return b.Model }
func (b *ExternalAdapterBinding) Target() Target   { return TargetExternalAdapter }
