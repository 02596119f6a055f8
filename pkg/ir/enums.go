package ir

import (
	"fmt"
	"strings"
)

// Shape describes the streaming cardinality of a step's exchange.
type Shape string

const (
	ShapeUnaryUnary         Shape = "UNARY_UNARY"
	ShapeUnaryStreaming     Shape = "UNARY_STREAMING"
	ShapeStreamingUnary     Shape = "STREAMING_UNARY"
	ShapeStreamingStreaming Shape = "STREAMING_STREAMING"
)

// StreamingInput reports whether the shape consumes a stream.
func (s Shape) StreamingInput() bool {
	return s == ShapeStreamingUnary || s == ShapeStreamingStreaming
}

// StreamingOutput reports whether the shape produces a stream.
func (s Shape) StreamingOutput() bool {
	return s == ShapeUnaryStreaming || s == ShapeStreamingStreaming
}

// CanonicalShape maps a declared cardinality (or an already canonical shape)
// to its streaming shape. Canonicalization is idempotent: feeding a canonical
// shape back in returns it unchanged.
func CanonicalShape(cardinality string) (Shape, error) {
	switch strings.ToUpper(strings.TrimSpace(cardinality)) {
	case "ONE_TO_ONE", "ONE-TO-ONE", "UNARY", string(ShapeUnaryUnary):
		return ShapeUnaryUnary, nil
	case "EXPANSION", "ONE_TO_MANY", "ONE-TO-MANY", string(ShapeUnaryStreaming):
		return ShapeUnaryStreaming, nil
	case "REDUCTION", "MANY_TO_ONE", "MANY-TO-ONE", string(ShapeStreamingUnary):
		return ShapeStreamingUnary, nil
	case "MANY_TO_MANY", "MANY-TO-MANY", string(ShapeStreamingStreaming):
		return ShapeStreamingStreaming, nil
	default:
		return "", fmt.Errorf("unknown cardinality %q", cardinality)
	}
}

// Role is the deployment role a step's generated artifact plays.
type Role string

const (
	RolePipelineServer     Role = "PIPELINE_SERVER"
	RolePluginServer       Role = "PLUGIN_SERVER"
	RoleRestServer         Role = "REST_SERVER"
	RoleOrchestratorClient Role = "ORCHESTRATOR_CLIENT"
	RolePluginClient       Role = "PLUGIN_CLIENT"
)

// Server reports whether the role sits on the serving side of the boundary.
func (r Role) Server() bool {
	return r == RolePipelineServer || r == RolePluginServer || r == RoleRestServer
}

// OutputDir is the role-specific subdirectory under the generated output root.
func (r Role) OutputDir() string {
	switch r {
	case RolePipelineServer:
		return "server"
	case RolePluginServer:
		return "plugin-server"
	case RoleRestServer:
		return "rest-server"
	case RoleOrchestratorClient:
		return "orchestrator-client"
	case RolePluginClient:
		return "plugin-client"
	}
	return "unknown"
}

// ParseRole resolves a declared role name, defaulting to PIPELINE_SERVER for
// a blank value.
func ParseRole(name string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "PIPELINE_SERVER", "SERVER":
		return RolePipelineServer, nil
	case "PLUGIN_SERVER":
		return RolePluginServer, nil
	case "REST_SERVER":
		return RoleRestServer, nil
	case "ORCHESTRATOR_CLIENT", "CLIENT":
		return RoleOrchestratorClient, nil
	case "PLUGIN_CLIENT":
		return RolePluginClient, nil
	default:
		return "", fmt.Errorf("unknown deployment role %q", name)
	}
}

// Transport is the wire protocol between steps.
type Transport string

const (
	TransportGRPC  Transport = "GRPC"
	TransportREST  Transport = "REST"
	TransportLocal Transport = "LOCAL"
)

// ParseTransport resolves a transport name; blank means GRPC.
func ParseTransport(name string) (Transport, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "GRPC":
		return TransportGRPC, nil
	case "REST", "HTTP":
		return TransportREST, nil
	case "LOCAL", "INPROCESS":
		return TransportLocal, nil
	default:
		return "", fmt.Errorf("unknown transport %q", name)
	}
}

// Platform is the hosting mode the artifacts target.
type Platform string

const (
	PlatformCompute  Platform = "COMPUTE"
	PlatformFunction Platform = "FUNCTION"
)

// ParsePlatform resolves a platform name including legacy aliases; blank
// means COMPUTE.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "COMPUTE", "STANDARD", "VM":
		return PlatformCompute, nil
	case "FUNCTION", "SERVERLESS", "FAAS":
		return PlatformFunction, nil
	default:
		return "", fmt.Errorf("unknown platform %q", name)
	}
}

// Target tags one kind of generated artifact.
type Target string

const (
	TargetGrpcService     Target = "GRPC_SERVICE"
	TargetRestResource    Target = "REST_RESOURCE"
	TargetClientStep      Target = "CLIENT_STEP"
	TargetRestClientStep  Target = "REST_CLIENT_STEP"
	TargetLocalClientStep Target = "LOCAL_CLIENT_STEP"

	// TargetExternalAdapter is never produced by target resolution; binding
	// construction introduces it for delegating steps.
	TargetExternalAdapter Target = "EXTERNAL_ADAPTER"
)

// Server reports whether the target is a serving-side artifact.
func (t Target) Server() bool {
	return t == TargetGrpcService || t == TargetRestResource
}

// MapperFallback controls what happens when a delegate's types differ from
// the step's own types and no mapper is configured.
type MapperFallback string

const (
	FallbackUnset       MapperFallback = ""
	FallbackNone        MapperFallback = "NONE"
	FallbackAutoConvert MapperFallback = "AUTO_CONVERT"
)

// ParseMapperFallback resolves a fallback mode; blank stays unset so a
// global default can apply.
func ParseMapperFallback(name string) (MapperFallback, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "":
		return FallbackUnset, nil
	case "NONE":
		return FallbackNone, nil
	case "AUTO_CONVERT", "AUTOCONVERT":
		return FallbackAutoConvert, nil
	default:
		return "", fmt.Errorf("unknown mapper fallback %q", name)
	}
}

// AspectScope says whether an aspect applies to the whole pipeline or to a
// single step.
type AspectScope string

const (
	ScopeGlobal AspectScope = "GLOBAL"
	ScopeStep   AspectScope = "STEP"
)

// AspectPosition says whether an aspect runs before or after the step body.
type AspectPosition string

const (
	PositionBeforeStep AspectPosition = "BEFORE_STEP"
	PositionAfterStep  AspectPosition = "AFTER_STEP"
)
