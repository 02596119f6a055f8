package compiler

import "github.com/systemstart/stepc/pkg/ir"

// targetPhase computes each step's generation targets from its deployment
// role and the transport mode, replacing only the target set, and aggregates
// the union into the context so rendering knows which renderers must run.
type targetPhase struct{}

func (*targetPhase) Name() string { return "target resolution" }

func (p *targetPhase) Run(r *Run) error {
	for _, model := range r.Ctx.ActiveSteps() {
		targets := TargetsFor(model.Role, r.Ctx.Transport)
		if err := model.ResolveTargets(targets); err != nil {
			return err
		}
		for _, t := range targets {
			r.Ctx.ResolvedTargets[t] = true
		}
	}
	return nil
}

// TargetsFor is the pure (role, transport) resolution table. An unset
// transport defaults to GRPC. Server roles under LOCAL transport still get a
// gRPC service target: local wiring needs an addressable server form.
func TargetsFor(role ir.Role, transport ir.Transport) []ir.Target {
	if transport == "" {
		transport = ir.TransportGRPC
	}

	if role.Server() {
		switch transport {
		case ir.TransportREST:
			return []ir.Target{ir.TargetRestResource}
		default:
			return []ir.Target{ir.TargetGrpcService}
		}
	}

	switch transport {
	case ir.TransportREST:
		return []ir.Target{ir.TargetRestClientStep}
	case ir.TransportLocal:
		return []ir.Target{ir.TargetLocalClientStep}
	default:
		return []ir.Target{ir.TargetClientStep}
	}
}
