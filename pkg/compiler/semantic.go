package compiler

import "github.com/systemstart/stepc/pkg/ir"

// semanticPhase canonicalizes cardinalities into streaming shapes and
// enforces the platform/transport constraints. A violating step is excluded
// from later phases; the remaining steps still proceed.
type semanticPhase struct{}

func (*semanticPhase) Name() string { return "semantic analysis" }

func (p *semanticPhase) Run(r *Run) error {
	for _, model := range r.Ctx.ActiveSteps() {
		p.analyze(r, model)
	}
	return nil
}

func (p *semanticPhase) analyze(r *Run, model *ir.StepModel) {
	ctx := r.Ctx

	cardinality, err := ir.CanonicalShape(model.Cardinality)
	if err != nil {
		ctx.Diags.Errorf(model.ServiceName, "%v", err)
		ctx.Exclude(model.ServiceName)
		return
	}
	model.Shape = ApplyCardinality(model.Shape, cardinality)

	if ctx.Platform == ir.PlatformFunction {
		if ctx.Transport != ir.TransportREST {
			ctx.Diags.Errorf(model.ServiceName,
				"platform FUNCTION requires pipeline.transport=REST, got %s", ctx.Transport)
			ctx.Exclude(model.ServiceName)
			return
		}
		if ctx.StrictFunctionUnary && model.Shape != ir.ShapeUnaryUnary {
			ctx.Diags.Errorf(model.ServiceName,
				"platform FUNCTION allows only UNARY_UNARY exchanges, got %s", model.Shape)
			ctx.Exclude(model.ServiceName)
			return
		}
	}
}

// ApplyCardinality merges a canonical cardinality shape onto the step's
// current shape. A streaming-input cardinality forces input streaming on;
// the output side follows the cardinality table: expansion and many-to-many
// force streaming on, reduction forces it off, one-to-one leaves it alone.
// Applying the same cardinality twice yields the same shape.
func ApplyCardinality(current, cardinality ir.Shape) ir.Shape {
	in := current.StreamingInput() || cardinality.StreamingInput()

	out := current.StreamingOutput()
	switch cardinality {
	case ir.ShapeUnaryStreaming, ir.ShapeStreamingStreaming:
		out = true
	case ir.ShapeStreamingUnary:
		out = false
	}

	switch {
	case in && out:
		return ir.ShapeStreamingStreaming
	case in:
		return ir.ShapeStreamingUnary
	case out:
		return ir.ShapeUnaryStreaming
	default:
		return ir.ShapeUnaryUnary
	}
}
