package compiler

import (
	"log/slog"

	"github.com/systemstart/stepc/pkg/render"
)

// renderPhase drives the rendering engine over the constructed bindings.
// Renderer failures (a shape a renderer cannot express, an unwritable output
// tree) are terminal.
type renderPhase struct{}

func (*renderPhase) Name() string { return "rendering" }

func (p *renderPhase) Run(r *Run) error {
	ctx := r.Ctx

	engine := render.NewEngine(render.Policy{
		ModuleName:        ctx.ModuleName,
		HasRuntimeMapping: ctx.Mapping != nil,
		PluginHost:        ctx.PluginHost,
	})

	var aspectNames []string
	for _, a := range ctx.Aspects {
		aspectNames = append(aspectNames, a.Name)
	}

	written, err := engine.Render(ctx, &render.GenContext{
		OutputRoot:  ctx.OutputRoot,
		AspectNames: aspectNames,
		Descriptors: r.Descriptors,
		Platform:    ctx.Platform,
	})
	if err != nil {
		return err
	}

	slog.Info("rendering complete", "artifacts", len(written), "root", ctx.OutputRoot)
	return nil
}
