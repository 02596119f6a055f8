package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/systemstart/stepc/pkg/ir"
)

const localClientTemplate = `// Code generated by stepc. DO NOT EDIT.

package {{ .GoPackage }}

// {{ .TypeName }}LocalStep binds the orchestrator directly to
// {{ .DeclaredType }}, skipping the network entirely.
type {{ .TypeName }}LocalStep struct {
	step {{ .DeclaredType | simple }}
}

func New{{ .TypeName }}LocalStep(step {{ .DeclaredType | simple }}) *{{ .TypeName }}LocalStep {
	return &{{ .TypeName }}LocalStep{step: step}
}

func (l *{{ .TypeName }}LocalStep) Process(input {{ if .StreamIn }}<-chan {{ end }}{{ .InputType }}) ({{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}, error) {
{{- if .PassThrough }}
	// Side-effect step: the output is the input, unchanged.
	if err := l.step.Observe(input); err != nil {
		var zero {{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}
		return zero, err
	}
	return {{ if .StreamOut }}(<-chan {{ .OutputType }})(input){{ else }}{{ .OutputType }}(input){{ end }}, nil
{{- else }}
	return l.step.Process(input)
{{- end }}
}
`

type localClientRenderer struct {
	tmpl *template.Template
}

func newLocalClientRenderer() *localClientRenderer {
	return &localClientRenderer{tmpl: mustTemplate("local_client", localClientTemplate)}
}

func (*localClientRenderer) Target() ir.Target { return ir.TargetLocalClientStep }

func (*localClientRenderer) FileName(m *ir.StepModel) string {
	return fileBase(m.ServiceName) + "_local_step.go"
}

func (r *localClientRenderer) Render(b ir.Binding, g *GenContext) ([]byte, error) {
	lb, ok := b.(*ir.LocalBinding)
	if !ok {
		return nil, fmt.Errorf("expected local binding, got %T", b)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, newStepData(lb.Model, g)); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	return buf.Bytes(), nil
}
