package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/systemstart/stepc/pkg/ir"
)

const restResourceTemplate = `// Code generated by stepc. DO NOT EDIT.

package {{ .GoPackage }}
{{- if .Aspects }}

// Enabled aspects: {{ .Aspects | join ", " }}.
{{- end }}

// {{ .TypeName }}Resource serves {{ .DeclaredType }} at {{ .Path | quote }}.
type {{ .TypeName }}Resource struct {
	step {{ .DeclaredType | simple }}
}

func New{{ .TypeName }}Resource(step {{ .DeclaredType | simple }}) *{{ .TypeName }}Resource {
	return &{{ .TypeName }}Resource{step: step}
}

func (r *{{ .TypeName }}Resource) Path() string {
	return {{ .Path | quote }}
}

{{ if and (not .StreamIn) (not .StreamOut) -}}
func (r *{{ .TypeName }}Resource) Handle(request {{ .InputType }}) ({{ .OutputType }}, error) {
{{- if .PassThrough }}
	// Side-effect step: the response is the request, unchanged.
	if err := r.step.Observe(request); err != nil {
		var zero {{ .OutputType }}
		return zero, err
	}
	return {{ .OutputType }}(request), nil
{{- else }}
	return r.step.Process(request)
{{- end }}
}
{{ else -}}
func (r *{{ .TypeName }}Resource) Handle(requests {{ if .StreamIn }}<-chan {{ end }}{{ .InputType }}) ({{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}, error) {
	return r.step.Process(requests)
}
{{ end -}}
`

const functionEntryTemplate = `// Code generated by stepc. DO NOT EDIT.

package {{ .GoPackage }}
{{- if .Aspects }}

// Enabled aspects: {{ .Aspects | join ", " }}.
{{- end }}

// {{ .TypeName }}Function is the request/response entry point hosting
// {{ .DeclaredType }} at {{ .Path | quote }}.
func {{ .TypeName }}Function(step {{ .DeclaredType | simple }}) func({{ .InputType }}) ({{ .OutputType }}, error) {
	return func(request {{ .InputType }}) ({{ .OutputType }}, error) {
{{- if .PassThrough }}
		// Side-effect step: the response is the request, unchanged.
		if err := step.Observe(request); err != nil {
			var zero {{ .OutputType }}
			return zero, err
		}
		return {{ .OutputType }}(request), nil
{{- else }}
		return step.Process(request)
{{- end }}
	}
}
`

const restClientTemplate = `// Code generated by stepc. DO NOT EDIT.

package {{ .GoPackage }}

// {{ .TypeName }}RestClientStep invokes the remote resource at
// {{ .Path | quote }} on behalf of the orchestrator.
type {{ .TypeName }}RestClientStep struct {
	client RestCaller
}

func New{{ .TypeName }}RestClientStep(client RestCaller) *{{ .TypeName }}RestClientStep {
	return &{{ .TypeName }}RestClientStep{client: client}
}

func (c *{{ .TypeName }}RestClientStep) Process(input {{ if .StreamIn }}<-chan {{ end }}{{ .InputType }}) ({{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}, error) {
	var output {{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}
	err := c.client.Call({{ .Path | quote }}, input, &output)
	return output, err
}
`

// restResourceRenderer renders the server-side REST artifact. Under the
// FUNCTION platform it emits a thin function-style entry point instead,
// which only supports strictly unary exchanges.
type restResourceRenderer struct {
	resource *template.Template
	function *template.Template
}

func newRestResourceRenderer() *restResourceRenderer {
	return &restResourceRenderer{
		resource: mustTemplate("rest_resource", restResourceTemplate),
		function: mustTemplate("function_entry", functionEntryTemplate),
	}
}

func (*restResourceRenderer) Target() ir.Target { return ir.TargetRestResource }

func (*restResourceRenderer) FileName(m *ir.StepModel) string {
	return fileBase(m.ServiceName) + "_resource.go"
}

func (r *restResourceRenderer) Render(b ir.Binding, g *GenContext) ([]byte, error) {
	rb, ok := b.(*ir.RestBinding)
	if !ok {
		return nil, fmt.Errorf("expected REST binding, got %T", b)
	}

	tmpl := r.resource
	if g.Platform == ir.PlatformFunction {
		if rb.Model.Shape != ir.ShapeUnaryUnary {
			return nil, fmt.Errorf("function entry point for step %q requires a unary exchange, got %s",
				rb.Model.ServiceName, rb.Model.Shape)
		}
		tmpl = r.function
	}
	return executeRest(tmpl, rb, g)
}

type restClientRenderer struct {
	tmpl *template.Template
}

func newRestClientRenderer() *restClientRenderer {
	return &restClientRenderer{tmpl: mustTemplate("rest_client", restClientTemplate)}
}

func (*restClientRenderer) Target() ir.Target { return ir.TargetRestClientStep }

func (*restClientRenderer) FileName(m *ir.StepModel) string {
	return fileBase(m.ServiceName) + "_rest_client_step.go"
}

func (r *restClientRenderer) Render(b ir.Binding, g *GenContext) ([]byte, error) {
	rb, ok := b.(*ir.RestBinding)
	if !ok {
		return nil, fmt.Errorf("expected REST binding, got %T", b)
	}
	return executeRest(r.tmpl, rb, g)
}

func executeRest(tmpl *template.Template, rb *ir.RestBinding, g *GenContext) ([]byte, error) {
	data := newStepData(rb.Model, g)
	data.Path = rb.Path

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	return buf.Bytes(), nil
}
