package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/systemstart/stepc/pkg/ir"
)

const grpcServiceTemplate = `// Code generated by stepc. DO NOT EDIT.

package {{ .GoPackage }}
{{- if .Aspects }}

// Enabled aspects: {{ .Aspects | join ", " }}.
{{- end }}

// {{ .TypeName }}GrpcService exposes {{ .DeclaredType }} as the
// {{ .Service }} gRPC service.
type {{ .TypeName }}GrpcService struct {
	step {{ .DeclaredType | simple }}
{{- if .Dedicated }}
	pool *DedicatedPool
{{- end }}
{{- if .CacheKeyGen }}
	keys {{ .CacheKeyGen }}
{{- end }}
}

func New{{ .TypeName }}GrpcService(step {{ .DeclaredType | simple }}) *{{ .TypeName }}GrpcService {
	return &{{ .TypeName }}GrpcService{step: step}
}

{{ if and (not .StreamIn) (not .StreamOut) -}}
func (s *{{ .TypeName }}GrpcService) {{ .Method }}(request *{{ .GrpcInput | simple }}) (*{{ .GrpcOutput | simple }}, error) {
{{- if .PassThrough }}
	// Side-effect step: the response is the request, unchanged.
	if err := s.step.Observe(from{{ .GrpcInput | simple }}(request)); err != nil {
		return nil, err
	}
	return (*{{ .GrpcOutput | simple }})(request), nil
{{- else }}
	result, err := s.step.Process(from{{ .GrpcInput | simple }}(request))
	if err != nil {
		return nil, err
	}
	return to{{ .GrpcOutput | simple }}(result), nil
{{- end }}
}
{{ else -}}
func (s *{{ .TypeName }}GrpcService) {{ .Method }}(stream {{ .Service | simple }}_{{ .Method }}Stream) error {
{{- if .StreamIn }}
	requests := receive{{ .GrpcInput | simple }}(stream)
{{- else }}
	requests := single{{ .GrpcInput | simple }}(stream)
{{- end }}
{{- if .StreamOut }}
	return s.step.Process(requests, send{{ .GrpcOutput | simple }}(stream))
{{- else }}
	result, err := s.step.Process(requests)
	if err != nil {
		return err
	}
	return stream.SendAndClose(to{{ .GrpcOutput | simple }}(result))
{{- end }}
}
{{ end -}}
`

const grpcClientTemplate = `// Code generated by stepc. DO NOT EDIT.

package {{ .GoPackage }}

// {{ .TypeName }}ClientStep invokes the remote {{ .Service }} service on
// behalf of the orchestrator.
type {{ .TypeName }}ClientStep struct {
	client {{ .Service | simple }}Client
}

func New{{ .TypeName }}ClientStep(client {{ .Service | simple }}Client) *{{ .TypeName }}ClientStep {
	return &{{ .TypeName }}ClientStep{client: client}
}

{{ if and (not .StreamIn) (not .StreamOut) -}}
func (c *{{ .TypeName }}ClientStep) Process(input {{ .InputType }}) ({{ .OutputType }}, error) {
	response, err := c.client.{{ .Method }}(to{{ .GrpcInput | simple }}(input))
	if err != nil {
		var zero {{ .OutputType }}
		return zero, err
	}
	return from{{ .GrpcOutput | simple }}(response), nil
}
{{ else -}}
func (c *{{ .TypeName }}ClientStep) Process(input {{ if .StreamIn }}<-chan {{ end }}{{ .InputType }}) ({{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}, error) {
	stream, err := c.client.{{ .Method }}()
	if err != nil {
		return nil, err
	}
	return exchange{{ .TypeName }}(stream, input)
}
{{ end -}}
`

type grpcServiceRenderer struct {
	tmpl *template.Template
}

func newGrpcServiceRenderer() *grpcServiceRenderer {
	return &grpcServiceRenderer{tmpl: mustTemplate("grpc_service", grpcServiceTemplate)}
}

func (*grpcServiceRenderer) Target() ir.Target { return ir.TargetGrpcService }

func (*grpcServiceRenderer) FileName(m *ir.StepModel) string {
	return fileBase(m.ServiceName) + "_grpc_service.go"
}

func (r *grpcServiceRenderer) Render(b ir.Binding, g *GenContext) ([]byte, error) {
	gb, ok := b.(*ir.GrpcBinding)
	if !ok {
		return nil, fmt.Errorf("expected gRPC binding, got %T", b)
	}
	return executeGrpc(r.tmpl, gb, g)
}

type grpcClientRenderer struct {
	tmpl *template.Template
}

func newGrpcClientRenderer() *grpcClientRenderer {
	return &grpcClientRenderer{tmpl: mustTemplate("grpc_client", grpcClientTemplate)}
}

func (*grpcClientRenderer) Target() ir.Target { return ir.TargetClientStep }

func (*grpcClientRenderer) FileName(m *ir.StepModel) string {
	return fileBase(m.ServiceName) + "_client_step.go"
}

func (r *grpcClientRenderer) Render(b ir.Binding, g *GenContext) ([]byte, error) {
	gb, ok := b.(*ir.GrpcBinding)
	if !ok {
		return nil, fmt.Errorf("expected gRPC binding, got %T", b)
	}
	return executeGrpc(r.tmpl, gb, g)
}

func executeGrpc(tmpl *template.Template, gb *ir.GrpcBinding, g *GenContext) ([]byte, error) {
	data := newStepData(gb.Model, g)
	data.Service = gb.ServiceName
	data.Method = gb.MethodName
	data.GrpcInput = gb.InputType
	data.GrpcOutput = gb.OutputType

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	return buf.Bytes(), nil
}
