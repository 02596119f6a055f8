package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/systemstart/stepc/pkg/ir"
)

const adapterTemplate = `// Code generated by stepc. DO NOT EDIT.

package {{ .GoPackage }}

// {{ .AdapterName }} forwards {{ .Name }} to the external
// {{ .DelegateType }} implementation.
type {{ .AdapterName }} struct {
	delegate {{ .DelegateType | simple }}
{{- if .MapperType }}
	mapper {{ .MapperType | simple }}
{{- end }}
}

func New{{ .AdapterName }}(delegate {{ .DelegateType | simple }}) *{{ .AdapterName }} {
	return &{{ .AdapterName }}{delegate: delegate}
}

func (a *{{ .AdapterName }}) Process(input {{ if .StreamIn }}<-chan {{ end }}{{ .InputType }}) ({{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}, error) {
{{- if .MapperType }}
	converted := a.mapper.MapInput(input)
	result, err := a.delegate.Process(converted)
	if err != nil {
		var zero {{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}
		return zero, err
	}
	return a.mapper.MapOutput(result), nil
{{- else if .AutoConvert }}
	result, err := a.delegate.Process(autoConvert{{ .TypeName }}Input(input))
	if err != nil {
		var zero {{ if .StreamOut }}<-chan {{ end }}{{ .OutputType }}
		return zero, err
	}
	return autoConvert{{ .TypeName }}Output(result), nil
{{- else }}
	return a.delegate.Process(input)
{{- end }}
}
`

type adapterRenderer struct {
	tmpl *template.Template
}

func newAdapterRenderer() *adapterRenderer {
	return &adapterRenderer{tmpl: mustTemplate("external_adapter", adapterTemplate)}
}

func (*adapterRenderer) Target() ir.Target { return ir.TargetExternalAdapter }

func (*adapterRenderer) FileName(m *ir.StepModel) string {
	return fileBase(m.ServiceName) + "_adapter.go"
}

func (r *adapterRenderer) Render(b ir.Binding, g *GenContext) ([]byte, error) {
	ab, ok := b.(*ir.ExternalAdapterBinding)
	if !ok {
		return nil, fmt.Errorf("expected external adapter binding, got %T", b)
	}

	data := newStepData(ab.Model, g)
	data.AdapterName = ab.AdapterName
	data.GoPackage = goPackage(ab.Package)
	data.DelegateType = ab.DelegateTypeName
	data.MapperType = ab.MapperTypeName

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	return buf.Bytes(), nil
}
