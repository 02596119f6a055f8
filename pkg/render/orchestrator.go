package render

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/systemstart/stepc/pkg/ir"
)

const orchestratorTemplate = `// Code generated by stepc. DO NOT EDIT.

package {{ .GoPackage }}
{{- if .Aspects }}

// Enabled aspects: {{ .Aspects | join ", " }}.
{{- end }}

// {{ .TypeName }} sequences the pipeline steps of {{ .Package }}.
type {{ .TypeName }} struct {
	steps []Step
}

func New{{ .TypeName }}(steps ...Step) *{{ .TypeName }} {
	return &{{ .TypeName }}{steps: steps}
}

func (o *{{ .TypeName }}) Run(input any) (any, error) {
	current := input
	for _, step := range o.steps {
		next, err := step.Process(current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
`

type orchestratorRenderer struct {
	tmpl *template.Template
}

func newOrchestratorRenderer() *orchestratorRenderer {
	return &orchestratorRenderer{tmpl: mustTemplate("orchestrator", orchestratorTemplate)}
}

func (r *orchestratorRenderer) Render(o *ir.OrchestratorModel, g *GenContext) ([]byte, error) {
	aspects := append([]string(nil), o.Aspects...)
	sort.Strings(aspects)

	data := struct {
		TypeName  string
		GoPackage string
		Package   string
		Aspects   []string
	}{
		TypeName:  ir.GeneratedName(o.Name),
		GoPackage: goPackage(o.BasePackage),
		Package:   o.BasePackage,
		Aspects:   aspects,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	return buf.Bytes(), nil
}
