package render

import (
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/stepc/pkg/ir"
)

// stepData is the flattened view of a binding that the templates consume.
// Flags are precomputed so templates stay branch-simple and deterministic.
type stepData struct {
	Name         string
	TypeName     string
	GoPackage    string
	Package      string
	DeclaredType string

	Shape     string
	StreamIn  bool
	StreamOut bool

	InputType    string
	OutputType   string
	InputMapper  string
	OutputMapper string

	// PassThrough marks a side-effect step that needs no value conversion:
	// the output is the input, unchanged.
	PassThrough bool
	AutoConvert bool

	CacheKeyGen string
	Dedicated   bool
	Aspects     []string

	Service    string
	Method     string
	GrpcInput  string
	GrpcOutput string

	Path string

	AdapterName  string
	DelegateType string
	MapperType   string
}

func newStepData(m *ir.StepModel, g *GenContext) stepData {
	aspects := append([]string(nil), g.AspectNames...)
	sort.Strings(aspects)

	return stepData{
		Name:         m.ServiceName,
		TypeName:     m.GeneratedName,
		GoPackage:    goPackage(m.Package),
		Package:      m.Package,
		DeclaredType: m.DeclaredType,
		Shape:        string(m.Shape),
		StreamIn:     m.Shape.StreamingInput(),
		StreamOut:    m.Shape.StreamingOutput(),
		InputType:    m.Input.TypeName,
		OutputType:   m.Output.TypeName,
		InputMapper:  m.Input.MapperTypeName,
		OutputMapper: m.Output.MapperTypeName,
		PassThrough:  m.SideEffect && !m.Input.ConversionRequired && !m.Output.ConversionRequired,
		AutoConvert:  m.MapperFallback == ir.FallbackAutoConvert,
		CacheKeyGen:  m.CacheKeyGen,
		Dedicated:    m.DedicatedPool,
		Aspects:      aspects,
	}
}

// templateFuncs is the sprig map plus "simple", which trims a qualified
// type name to its last dotted segment.
func templateFuncs() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["simple"] = func(name string) string {
		if i := strings.LastIndex(name, "."); i >= 0 {
			return name[i+1:]
		}
		return name
	}
	return funcs
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs()).Parse(text))
}
