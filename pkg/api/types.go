package api

const (
	// ConfigFilename is the declarative pipeline configuration consumed by
	// discovery.
	ConfigFilename = "stepc.yaml"

	// LegacyStepGlob matches annotation-style step declaration files scanned
	// when the config declares no steps.
	LegacyStepGlob = "**/*.step.yaml"

	// DefaultOutputDir is the generated-artifact root relative to the module
	// directory.
	DefaultOutputDir = "generated"

	// DefaultBasePackage applies when no config file declares one.
	DefaultBasePackage = "pipeline.generated"
)

// Config is the stepc.yaml configuration format.
type Config struct {
	BasePackage string `yaml:"basePackage"`
	Transport   string `yaml:"transport"`
	Platform    string `yaml:"platform"`
	ModuleName  string `yaml:"moduleName"`
	OutputDir   string `yaml:"outputDir"`
	PluginHost  bool   `yaml:"pluginHost"`

	// FunctionStrictUnary restricts FUNCTION-platform steps to one-to-one
	// exchanges. Kept configurable; the permissive default accepts streaming
	// shapes under REST.
	FunctionStrictUnary bool `yaml:"functionStrictUnary"`

	// AutoConvertMappers enables the global mapper fallback for delegated
	// steps whose types differ from the delegate's.
	AutoConvertMappers bool `yaml:"autoConvertMappers"`

	Steps         []StepDecl         `yaml:"steps"`
	Aspects       []AspectDecl       `yaml:"aspects"`
	Orchestrators []OrchestratorDecl `yaml:"orchestrators"`

	// Set by the loader, not from YAML.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// StepDecl declares a single pipeline step.
type StepDecl struct {
	Name              string        `yaml:"name"`
	Cardinality       string        `yaml:"cardinality"`
	Package           string        `yaml:"package"`
	DeclaredType      string        `yaml:"declaredType"`
	Role              string        `yaml:"role"`
	Dedicated         bool          `yaml:"dedicated"`
	SideEffect        bool          `yaml:"sideEffect"`
	CacheKeyGenerator string        `yaml:"cacheKeyGenerator"`
	Input             TypeDecl      `yaml:"input"`
	Output            TypeDecl      `yaml:"output"`
	Delegate          *DelegateDecl `yaml:"delegate,omitempty"`
	MapperFallback    string        `yaml:"mapperFallback"`
}

// TypeDecl names a step's input or output type, its fields, and an optional
// mapper type.
type TypeDecl struct {
	Type   string            `yaml:"type"`
	Fields map[string]string `yaml:"fields,omitempty"`
	Mapper string            `yaml:"mapper,omitempty"`
}

// DelegateDecl declares forwarding to an externally implemented service.
// Contracts is the list of reactive service interfaces the delegate
// implements, supplied as data rather than derived from a live type graph.
type DelegateDecl struct {
	Service   string   `yaml:"service"`
	Package   string   `yaml:"package"`
	Input     string   `yaml:"input"`
	Output    string   `yaml:"output"`
	Mapper    string   `yaml:"mapper"`
	Contracts []string `yaml:"contracts"`
}

// AspectDecl declares a cross-cutting behavior. A GLOBAL aspect may carry a
// synthetic step declaration realized during model extraction.
type AspectDecl struct {
	Name     string            `yaml:"name"`
	Scope    string            `yaml:"scope"`
	Position string            `yaml:"position"`
	Params   map[string]string `yaml:"params,omitempty"`
	Step     *StepDecl         `yaml:"step,omitempty"`
}

// OrchestratorDecl declares a top-level entry point sequencing steps.
type OrchestratorDecl struct {
	Name        string   `yaml:"name"`
	BasePackage string   `yaml:"basePackage"`
	Aspects     []string `yaml:"aspects"`
	Generate    bool     `yaml:"generate"`
}

// MappingDoc is the optional runtime mapping document: module names to
// runtime identifiers, step names to modules.
type MappingDoc struct {
	Runtimes map[string]string `yaml:"runtimes"`
	Steps    map[string]string `yaml:"steps"`

	FilePath string `yaml:"-"`
}
