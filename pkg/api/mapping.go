package api

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadMapping reads a runtime mapping YAML file, unmarshals it, and
// validates.
func LoadMapping(filename string) (*MappingDoc, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}

	var doc MappingDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	doc.FilePath = absPath

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validating mapping file: %w", err)
	}

	return &doc, nil
}

// Validate checks the mapping document for internal consistency: every step
// must map to a module that has a runtime identifier.
func (d *MappingDoc) Validate() error {
	if len(d.Runtimes) == 0 && len(d.Steps) == 0 {
		return fmt.Errorf("mapping is empty")
	}

	for module, runtime := range d.Runtimes {
		if module == "" {
			return fmt.Errorf("runtimes: empty module name")
		}
		if runtime == "" {
			return fmt.Errorf("runtimes: module %q has no runtime identifier", module)
		}
	}

	for step, module := range d.Steps {
		if step == "" {
			return fmt.Errorf("steps: empty step name")
		}
		if module == "" {
			return fmt.Errorf("steps: step %q maps to an empty module", step)
		}
		if _, ok := d.Runtimes[module]; !ok {
			return fmt.Errorf("steps: step %q maps to module %q which has no runtime entry", step, module)
		}
	}

	return nil
}
