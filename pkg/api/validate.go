package api

import (
	"fmt"
	"strings"
)

// Validate checks document-level structure. Step declarations are checked
// separately via CheckSteps so individual malformed steps can be dropped
// without failing the whole document.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BasePackage) == "" {
		return fmt.Errorf("basePackage is required")
	}

	names := make(map[string]int)
	for i, a := range c.Aspects {
		if a.Name == "" {
			return fmt.Errorf("aspect %d: name is required", i)
		}
		if prev, exists := names[a.Name]; exists {
			return fmt.Errorf("aspect %d: duplicate aspect name %q (first defined at aspect %d)", i, a.Name, prev)
		}
		names[a.Name] = i
	}

	for i, o := range c.Orchestrators {
		if o.Name == "" {
			return fmt.Errorf("orchestrator %d: name is required", i)
		}
	}

	return nil
}

// StepError pairs a malformed step declaration with its failure.
type StepError struct {
	Index int
	Name  string
	Err   error
}

func (e StepError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("step %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("step %q: %v", e.Name, e.Err)
}

// CheckSteps returns the well-formed step declarations and one StepError per
// malformed declaration. Duplicate names keep the first declaration and drop
// the rest.
func (c *Config) CheckSteps() ([]StepDecl, []StepError) {
	var good []StepDecl
	var bad []StepError
	seen := make(map[string]bool)

	for i, s := range c.Steps {
		if err := s.Check(); err != nil {
			bad = append(bad, StepError{Index: i, Name: s.Name, Err: err})
			continue
		}
		if seen[s.Name] {
			bad = append(bad, StepError{Index: i, Name: s.Name, Err: fmt.Errorf("duplicate step name")})
			continue
		}
		seen[s.Name] = true
		good = append(good, s)
	}

	return good, bad
}

// Check validates a single step declaration.
func (s *StepDecl) Check() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(s.Cardinality) == "" {
		return fmt.Errorf("cardinality is required")
	}
	if s.Input.Type == "" {
		return fmt.Errorf("input.type is required")
	}
	if s.Output.Type == "" {
		return fmt.Errorf("output.type is required")
	}
	if s.Delegate != nil {
		if s.Delegate.Service == "" {
			return fmt.Errorf("delegate.service is required")
		}
		if len(s.Delegate.Contracts) == 0 {
			return fmt.Errorf("delegate.contracts is required")
		}
	}
	return nil
}
