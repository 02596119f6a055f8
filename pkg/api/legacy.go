package api

import (
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ScanLegacySteps walks the module tree for annotation-style *.step.yaml
// declaration files. Each file holds one step declaration. This is the
// fallback source used only when the config file declares no steps.
//
// Malformed files are returned as per-file errors alongside the declarations
// that did parse; only an unreadable tree is a hard error.
func ScanLegacySteps(root string) ([]StepDecl, []error, error) {
	return scanLegacyFS(os.DirFS(root))
}

func scanLegacyFS(fsys fs.FS) ([]StepDecl, []error, error) {
	matches, err := doublestar.Glob(fsys, LegacyStepGlob)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %q: %w", LegacyStepGlob, err)
	}
	slices.Sort(matches)

	var decls []StepDecl
	var bad []error
	for _, path := range matches {
		decl, err := readLegacyDecl(fsys, path)
		if err != nil {
			bad = append(bad, fmt.Errorf("%s: %w", path, err))
			continue
		}
		decls = append(decls, decl)
	}
	return decls, bad, nil
}

func readLegacyDecl(fsys fs.FS, path string) (StepDecl, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return StepDecl{}, fmt.Errorf("reading declaration: %w", err)
	}

	var decl StepDecl
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return StepDecl{}, fmt.Errorf("parsing declaration: %w", err)
	}

	if err := decl.Check(); err != nil {
		return StepDecl{}, err
	}
	return decl, nil
}
