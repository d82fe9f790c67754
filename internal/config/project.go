package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project represents the optional sxpc.yaml configuration found next to
// the source file being compiled.
type Project struct {
	// Output overrides the assembly output path. Relative paths are
	// resolved against the directory containing sxpc.yaml.
	Output string `yaml:"output,omitempty"`

	// Cache enables the compilation cache under .sxpc/.
	Cache bool `yaml:"cache,omitempty"`

	// Verbose turns on the driver's progress output on stderr.
	Verbose bool `yaml:"verbose,omitempty"`
}

// LoadProject reads sxpc.yaml from dir. A missing file is not an error:
// the zero Project is returned.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectConfigName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ProjectConfigName, err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ProjectConfigName, err)
	}

	if p.Output != "" && !filepath.IsAbs(p.Output) {
		p.Output = filepath.Join(dir, p.Output)
	}

	return &p, nil
}

// OutputPath returns the configured output path, falling back to the
// default when sxpc.yaml doesn't set one.
func (p *Project) OutputPath() string {
	if p.Output != "" {
		return p.Output
	}
	return DefaultOutputFile
}
