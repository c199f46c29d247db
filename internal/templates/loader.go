package templates

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTemplates []byte

// Loader handles loading and parsing of a templates file
type Loader struct {
	filePath string
}

// NewLoader creates a loader for filePath. An empty path loads the
// built-in templates.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Source describes where templates are read from, for logs.
func (l *Loader) Source() string {
	if l.filePath == "" {
		return "built-in"
	}
	return l.filePath
}

// Load reads and parses the templates file
func (l *Loader) Load() (TemplatesConfig, error) {
	data := defaultTemplates
	if l.filePath != "" {
		var err error
		data, err = os.ReadFile(l.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read templates file: %w", err)
		}
	}

	var config TemplatesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse templates yaml: %w", err)
	}

	return config, nil
}
