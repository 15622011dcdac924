package ventures

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads the ventures catalogue from disk.
type Loader struct {
	filePath string
}

// NewLoader creates a catalogue loader for filePath.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the catalogue file.
func (l *Loader) Load() (*CatalogueFile, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ventures file: %w", err)
	}

	var catalogue CatalogueFile
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to parse ventures yaml: %w", err)
	}

	return &catalogue, nil
}
