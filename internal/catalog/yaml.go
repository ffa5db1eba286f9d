package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a catalog file. Sections missing from the file keep the
// built-in defaults.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a catalog document over the defaults.
func ParseYAML(data []byte) (*Catalog, error) {
	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	cat := Default()
	if len(override.Phases) > 0 {
		cat.Phases = override.Phases
	}
	if len(override.FallbackSteps) > 0 {
		cat.FallbackSteps = override.FallbackSteps
	}
	if len(override.Materials) > 0 {
		cat.Materials = override.Materials
	}
	if len(override.Expenses) > 0 {
		cat.Expenses = override.Expenses
	}
	for i, p := range cat.Phases {
		if p.Name == "" {
			return nil, fmt.Errorf("catalog phase %d has no name", i)
		}
	}
	return cat, nil
}
