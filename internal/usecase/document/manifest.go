package document

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type manifest struct {
	Documents []Input `yaml:"documents"`
}

// LoadManifest reads a YAML file listing documents under the "documents" key.
func LoadManifest(path string) ([]Input, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a document manifest.
func ParseManifest(data []byte) ([]Input, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Documents) == 0 {
		return nil, fmt.Errorf("manifest has no documents")
	}
	return m.Documents, nil
}
