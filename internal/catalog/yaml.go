package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed modules.yaml
var builtinCatalog []byte

type catalogFile struct {
	Modules []Module `yaml:"modules"`
}

// Parse decodes a YAML catalog document and validates every module.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: payload is empty")
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(file.Modules) == 0 {
		return nil, fmt.Errorf("catalog: no modules defined")
	}
	return New(file.Modules)
}

// Load reads a catalog from a YAML file on disk.
func Load(path string) (*Catalog, error) {
	trimmed := strings.TrimSpace(path)
	info, err := os.Stat(trimmed)
	if err != nil {
		return nil, fmt.Errorf("catalog: stat %s: %w", trimmed, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog: %s is a directory", trimmed)
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", trimmed, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", trimmed, err)
	}
	return c, nil
}

// Builtin returns the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return Parse(builtinCatalog)
}

// Open loads the override at path when set, otherwise the built-in catalog.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin()
	}
	return Load(path)
}
