package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/scaleproof/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadRegistry reads an approved-sources file. JSON is the canonical format;
// .yaml/.yml files are decoded as YAML. An empty path yields the defaults.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	sources, err := ParseSources(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	registry, err := NewRegistry(sources...)
	if err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", path, err)
	}
	return registry, nil
}

// ParseSources decodes an ApprovedSource list. The document may be a bare list
// or an object with a "sources" key.
func ParseSources(data []byte, ext string) ([]model.ApprovedSource, error) {
	var (
		list    []model.ApprovedSource
		wrapped struct {
			Sources []model.ApprovedSource `json:"sources" yaml:"sources"`
		}
	)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &list); err != nil {
			if werr := yaml.Unmarshal(data, &wrapped); werr != nil {
				return nil, err
			}
			list = wrapped.Sources
		}
	default:
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "{") {
			if err := json.Unmarshal(data, &wrapped); err != nil {
				return nil, err
			}
			list = wrapped.Sources
		} else if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no approved sources defined")
	}
	return list, nil
}
