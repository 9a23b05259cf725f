package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/scaleproof/internal/model"
)

// readScales loads candidate scales from a JSON file holding either an array
// of scales or an object with a "scales" array
func readScales(path string) ([]model.ScaleData, error) {
	if path == "" {
		return nil, errors.New("input file is required (--input)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return parseScales(data)
}

func parseScales(data []byte) ([]model.ScaleData, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("input is empty")
	}

	var scales []model.ScaleData
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &scales); err != nil {
			return nil, fmt.Errorf("parse input JSON: %w", err)
		}
	} else {
		var wrapped struct {
			Scales *[]model.ScaleData `json:"scales"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("parse input JSON: %w", err)
		}
		if wrapped.Scales == nil {
			return nil, errors.New(`input object has no "scales" array`)
		}
		scales = *wrapped.Scales
	}

	seen := make(map[string]bool, len(scales))
	for i, s := range scales {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("scale %d: id and name are required", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("scale %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
	}
	return scales, nil
}
