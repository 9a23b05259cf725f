package sources

import (
	"strings"

	"github.com/ppiankov/scaleproof/internal/model"
)

// scaleTypeKeywords maps name/context keywords to a coarse scale type, checked in order
var scaleTypeKeywords = []struct {
	scaleType string
	keywords  []string
}{
	{"maqam", []string{"maqam", "makam", "dastgah", "hijaz", "bayati", "rast", "saba", "nahawand", "kurd"}},
	{"raga", []string{"raga", "raag", "ragam", "thaat", "melakarta"}},
	{"blues", []string{"blues"}},
	{"pentatonic", []string{"pentatonic", "pelog", "slendro", "hirajoshi", "in sen", "yo scale", "kumoi"}},
	{"modal", []string{"dorian", "phrygian", "lydian", "mixolydian", "aeolian", "locrian", "ionian", "mode"}},
	{"minor", []string{"minor"}},
	{"major", []string{"major"}},
}

// cultureTypes maps a cultural context to the scale type its records usually are
var cultureTypes = map[string]string{
	"arabic":         "maqam",
	"turkish":        "maqam",
	"persian":        "maqam",
	"middle eastern": "maqam",
	"indian":         "raga",
	"carnatic":       "raga",
	"hindustani":     "raga",
}

// InferScaleType derives a coarse scale type from a scale's name, context and size
func InferScaleType(scale model.ScaleData) string {
	name := strings.ToLower(scale.Name)
	for _, entry := range scaleTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.scaleType
			}
		}
	}

	if t, ok := cultureTypes[strings.ToLower(scale.CulturalContext)]; ok {
		return t
	}

	size := len(scale.Notes)
	if size == 0 {
		size = len(scale.Intervals)
	}
	if size == 5 {
		return "pentatonic"
	}
	return "other"
}
