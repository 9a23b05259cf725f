package citation

import "strings"

// scaleFamilyKeywords are names and name fragments of well-documented scale families
var scaleFamilyKeywords = []string{
	"major", "minor", "ionian", "dorian", "phrygian", "lydian", "mixolydian", "aeolian", "locrian",
	"pentatonic", "blues", "chromatic", "whole tone", "diminished", "augmented", "bebop",
	"harmonic", "melodic", "altered", "enigmatic", "neapolitan", "hungarian", "gypsy",
	"maqam", "makam", "hijaz", "bayati", "rast", "saba", "nahawand", "kurd", "sikah",
	"raga", "raag", "thaat", "bhairav", "kafi", "yaman", "todi", "kalyani", "shankarabharanam",
	"hirajoshi", "kumoi", "iwato", "in sen", "yo", "pelog", "slendro", "dastgah",
}

// knownTraditions are cultural contexts with established scale literature
var knownTraditions = []string{
	"western", "jazz", "classical", "arabic", "turkish", "persian", "middle eastern",
	"indian", "carnatic", "hindustani", "japanese", "chinese", "indonesian", "javanese",
	"balinese", "african", "flamenco", "spanish", "greek", "hebrew", "klezmer",
}

// VerifyScaleExistsOnline is a cheap pre-filter: it reports whether the name
// mentions a known scale family, or whether a named scale comes from a tradition
// with an established literature. It is not authoritative verification.
func VerifyScaleExistsOnline(name, culturalContext string) bool {
	normalized := " " + Normalize(name) + " "
	if strings.TrimSpace(normalized) == "" {
		return false
	}

	for _, kw := range scaleFamilyKeywords {
		if strings.Contains(normalized, " "+kw+" ") {
			return true
		}
	}

	context := Normalize(culturalContext)
	for _, tradition := range knownTraditions {
		if context == tradition {
			return true
		}
	}
	return false
}
