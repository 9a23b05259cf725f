package sources

import "github.com/ppiankov/scaleproof/internal/model"

// DefaultSources returns the built-in approved sources used when no registry file is given
func DefaultSources() []model.ApprovedSource {
	return []model.ApprovedSource{
		{
			Hostname:      "teoria.com",
			Priority:      10,
			ScaleTypes:    []string{model.WildcardScaleType},
			Reliability:   0.95,
			AccessPattern: "https://www.teoria.com/en/reference/s/{slug}.php",
			SourceType:    "reference",
		},
		{
			Hostname:      "musictheory.net",
			Priority:      9,
			ScaleTypes:    []string{"major", "minor", "modal", "pentatonic", "blues"},
			Reliability:   0.9,
			AccessPattern: "https://www.musictheory.net/lessons/{slug}",
			SourceType:    "educational",
		},
		{
			Hostname:      "britannica.com",
			Priority:      8,
			ScaleTypes:    []string{model.WildcardScaleType},
			Reliability:   0.9,
			AccessPattern: "https://www.britannica.com/art/{slug}",
			SourceType:    "encyclopedia",
		},
		{
			Hostname:      "oxfordmusiconline.com",
			Priority:      8,
			ScaleTypes:    []string{model.WildcardScaleType},
			Reliability:   0.95,
			AccessPattern: "https://www.oxfordmusiconline.com/search?q={query}",
			SourceType:    "academic",
		},
		{
			Hostname:        "maqamworld.com",
			Priority:        7,
			ScaleTypes:      []string{"maqam", "modal"},
			Reliability:     0.85,
			AccessPattern:   "https://www.maqamworld.com/en/maqam/{slug}.php",
			CulturalContext: []string{"arabic", "turkish", "persian", "middle eastern"},
			SourceType:      "cultural",
		},
		{
			Hostname:        "carnatica.net",
			Priority:        7,
			ScaleTypes:      []string{"raga"},
			Reliability:     0.8,
			AccessPattern:   "https://www.carnatica.net/raga/{slug}.htm",
			CulturalContext: []string{"indian", "carnatic", "hindustani"},
			SourceType:      "cultural",
		},
		{
			Hostname:        "ethnomusicology.org",
			Priority:        6,
			ScaleTypes:      []string{model.WildcardScaleType},
			Reliability:     0.8,
			AccessPattern:   "https://www.ethnomusicology.org/search/?q={query}",
			CulturalContext: []string{"african", "indonesian", "japanese", "chinese", "indian", "arabic", "traditional"},
			SourceType:      "academic",
		},
		{
			Hostname:        "jazz-guitar-licks.com",
			Priority:        5,
			ScaleTypes:      []string{"blues", "modal", "pentatonic", "jazz"},
			Reliability:     0.7,
			AccessPattern:   "https://www.jazz-guitar-licks.com/pages/guitar-scales/{slug}.html",
			CulturalContext: []string{"jazz", "blues", "american"},
			SourceType:      "educational",
		},
		{
			Hostname:      "pianoscales.org",
			Priority:      5,
			ScaleTypes:    []string{"major", "minor", "pentatonic", "blues", "modal"},
			Reliability:   0.75,
			AccessPattern: "https://www.pianoscales.org/{slug}.html",
			SourceType:    "educational",
		},
	}
}
