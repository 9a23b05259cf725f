package model

import (
	"net/url"
	"strings"
)

// WildcardScaleType matches any scale type in ApprovedSource.ScaleTypes
const WildcardScaleType = "*"

// ApprovedSource is a registry entry for a domain allowed to serve as citation evidence
type ApprovedSource struct {
	Hostname        string   `json:"hostname" yaml:"hostname"`
	Priority        int      `json:"priority" yaml:"priority"`
	ScaleTypes      []string `json:"scaleTypes" yaml:"scaleTypes"`
	Reliability     float64  `json:"reliability" yaml:"reliability"`                             // 0..1
	AccessPattern   string   `json:"accessPattern,omitempty" yaml:"accessPattern,omitempty"`     // URL template: {slug}, {name}, {query}
	CulturalContext []string `json:"culturalContext,omitempty" yaml:"culturalContext,omitempty"` // Regions/traditions this source specializes in
	SourceType      string   `json:"sourceType,omitempty" yaml:"sourceType,omitempty"`           // reference, academic, educational, cultural
}

// SupportsScaleType reports whether the source covers the given scale type.
// An empty scale type matches every source.
func (s ApprovedSource) SupportsScaleType(scaleType string) bool {
	if scaleType == "" {
		return true
	}
	for _, t := range s.ScaleTypes {
		if t == WildcardScaleType || strings.EqualFold(t, scaleType) {
			return true
		}
	}
	return false
}

// MatchesCulture reports whether the source lists the cultural context
func (s ApprovedSource) MatchesCulture(culturalContext string) bool {
	if culturalContext == "" {
		return false
	}
	for _, c := range s.CulturalContext {
		if strings.EqualFold(c, culturalContext) {
			return true
		}
	}
	return false
}

// BaseURL returns the scheme and host the source is served from
func (s ApprovedSource) BaseURL() string {
	if idx := strings.Index(s.AccessPattern, "://"); idx > 0 {
		rest := s.AccessPattern[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			rest = rest[:slash]
		}
		return s.AccessPattern[:idx+3] + rest
	}
	return "https://" + s.Hostname
}

// URLFor expands the access pattern into the candidate citation URL for a scale
func (s ApprovedSource) URLFor(scale ScaleData) string {
	if s.AccessPattern == "" {
		return s.BaseURL() + "/"
	}
	replacer := strings.NewReplacer(
		"{slug}", Slugify(scale.Name),
		"{name}", url.PathEscape(scale.Name),
		"{query}", url.QueryEscape(scale.Name+" scale"),
		"{id}", url.PathEscape(scale.ID),
	)
	return replacer.Replace(s.AccessPattern)
}

// Slugify lowercases a name and joins its words with hyphens
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
