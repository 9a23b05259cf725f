package sources

import (
	"fmt"
	"strings"

	"github.com/ppiankov/scaleproof/internal/model"
)

// Registry is the ordered set of approved sources. Hostnames are unique.
type Registry struct {
	sources []model.ApprovedSource
	index   map[string]int
}

// NewRegistry creates a registry from sources in insertion order
func NewRegistry(sources ...model.ApprovedSource) (*Registry, error) {
	r := &Registry{
		sources: make([]model.ApprovedSource, 0, len(sources)),
		index:   make(map[string]int, len(sources)),
	}
	for _, src := range sources {
		if err := r.Add(src); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry holding the built-in approved sources
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSources()...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in sources: %v", err))
	}
	return r
}

// Add appends a source, rejecting duplicates and out-of-range values
func (r *Registry) Add(src model.ApprovedSource) error {
	host := strings.ToLower(strings.TrimSpace(src.Hostname))
	if host == "" {
		return fmt.Errorf("approved source missing hostname")
	}
	if src.Reliability < 0 || src.Reliability > 1 {
		return fmt.Errorf("approved source %s: reliability %.2f outside [0,1]", host, src.Reliability)
	}
	if len(src.ScaleTypes) == 0 {
		return fmt.Errorf("approved source %s: no scale types", host)
	}
	if _, exists := r.index[host]; exists {
		return fmt.Errorf("duplicate approved source: %s", host)
	}

	src.Hostname = host
	// Copy slices so callers cannot mutate registry entries
	src.ScaleTypes = append([]string(nil), src.ScaleTypes...)
	src.CulturalContext = append([]string(nil), src.CulturalContext...)

	r.index[host] = len(r.sources)
	r.sources = append(r.sources, src)
	return nil
}

// Sources returns a copy of all sources in insertion order
func (r *Registry) Sources() []model.ApprovedSource {
	out := make([]model.ApprovedSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len returns the number of registered sources
func (r *Registry) Len() int {
	return len(r.sources)
}

// Lookup finds the source serving a hostname, including its subdomains
func (r *Registry) Lookup(host string) (model.ApprovedSource, bool) {
	host = strings.ToLower(host)
	if i, ok := r.index[host]; ok {
		return r.sources[i], true
	}
	for _, src := range r.sources {
		if MatchesDomain(host, src.Hostname) {
			return src, true
		}
	}
	return model.ApprovedSource{}, false
}
