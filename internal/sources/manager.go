package sources

import (
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/worker"
)

// CulturalBoost is added to a source's priority when it specializes in the requested context
const CulturalBoost = 2

// Options configure accessibility probing
type Options struct {
	Client        *http.Client
	Timeout       time.Duration // Per HEAD request
	RetryAttempts int
	RetryDelay    time.Duration // Base delay, multiplied by the attempt number
	UserAgent     string
	ProbeWorkers  int
	Limiter       *worker.Limiter // Optional per-host politeness
	Log           io.Writer
}

// Manager owns the approved-source registry: prioritization, filtering and reachability
type Manager struct {
	registry *Registry
	opts     Options
}

// NewManager creates a source manager over a registry
func NewManager(registry *Registry, opts Options) *Manager {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = model.DefaultUserAgent
	}
	if opts.ProbeWorkers <= 0 {
		opts.ProbeWorkers = 8
	}
	if opts.Log == nil {
		opts.Log = os.Stderr
	}
	return &Manager{registry: registry, opts: opts}
}

// Registry returns the underlying registry
func (m *Manager) Registry() *Registry {
	return m.registry
}

// IsSourceApproved reports whether the URL's host is a registered source (case-insensitive)
func (m *Manager) IsSourceApproved(rawURL string) bool {
	host, err := Hostname(rawURL)
	if err != nil {
		return false
	}
	_, ok := m.registry.Lookup(host)
	return ok
}

// EffectivePriority is a source's priority after cultural boosting
func EffectivePriority(src model.ApprovedSource, culturalContext string) int {
	if src.MatchesCulture(culturalContext) {
		return src.Priority + CulturalBoost
	}
	return src.Priority
}

// GetSourcesByPriority filters sources by scale type and orders them by descending
// effective priority. Ties keep registry insertion order.
func (m *Manager) GetSourcesByPriority(scaleType, culturalContext string) []model.ApprovedSource {
	matching := m.matching(scaleType)
	sort.SliceStable(matching, func(i, j int) bool {
		return EffectivePriority(matching[i], culturalContext) > EffectivePriority(matching[j], culturalContext)
	})
	return matching
}

// GetSourcesByRegionalPriority puts culturally matched sources first, each group
// ordered by raw priority
func (m *Manager) GetSourcesByRegionalPriority(scaleType, culturalContext string) []model.ApprovedSource {
	var cultural, generic []model.ApprovedSource
	for _, src := range m.matching(scaleType) {
		if src.MatchesCulture(culturalContext) {
			cultural = append(cultural, src)
		} else {
			generic = append(generic, src)
		}
	}
	byPriority := func(list []model.ApprovedSource) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority > list[j].Priority })
	}
	byPriority(cultural)
	byPriority(generic)
	return append(cultural, generic...)
}

// GetBackupSources returns every source except the one serving primaryURL, by priority
func (m *Manager) GetBackupSources(primaryURL string) []model.ApprovedSource {
	primaryHost, _ := Hostname(primaryURL)

	var backups []model.ApprovedSource
	for _, src := range m.registry.Sources() {
		if primaryHost != "" && MatchesDomain(primaryHost, src.Hostname) {
			continue
		}
		backups = append(backups, src)
	}
	sort.SliceStable(backups, func(i, j int) bool { return backups[i].Priority > backups[j].Priority })
	return backups
}

// matching returns registry sources that cover the scale type, in insertion order
func (m *Manager) matching(scaleType string) []model.ApprovedSource {
	scaleType = strings.TrimSpace(scaleType)
	var out []model.ApprovedSource
	for _, src := range m.registry.Sources() {
		if src.SupportsScaleType(scaleType) {
			out = append(out, src)
		}
	}
	return out
}
