package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
)

var nowFunc = time.Now

// ErrNotFound is returned when a scale id is not stored
var ErrNotFound = errors.New("scale not found")

// Unverified reasons recorded on stored scales
const (
	ReasonNoValidation    = "no validation result"
	ReasonNoAuthoritative = "no accessible, content-matched non-Wikipedia source"
)

// Database holds validated scale records in memory.
// GetScale and GetAllScales only ever return verified scales.
type Database struct {
	mu     sync.RWMutex
	scales map[string]*model.StoredScale
	order  []string // insertion order
}

// Stats counts stored scales
type Stats struct {
	Total      int `json:"total"`
	Verified   int `json:"verified"`
	Unverified int `json:"unverified"`
}

// NewDatabase creates an empty scale database
func NewDatabase() *Database {
	return &Database{scales: make(map[string]*model.StoredScale)}
}

// AddScale stores a scale with its validation result, replacing any record with the same id
func (d *Database) AddScale(scale model.ScaleData, result *model.ValidationResult) (*model.StoredScale, error) {
	if scale.ID == "" {
		return nil, errors.New("add scale: id is required")
	}

	stored := &model.StoredScale{ScaleData: scale}
	applyValidation(stored, result)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.scales[scale.ID]; !exists {
		d.order = append(d.order, scale.ID)
	}
	d.scales[scale.ID] = stored
	return copyStored(stored), nil
}

// UpdateScale replaces the validation result of an existing scale and recomputes its verification
func (d *Database) UpdateScale(id string, result *model.ValidationResult) (*model.StoredScale, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, ok := d.scales[id]
	if !ok {
		return nil, fmt.Errorf("update scale %q: %w", id, ErrNotFound)
	}
	applyValidation(stored, result)
	return copyStored(stored), nil
}

// MarkScaleAsUnverified overrides verification, even for a previously verified record
func (d *Database) MarkScaleAsUnverified(id, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, ok := d.scales[id]
	if !ok {
		return fmt.Errorf("mark scale %q unverified: %w", id, ErrNotFound)
	}
	stored.IsVerified = false
	stored.UnverifiedReason = reason
	return nil
}

// RemoveScale deletes a scale; it reports whether the scale existed
func (d *Database) RemoveScale(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.scales[id]; !ok {
		return false
	}
	delete(d.scales, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// GetScale returns a verified scale, or nil when the scale is missing or unverified
func (d *Database) GetScale(id string) *model.StoredScale {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stored, ok := d.scales[id]
	if !ok || !stored.IsVerified {
		return nil
	}
	return copyStored(stored)
}

// GetAllScales returns every verified scale in insertion order
func (d *Database) GetAllScales() []*model.StoredScale {
	return d.collect(func(s *model.StoredScale) bool { return s.IsVerified })
}

// GetUnverified returns every unverified scale in insertion order
func (d *Database) GetUnverified() []*model.StoredScale {
	return d.collect(func(s *model.StoredScale) bool { return !s.IsVerified })
}

// ListAll returns every stored scale, verified or not. Diagnostics only.
func (d *Database) ListAll() []*model.StoredScale {
	return d.collect(func(*model.StoredScale) bool { return true })
}

// Stats counts stored scales by verification
func (d *Database) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var s Stats
	for _, stored := range d.scales {
		s.Total++
		if stored.IsVerified {
			s.Verified++
		} else {
			s.Unverified++
		}
	}
	return s
}

// IDs returns the sorted ids of every stored scale
func (d *Database) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.scales))
	for id := range d.scales {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (d *Database) collect(keep func(*model.StoredScale) bool) []*model.StoredScale {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []*model.StoredScale{}
	for _, id := range d.order {
		if stored := d.scales[id]; keep(stored) {
			out = append(out, copyStored(stored))
		}
	}
	return out
}

// IsAuthoritative reports whether a validation result carries at least one
// accessible, content-matched, non-Wikipedia source and is verified
func IsAuthoritative(result *model.ValidationResult) bool {
	if result == nil || result.Status != model.StatusVerified {
		return false
	}
	for _, src := range result.Sources {
		if src.Succeeded() && !sources.IsWikipediaURL(src.URL) {
			return true
		}
	}
	return false
}

func applyValidation(stored *model.StoredScale, result *model.ValidationResult) {
	stored.ValidationResult = result
	stored.LastValidated = nowFunc().UTC()
	stored.IsVerified = IsAuthoritative(result)
	switch {
	case stored.IsVerified:
		stored.UnverifiedReason = ""
	case result == nil:
		stored.UnverifiedReason = ReasonNoValidation
	case result.Status != model.StatusVerified:
		stored.UnverifiedReason = fmt.Sprintf("validation status %s", result.Status)
	default:
		stored.UnverifiedReason = ReasonNoAuthoritative
	}
}

// copyStored returns a shallow copy so callers cannot flip verification in place
func copyStored(s *model.StoredScale) *model.StoredScale {
	c := *s
	return &c
}
