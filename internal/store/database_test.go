package store

import (
	"errors"
	"testing"

	"github.com/ppiankov/scaleproof/internal/model"
)

func verifiedResult(url string) *model.ValidationResult {
	return &model.ValidationResult{
		ScaleID:       "c-major",
		Status:        model.StatusVerified,
		PrimarySource: url,
		Sources: []model.CitationResult{
			{URL: url, Accessible: true, ContentMatch: true, HTTPStatus: 200, DualValidated: true},
		},
		HallucinationRisk: model.RiskLow,
	}
}

var cMajor = model.ScaleData{ID: "c-major", Name: "C Major", Notes: []string{"C", "D", "E", "F", "G", "A", "B"}}

func TestAddScaleAuthoritativeGate(t *testing.T) {
	tests := []struct {
		name       string
		result     *model.ValidationResult
		wantStored bool
		wantReason string
	}{
		{"verified with approved source", verifiedResult("https://teoria.com/c-major"), true, ""},
		{"no validation", nil, false, ReasonNoValidation},
		{"failed", func() *model.ValidationResult {
			r := verifiedResult("https://teoria.com/c-major")
			r.Status = model.StatusFailed
			return r
		}(), false, "validation status failed"},
		{"verified only by wikipedia", verifiedResult("https://en.wikipedia.org/wiki/C_major"), false, ReasonNoAuthoritative},
		{"verified without content match", func() *model.ValidationResult {
			r := verifiedResult("https://teoria.com/c-major")
			r.Sources[0].ContentMatch = false
			return r
		}(), false, ReasonNoAuthoritative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := NewDatabase()
			stored, err := db.AddScale(cMajor, tt.result)
			if err != nil {
				t.Fatalf("AddScale: %v", err)
			}
			if stored.IsVerified != tt.wantStored {
				t.Errorf("IsVerified = %v, want %v", stored.IsVerified, tt.wantStored)
			}
			if stored.UnverifiedReason != tt.wantReason {
				t.Errorf("reason = %q, want %q", stored.UnverifiedReason, tt.wantReason)
			}
			if got := db.GetScale("c-major") != nil; got != tt.wantStored {
				t.Errorf("GetScale returned record = %v, want %v", got, tt.wantStored)
			}
			if got := len(db.GetAllScales()); got != map[bool]int{true: 1, false: 0}[tt.wantStored] {
				t.Errorf("GetAllScales = %d", got)
			}
			if len(db.ListAll()) != 1 {
				t.Error("ListAll must include every record")
			}
		})
	}
}

func TestAddScaleRequiresID(t *testing.T) {
	db := NewDatabase()
	if _, err := db.AddScale(model.ScaleData{Name: "nameless"}, nil); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestUpdateAndMarkUnverified(t *testing.T) {
	db := NewDatabase()
	if _, err := db.AddScale(cMajor, nil); err != nil {
		t.Fatal(err)
	}
	if db.GetScale("c-major") != nil {
		t.Fatal("unverified scale must not be retrievable")
	}

	if _, err := db.UpdateScale("c-major", verifiedResult("https://teoria.com/c-major")); err != nil {
		t.Fatalf("UpdateScale: %v", err)
	}
	if db.GetScale("c-major") == nil {
		t.Fatal("verified scale should be retrievable after update")
	}

	if err := db.MarkScaleAsUnverified("c-major", "manual review"); err != nil {
		t.Fatalf("MarkScaleAsUnverified: %v", err)
	}
	if db.GetScale("c-major") != nil {
		t.Error("override must hide a previously verified scale")
	}
	unverified := db.GetUnverified()
	if len(unverified) != 1 || unverified[0].UnverifiedReason != "manual review" {
		t.Errorf("unverified = %+v", unverified)
	}

	if _, err := db.UpdateScale("missing", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateScale missing: err = %v, want ErrNotFound", err)
	}
	if err := db.MarkScaleAsUnverified("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkScaleAsUnverified missing: err = %v, want ErrNotFound", err)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	db := NewDatabase()
	if _, err := db.AddScale(cMajor, verifiedResult("https://teoria.com/c-major")); err != nil {
		t.Fatal(err)
	}
	got := db.GetScale("c-major")
	got.IsVerified = false
	if db.GetScale("c-major") == nil {
		t.Error("mutating a returned record changed the database")
	}
}

func TestRemoveScaleAndStats(t *testing.T) {
	db := NewDatabase()
	db.AddScale(cMajor, verifiedResult("https://teoria.com/c-major"))
	db.AddScale(model.ScaleData{ID: "d-dorian", Name: "D Dorian"}, nil)
	db.AddScale(model.ScaleData{ID: "a-minor", Name: "A Minor"}, verifiedResult("https://musictheory.net/a-minor"))

	stats := db.Stats()
	if stats.Total != 3 || stats.Verified != 2 || stats.Unverified != 1 {
		t.Errorf("stats = %+v", stats)
	}

	all := db.GetAllScales()
	if len(all) != 2 || all[0].ID != "c-major" || all[1].ID != "a-minor" {
		t.Errorf("GetAllScales order = %v", all)
	}

	if !db.RemoveScale("c-major") {
		t.Error("RemoveScale existing = false")
	}
	if db.RemoveScale("c-major") {
		t.Error("RemoveScale twice = true")
	}
	if ids := db.IDs(); len(ids) != 2 || ids[0] != "a-minor" || ids[1] != "d-dorian" {
		t.Errorf("IDs = %v", ids)
	}
}
