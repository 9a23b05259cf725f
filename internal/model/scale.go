package model

import "time"

// ScaleData is a candidate scale record harvested upstream. It is never mutated here.
type ScaleData struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	CulturalContext string   `json:"culturalContext,omitempty"`
	Notes           []string `json:"notes"`
	Intervals       []int    `json:"intervals"`
	Description     string   `json:"description,omitempty"`
}

// StoredScale is a scale record held by the scale database together with its validation
type StoredScale struct {
	ScaleData
	ValidationResult *ValidationResult `json:"validationResult,omitempty"`
	IsVerified       bool              `json:"isVerified"`
	UnverifiedReason string            `json:"unverifiedReason,omitempty"`
	LastValidated    time.Time         `json:"lastValidated"`
}
