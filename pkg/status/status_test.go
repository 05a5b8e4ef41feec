package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReasonForCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want ReasonType
	}{
		{"archive", "ARCHIVE", ReasonArchive},
		{"archive lowercase", "archive", ReasonArchive},
		{"done termine", "TERMINE", ReasonDone},
		{"done legacy alias", "INTER_TERMINEE", ReasonDone},
		{"active status", "EN_COURS", ReasonNone},
		{"unknown", "SOMETHING_ELSE", ReasonNone},
		{"empty", "", ReasonNone},
		{"whitespace only", "   ", ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReasonForCode(tt.code))
		})
	}
}

func TestReasonForTransition(t *testing.T) {
	assert.Equal(t, ReasonDone, ReasonForTransition("EN_COURS", "TERMINE"))
	assert.Equal(t, ReasonArchive, ReasonForTransition("TERMINE", "ARCHIVE"))
	assert.Equal(t, ReasonNone, ReasonForTransition("DEMANDE", "EN_COURS"))
	assert.Equal(t, ReasonNone, ReasonForTransition("EN_COURS", ""))
}

func TestReasonForTransitionSameCodeNeverClassifies(t *testing.T) {
	codes := []string{
		"ARCHIVE", "TERMINE", "INTER_TERMINEE", "EN_COURS", "DEMANDE", "",
	}

	for _, code := range codes {
		assert.Equal(t, ReasonNone, ReasonForTransition(code, code), "code %q", code)
	}

	// Same code modulo case and whitespace is still not a transition.
	assert.Equal(t, ReasonNone, ReasonForTransition("termine ", "TERMINE"))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "EN_COURS", NormalizeCode("INTER_EN_COURS"))
	assert.Equal(t, "EN_COURS", NormalizeCode(" inter_en_cours "))
	assert.Equal(t, "TERMINE", NormalizeCode("TERMINE"))
	assert.Equal(t, "CUSTOM", NormalizeCode("custom"))
}

func TestIsCheckStatusAt(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		code string
		due  string
		want bool
	}{
		{"check status due today", "VISITE_TECHNIQUE", "2025-03-14", true},
		{"check status past due", "EN_COURS", "2025-03-01", true},
		{"legacy alias past due", "INTER_EN_COURS", "2025-03-01", true},
		{"check status due tomorrow", "VISITE_TECHNIQUE", "2025-03-15", false},
		{"rfc3339 timestamp same day", "EN_COURS", "2025-03-14T23:59:00Z", true},
		{"non-check status past due", "TERMINE", "2020-01-01", false},
		{"non-check status today", "DEMANDE", "2025-03-14", false},
		{"no due date", "EN_COURS", "", false},
		{"whitespace due date", "EN_COURS", "   ", false},
		{"unparseable due date", "EN_COURS", "not-a-date", false},
		{"empty code", "", "2020-01-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCheckStatusAt(tt.code, tt.due, now))
		})
	}
}

func TestCanonicalCode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already canonical", "EN_COURS", "EN_COURS"},
		{"accented label", "Terminé", "TERMINE"},
		{"label with space", "Devis envoyé", "DEVIS_ENVOYE"},
		{"legacy done alias", "INTER TERMINEE", "TERMINE"},
		{"cloture alias", "Clôturée", "TERMINE"},
		{"acompte alias", "Attente acompte", "ATT_ACOMPTE"},
		{"en cours alias", "Inter en cours", "EN_COURS"},
		{"unknown defaults", "whatever this is", "DEMANDE"},
		{"empty defaults", "", "DEMANDE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalCode(tt.raw))
		})
	}
}
