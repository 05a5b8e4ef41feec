// Package status classifies intervention status codes: transition reasons,
// overdue checks and normalization of raw status strings coming from the
// source database. All functions are pure except for the wall clock read in
// IsCheckStatus.
package status

import (
	"log/slog"
	"strings"
	"time"
)

// ReasonType tags why an intervention left the active pipeline.
type ReasonType string

const (
	ReasonNone    ReasonType = ""
	ReasonArchive ReasonType = "archive"
	ReasonDone    ReasonType = "done"
)

// Canonical status codes.
const (
	CodeDemande         = "DEMANDE"
	CodeDevisEnvoye     = "DEVIS_ENVOYE"
	CodeVisiteTechnique = "VISITE_TECHNIQUE"
	CodeAccepte         = "ACCEPTE"
	CodeEnCours         = "EN_COURS"
	CodeTermine         = "TERMINE"
	CodeRefuse          = "REFUSE"
	CodeAnnule          = "ANNULE"
	CodeStandBy         = "STAND_BY"
	CodeSAV             = "SAV"
	CodeAttAcompte      = "ATT_ACOMPTE"
)

var archiveCodes = map[string]struct{}{
	"ARCHIVE": {},
}

var doneCodes = map[string]struct{}{
	CodeTermine:      {},
	"INTER_TERMINEE": {},
}

// checkCodes are the statuses for which a past-due planned date flags the
// intervention for follow-up.
var checkCodes = map[string]struct{}{
	CodeVisiteTechnique: {},
	CodeEnCours:         {},
	"INTER_EN_COURS":    {},
}

// ReasonForCode classifies a single status code. Unknown and empty codes
// carry no reason.
func ReasonForCode(code string) ReasonType {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return ReasonNone
	}

	if _, ok := archiveCodes[c]; ok {
		return ReasonArchive
	}

	if _, ok := doneCodes[c]; ok {
		return ReasonDone
	}

	return ReasonNone
}

// ReasonForTransition classifies a status change. Staying on the same status
// (after trimming and case folding) is not a transition and yields no reason.
func ReasonForTransition(prev, next string) ReasonType {
	p := strings.ToUpper(strings.TrimSpace(prev))
	n := strings.ToUpper(strings.TrimSpace(next))

	if n == "" || p == n {
		return ReasonNone
	}

	return ReasonForCode(n)
}

// NormalizeCode folds legacy aliases of active statuses onto their canonical
// code. Unknown codes pass through unchanged.
func NormalizeCode(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "INTER_EN_COURS" {
		return CodeEnCours
	}

	return c
}

// IsCheckStatus reports whether an intervention in the given status with the
// given planned date (ISO date or RFC 3339) is due for follow-up today.
func IsCheckStatus(code, due string) bool {
	return isCheckStatusAt(code, due, time.Now())
}

func isCheckStatusAt(code, due string, now time.Time) bool {
	c := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := checkCodes[c]; !ok {
		return false
	}

	due = strings.TrimSpace(due)
	if due == "" {
		return false
	}

	d, err := parseDate(due)
	if err != nil {
		slog.Warn("unparseable planned date, skipping check flag", "date", due, "error", err)

		return false
	}

	// Date-only comparison: due today or earlier flags the intervention.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dueDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	return !dueDay.After(today)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, value)
}
