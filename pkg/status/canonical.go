package status

import "strings"

// canonicalAliases maps normalized raw database labels onto canonical codes.
// The raw side of the mapping is the output of normalizeRaw.
var canonicalAliases = map[string]string{
	"INTER_TERMINEE":  CodeTermine,
	"CLOTURE":         CodeTermine,
	"CLOTUREE":        CodeTermine,
	"INTER_EN_COURS":  CodeEnCours,
	"ATTENTE_ACOMPTE": CodeAttAcompte,
}

var canonicalCodes = map[string]struct{}{
	CodeDemande:         {},
	CodeDevisEnvoye:     {},
	CodeVisiteTechnique: {},
	CodeAccepte:         {},
	CodeEnCours:         {},
	CodeTermine:         {},
	CodeRefuse:          {},
	CodeAnnule:          {},
	CodeStandBy:         {},
	CodeSAV:             {},
	CodeAttAcompte:      {},
}

var accentFold = strings.NewReplacer(
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"À", "A", "Â", "A", "Ä", "A",
	"Î", "I", "Ï", "I",
	"Ô", "O", "Ö", "O",
	"Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C",
)

// CanonicalCode maps a raw status string from the source database onto a
// canonical code. Accents and punctuation are folded, legacy aliases are
// resolved, and anything unrecognized lands on DEMANDE.
func CanonicalCode(raw string) string {
	n := normalizeRaw(raw)
	if n == "" {
		return CodeDemande
	}

	if code, ok := canonicalAliases[n]; ok {
		return code
	}

	if _, ok := canonicalCodes[n]; ok {
		return n
	}

	return CodeDemande
}

func normalizeRaw(raw string) string {
	s := accentFold.Replace(strings.ToUpper(strings.TrimSpace(raw)))

	var b strings.Builder

	lastUnderscore := true // swallow leading separators

	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			b.WriteRune(r)

			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')

				lastUnderscore = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}
