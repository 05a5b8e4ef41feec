package references

import "strings"

// NameIndex maps human-entered names onto reference ids. Labels take
// precedence over codes; matching is trimmed and case-insensitive.
type NameIndex struct {
	byLabel map[string]string
	byCode  map[string]string
}

func newNameIndex() NameIndex {
	return NameIndex{
		byLabel: make(map[string]string),
		byCode:  make(map[string]string),
	}
}

func (n NameIndex) add(label, code, id string) {
	if l := normalizeName(label); l != "" {
		n.byLabel[l] = id
	}

	if c := normalizeName(code); c != "" {
		n.byCode[c] = id
	}
}

// NameToID resolves one name. Empty and unknown names resolve to ("", false).
func (n NameIndex) NameToID(name string) (string, bool) {
	key := normalizeName(name)
	if key == "" {
		return "", false
	}

	if id, ok := n.byLabel[key]; ok {
		return id, true
	}

	if id, ok := n.byCode[key]; ok {
		return id, true
	}

	return "", false
}

// NamesToIDs resolves a batch, silently dropping anything unmatched. It
// returns nil when nothing matches.
func (n NameIndex) NamesToIDs(names []string) []string {
	var ids []string

	for _, name := range names {
		if id, ok := n.NameToID(name); ok {
			ids = append(ids, id)
		}
	}

	return ids
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
