// Package references resolves reference-table ids (users, agencies, metiers,
// statuses) against an immutable point-in-time snapshot, refreshed through a
// TTL cache.
package references

import (
	"strings"
	"time"

	"github.com/maubry/ouvra/pkg/models"
)

// Snapshot is a point-in-time index over the reference tables. It is built
// wholesale and never mutated; lookups on a stale pointer stay consistent.
type Snapshot struct {
	FetchedAt time.Time

	UsersByID                map[string]*models.User
	AgenciesByID             map[string]*models.Agency
	MetiersByID              map[string]*models.Metier
	InterventionStatusesByID map[string]*models.StatusRef
	ArtisanStatusesByID      map[string]*models.StatusRef

	Agencies NameIndex
	Metiers  NameIndex

	data *models.ReferenceData
}

// BuildSnapshot indexes a reference data set.
func BuildSnapshot(data *models.ReferenceData) *Snapshot {
	s := &Snapshot{
		FetchedAt:                time.Now().UTC(),
		UsersByID:                make(map[string]*models.User),
		AgenciesByID:             make(map[string]*models.Agency),
		MetiersByID:              make(map[string]*models.Metier),
		InterventionStatusesByID: make(map[string]*models.StatusRef),
		ArtisanStatusesByID:      make(map[string]*models.StatusRef),
		Agencies:                 newNameIndex(),
		Metiers:                  newNameIndex(),
		data:                     data,
	}

	if data == nil {
		return s
	}

	for _, u := range data.Users {
		s.UsersByID[u.ID] = u
	}

	for _, a := range data.Agencies {
		s.AgenciesByID[a.ID] = a
		s.Agencies.add(a.Label, a.Code, a.ID)
	}

	for _, m := range data.Metiers {
		s.MetiersByID[m.ID] = m
		s.Metiers.add(m.Label, m.Code, m.ID)
	}

	for _, st := range data.InterventionStatuses {
		s.InterventionStatusesByID[st.ID] = st
	}

	for _, st := range data.ArtisanStatuses {
		s.ArtisanStatusesByID[st.ID] = st
	}

	return s
}

// Data returns the raw reference data backing the snapshot.
func (s *Snapshot) Data() *models.ReferenceData {
	return s.data
}

// StatusByCode finds an intervention status row by code, case-insensitively.
func (s *Snapshot) StatusByCode(code string) *models.StatusRef {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, st := range s.InterventionStatusesByID {
		if strings.ToUpper(st.Code) == code {
			return st
		}
	}

	return nil
}

// UserDisplay resolves a user id to its display name and short code. The
// display falls back from code_gestionnaire to username to the full name.
// Both return values come from the same resolution; a miss yields two nils.
func (s *Snapshot) UserDisplay(userID string) (display, code *string) {
	u, ok := s.UsersByID[userID]
	if !ok {
		return nil, nil
	}

	name := strings.TrimSpace(u.CodeGestionnaire)
	if name == "" {
		name = strings.TrimSpace(u.Username)
	}

	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}

	if name == "" {
		return nil, nil
	}

	return &name, &name
}
