package models

// User is a back-office or field user referenced by interventions.
type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	CodeGestionnaire string `json:"code_gestionnaire,omitempty"`
	Role             string `json:"role,omitempty"`
}

// Agency is a branch office; interventions are attached to one.
type Agency struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Code  string `json:"code,omitempty"`
}

// Metier is a trade (plumbing, roofing, ...) an intervention calls for.
type Metier struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Code  string `json:"code,omitempty"`
}

// StatusRef is a reference-table status row (intervention or artisan side).
type StatusRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// ReferenceData is everything the resolver snapshots in one fetch.
type ReferenceData struct {
	Users                []*User      `json:"users"`
	Agencies             []*Agency    `json:"agencies"`
	Metiers              []*Metier    `json:"metiers"`
	InterventionStatuses []*StatusRef `json:"intervention_statuses"`
	ArtisanStatuses      []*StatusRef `json:"artisan_statuses"`
}

// TeamMember is the denormalized user row served by the team endpoint.
// A user appears once; when the source carries several roles the first wins.
type TeamMember struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Code     string `json:"code,omitempty"`
	Role     string `json:"role,omitempty"`
}
