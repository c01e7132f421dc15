// Package model defines the core domain types for the borough registration system.
package model

import "time"

// Region is one of the five borough buckets a registration counts against.
// The set is fixed at startup; capacity is tracked per region.
type Region string

const (
	Bronx        Region = "Bronx"
	Brooklyn     Region = "Brooklyn"
	Manhattan    Region = "Manhattan"
	Queens       Region = "Queens"
	StatenIsland Region = "Staten Island"
)

// Regions returns the full region set in display order.
func Regions() []Region {
	return []Region{Bronx, Brooklyn, Manhattan, Queens, StatenIsland}
}

// Valid reports whether r is one of the known regions.
func (r Region) Valid() bool {
	switch r {
	case Bronx, Brooklyn, Manhattan, Queens, StatenIsland:
		return true
	}
	return false
}

// Programs lists the District 79 programs a registrant may select.
var Programs = []string{
	"Pathways to Graduation (P2G)",
	"Adult Education",
	"Young Adult Borough Centers (YABC)",
	"Co-Op Tech (School of Cooperative Technical Education)",
	"Living for the Young Family through Education (LYFE)",
	"Alternate Learning Centers (ALC)",
	"ReStart Academy",
	"Passages Academy",
	"East River Academy (ERA)",
	"Judith S. Kaye High School (JSK)",
}

// ValidProgram reports whether p is a known program name.
func ValidProgram(p string) bool {
	for _, known := range Programs {
		if p == known {
			return true
		}
	}
	return false
}

// Status is the registration outcome bucket.
type Status string

const (
	StatusConfirmed   Status = "confirmed"
	StatusWaitingList Status = "waiting_list"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusConfirmed || s == StatusWaitingList
}

// Registration is a single attendee record. Email is unique across all
// registrations, compared case-insensitively.
type Registration struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Title     string    `json:"title"`
	Program   string    `json:"program"`
	Email     string    `json:"email"`
	Region    Region    `json:"region"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegionCount summarises one region's ledger state and roster split.
type RegionCount struct {
	Region           Region `json:"region"`
	ConfirmedCount   int    `json:"confirmed_count"`
	WaitingListCount int    `json:"waiting_list_count"`
	MaxCapacity      int    `json:"max_capacity"`
}

// Remaining returns the number of confirmed seats still available.
func (c RegionCount) Remaining() int {
	return c.MaxCapacity - c.ConfirmedCount
}

// Full returns true when no confirmed seats remain.
func (c RegionCount) Full() bool {
	return c.ConfirmedCount >= c.MaxCapacity
}

// SubmitRequest is the payload for a public registration submission.
type SubmitRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
	Program   string `json:"program"`
	Email     string `json:"email"`
	Region    Region `json:"region"`
}

// SubmitResponse reports the outcome of a submission.
type SubmitResponse struct {
	Status       Status        `json:"status"`
	Registration *Registration `json:"registration"`
}

// UpdateRequest is a partial admin edit. Nil fields are left unchanged.
type UpdateRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Title     *string `json:"title,omitempty"`
	Program   *string `json:"program,omitempty"`
	Email     *string `json:"email,omitempty"`
	Region    *Region `json:"region,omitempty"`
	Status    *Status `json:"status,omitempty"`
}

// Empty reports whether the request changes nothing.
func (u UpdateRequest) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Title == nil &&
		u.Program == nil && u.Email == nil && u.Region == nil && u.Status == nil
}

// RegionRoster splits one region's registrations by status.
type RegionRoster struct {
	Confirmed   []Registration `json:"confirmed"`
	WaitingList []Registration `json:"waiting_list"`
}

// Roster is the full admin view of the event.
type Roster struct {
	Registrations []Registration           `json:"registrations"`
	ByRegion      map[Region]*RegionRoster `json:"by_region"`
	Counts        []RegionCount            `json:"counts"`
}

// SetCapacityRequest is the admin payload for adjusting a region's maximum.
type SetCapacityRequest struct {
	Region      Region `json:"region"`
	MaxCapacity int    `json:"max_capacity"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
