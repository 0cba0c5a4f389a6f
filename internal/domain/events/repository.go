package events

import (
	"context"
	"time"
)

// Event is a scheduled gathering people can RSVP to. ID is generated by
// storage on insert and never changes afterwards.
type Event struct {
	ID          string
	Title       string
	Slug        string
	Description string
	Location    string
	Date        time.Time
	Time        string
	RSVPEndDate time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attendee is the read-only projection of an RSVP joined to its account,
// derived at query time. It has no lifecycle of its own.
type Attendee struct {
	RSVPID      string
	EventID     string
	AccountID   string
	Username    string
	Email       string
	RespondedAt time.Time
}

// LookupKey selects which unique column a single-event lookup filters by.
type LookupKey string

const (
	LookupByID   LookupKey = "id"
	LookupBySlug LookupKey = "slug"
)

// Filters expresses optional predicates over events. Absent (zero or nil)
// fields impose no constraint; present fields are ANDed together.
type Filters struct {
	Title       string
	Description string
	Location    string
	Query       string

	Date    *time.Time
	DateGt  *time.Time
	DateGte *time.Time
	DateLt  *time.Time
	DateLte *time.Time

	RSVPEndDate    *time.Time
	RSVPEndDateGt  *time.Time
	RSVPEndDateGte *time.Time
	RSVPEndDateLt  *time.Time
	RSVPEndDateLte *time.Time
}

type CreateParams struct {
	Title       string
	Slug        string
	Description string
	Location    string
	Date        time.Time
	Time        string
	RSVPEndDate time.Time
	CreatedBy   string
}

// UpdateParams carries a partial field set; nil fields are left unchanged.
type UpdateParams struct {
	Title       *string
	Slug        *string
	Description *string
	Location    *string
	Date        *time.Time
	Time        *string
	RSVPEndDate *time.Time
}

// IsZero reports whether no field is set.
func (p UpdateParams) IsZero() bool {
	return p.Title == nil && p.Slug == nil && p.Description == nil &&
		p.Location == nil && p.Date == nil && p.Time == nil && p.RSVPEndDate == nil
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Get(ctx context.Context, key LookupKey, value string) (*Event, error)
	Filter(ctx context.Context, filters Filters) ([]Event, error)
	List(ctx context.Context, offset, limit int) ([]Event, error)
	Update(ctx context.Context, params UpdateParams, id string) (*Event, error)
	Delete(ctx context.Context, id string) error
	Attendees(ctx context.Context, eventID string) ([]Attendee, error)
}
