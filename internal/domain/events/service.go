package events

import (
	"context"

	"github.com/google/uuid"
)

const defaultPageLimit = 50

// Service exposes the event resource operations. Every call issues a single
// query through the repository and returns once it resolves; callers layer
// their own deadlines onto ctx.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Event, error) {
	return s.repo.Create(ctx, params)
}

// Get fetches the single event matching the lookup key/value pair. A value
// that cannot possibly match (malformed UUID for an id lookup) is reported as
// NotFound rather than surfaced as a driver cast error.
func (s *Service) Get(ctx context.Context, key LookupKey, value string) (*Event, error) {
	switch key {
	case LookupByID:
		if _, err := uuid.Parse(value); err != nil {
			return nil, NotFound("event")
		}
	case LookupBySlug:
	default:
		return nil, &LookupError{Key: string(key), Message: "must be id or slug"}
	}
	return s.repo.Get(ctx, key, value)
}

// Filter returns every event matching the criteria. An empty result is not
// an error, unlike GetAll.
func (s *Service) Filter(ctx context.Context, filters Filters) ([]Event, error) {
	return s.repo.Filter(ctx, filters)
}

// GetAll returns a page of events in storage-default order. An empty page,
// including an offset past the total row count, is NotFound. This asymmetry
// with Filter is deliberate API behavior.
func (s *Service) GetAll(ctx context.Context, offset, limit int) ([]Event, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	page, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		return nil, NotFound("events")
	}
	return page, nil
}

// Update applies the non-nil fields of params to the event and returns the
// updated record. Updating a missing event is NotFound. An empty params set
// is a no-op that returns the current record.
func (s *Service) Update(ctx context.Context, params UpdateParams, id string) (*Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NotFound("event")
	}
	if params.IsZero() {
		return s.repo.Get(ctx, LookupByID, id)
	}
	return s.repo.Update(ctx, params, id)
}

// Delete removes the event. Deleting a missing (or malformed) id is a silent
// no-op; callers that need existence checks should Get first.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

// Attendees returns the RSVPs for an event joined to their accounts. An
// empty list is a valid result.
func (s *Service) Attendees(ctx context.Context, eventID string) ([]Attendee, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return []Attendee{}, nil
	}
	return s.repo.Attendees(ctx, eventID)
}
