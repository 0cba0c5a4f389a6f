package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ events.Repository = (*EventRepository)(nil)

// eventColumns is the canonical projection for event reads; RETURNING
// clauses reuse it so every write hands back the full persisted record.
var eventColumns = []string{
	"id",
	"title",
	"slug",
	"description",
	"location",
	`"date"`,
	`to_char("time", 'HH24:MI') AS "time"`,
	"rsvp_end_date",
	"created_by",
	"created_at",
	"updated_at",
}

func selectEvents() sq.SelectBuilder {
	return psql.Select(eventColumns...).From("events")
}

func returningEvent() string {
	return "RETURNING " + strings.Join(eventColumns, ", ")
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (event *events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("create_event", start, err) }()

	sqlStr, args, err := psql.Insert("events").
		Columns("title", "slug", "description", "location", `"date"`, `"time"`, "rsvp_end_date", "created_by").
		Values(
			params.Title,
			params.Slug,
			nullIfEmpty(params.Description),
			nullIfEmpty(params.Location),
			params.Date,
			nullIfEmpty(params.Time),
			params.RSVPEndDate,
			nullIfEmpty(params.CreatedBy),
		).
		Suffix(returningEvent()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert event: %w", err)
	}

	event, err = scanEvent(r.queryer().QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Get(ctx context.Context, key events.LookupKey, value string) (event *events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("get_event", start, err) }()

	column := "id"
	if key == events.LookupBySlug {
		column = "slug"
	}

	sqlStr, args, err := selectEvents().Where(sq.Eq{column: value}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get event: %w", err)
	}

	event, err = scanEvent(r.queryer().QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.NotFound("event")
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Filter(ctx context.Context, filters events.Filters) (items []events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("filter_events", start, err) }()

	sqlStr, args, err := composeFilters(filters)(selectEvents()).
		OrderBy(`"date" ASC, created_at ASC`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filter events: %w", err)
	}

	rows, err := r.queryer().Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("filter events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) List(ctx context.Context, offset, limit int) (items []events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("list_events", start, err) }()

	sqlStr, args, err := selectEvents().
		OrderBy("created_at ASC, id ASC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events: %w", err)
	}

	rows, err := r.queryer().Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) Update(ctx context.Context, params events.UpdateParams, id string) (event *events.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("update_event", start, err) }()

	q := psql.Update("events")
	if params.Title != nil {
		q = q.Set("title", *params.Title)
	}
	if params.Slug != nil {
		q = q.Set("slug", *params.Slug)
	}
	if params.Description != nil {
		q = q.Set("description", nullIfEmpty(*params.Description))
	}
	if params.Location != nil {
		q = q.Set("location", nullIfEmpty(*params.Location))
	}
	if params.Date != nil {
		q = q.Set(`"date"`, *params.Date)
	}
	if params.Time != nil {
		q = q.Set(`"time"`, nullIfEmpty(*params.Time))
	}
	if params.RSVPEndDate != nil {
		q = q.Set("rsvp_end_date", *params.RSVPEndDate)
	}
	q = q.Set("updated_at", sq.Expr("now()"))

	sqlStr, args, err := q.Where(sq.Eq{"id": id}).Suffix(returningEvent()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update event: %w", err)
	}

	event, err = scanEvent(r.queryer().QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.NotFound("event")
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Delete is a silent no-op when no row matches.
func (r *EventRepository) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("delete_event", start, err) }()

	sqlStr, args, err := psql.Delete("events").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete event: %w", err)
	}

	if _, err = r.queryer().Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (r *EventRepository) Attendees(ctx context.Context, eventID string) (attendees []events.Attendee, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("get_attendees", start, err) }()

	sqlStr, args, err := psql.Select(
		"r.id", "r.event_id", "r.account_id", "a.username", "a.email", "r.created_at",
	).
		From("rsvps r").
		Join("accounts a ON r.account_id = a.id").
		Where(sq.Eq{"r.event_id": eventID}).
		OrderBy("r.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get attendees: %w", err)
	}

	rows, err := r.queryer().Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("get attendees: %w", err)
	}
	defer rows.Close()

	attendees = make([]events.Attendee, 0)
	for rows.Next() {
		var (
			attendee    events.Attendee
			respondedAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&attendee.RSVPID,
			&attendee.EventID,
			&attendee.AccountID,
			&attendee.Username,
			&attendee.Email,
			&respondedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		if respondedAt.Valid {
			attendee.RespondedAt = respondedAt.Time
		}
		attendees = append(attendees, attendee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendees: %w", err)
	}
	return attendees, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*events.Event, error) {
	var (
		event       events.Event
		description *string
		location    *string
		date        pgtype.Date
		clock       *string
		rsvpEndDate pgtype.Date
		createdBy   *string
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Slug,
		&description,
		&location,
		&date,
		&clock,
		&rsvpEndDate,
		&createdBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	event.Description = derefString(description)
	event.Location = derefString(location)
	event.Time = derefString(clock)
	event.CreatedBy = derefString(createdBy)
	if date.Valid {
		event.Date = date.Time
	}
	if rsvpEndDate.Valid {
		event.RSVPEndDate = rsvpEndDate.Time
	}
	if createdAt.Valid {
		event.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		event.UpdatedAt = updatedAt.Time
	}
	return &event, nil
}

func scanEvents(rows pgx.Rows) ([]events.Event, error) {
	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
