package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/storage"
	"github.com/gatherly/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, pool *pgxpool.Pool) *events.Service {
	t.Helper()
	repo, err := postgres.NewRepository(pool)
	require.NoError(t, err)
	return events.NewService(repo.Events())
}

func createEvent(t *testing.T, ctx context.Context, svc *events.Service, params events.CreateParams) *events.Event {
	t.Helper()
	created, err := svc.Create(ctx, params)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	return created
}

func picnicParams(t *testing.T) events.CreateParams {
	return events.CreateParams{
		Title:       "Company Picnic",
		Slug:        "company-picnic",
		Description: "Annual picnic with games and barbecue",
		Location:    "Central Park",
		Date:        mustDate(t, "2026-09-01"),
		Time:        "12:30",
		RSVPEndDate: mustDate(t, "2026-08-25"),
	}
}

func TestEventRepository_CreateAndGet(t *testing.T) {
	lc := setupLifecycle(t)
	ctx := context.Background()

	lc.Run(t, "create then get by id returns the persisted record", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		owner := insertAccount(t, ctx, pool, "ada", "ada@example.com")

		params := picnicParams(t)
		params.CreatedBy = owner
		created := createEvent(t, ctx, svc, params)

		got, err := svc.Get(ctx, events.LookupByID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
		assert.Equal(t, "Company Picnic", got.Title)
		assert.Equal(t, "12:30", got.Time)
		assert.Equal(t, owner, got.CreatedBy)
		assert.True(t, got.Date.Equal(mustDate(t, "2026-09-01")))
		assert.True(t, got.RSVPEndDate.Equal(mustDate(t, "2026-08-25")))
		assert.False(t, got.CreatedAt.IsZero())
	})

	lc.Run(t, "get by slug", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		created := createEvent(t, ctx, svc, picnicParams(t))

		got, err := svc.Get(ctx, events.LookupBySlug, "company-picnic")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	lc.Run(t, "get missing event is not found", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)

		_, err := svc.Get(ctx, events.LookupByID, "2f9f04c1-07bb-43a6-a3b7-1b5dcf5f11ee")
		require.ErrorIs(t, err, events.ErrNotFound)

		var notFound *events.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, 404, notFound.Status)
	})
}

func TestEventRepository_Filter(t *testing.T) {
	lc := setupLifecycle(t)
	ctx := context.Background()

	seed := func(t *testing.T, svc *events.Service) (ny, la *events.Event) {
		paramsNY := events.CreateParams{
			Title:       "Gallery Opening",
			Slug:        "gallery-opening",
			Description: "Modern art exhibition",
			Location:    "NY",
			Date:        mustDate(t, "2026-09-01"),
			RSVPEndDate: mustDate(t, "2026-08-25"),
		}
		paramsLA := events.CreateParams{
			Title:       "Beach Cleanup",
			Slug:        "beach-cleanup",
			Description: "Community volunteering morning",
			Location:    "LA",
			Date:        mustDate(t, "2026-10-15"),
			RSVPEndDate: mustDate(t, "2026-10-10"),
		}
		return createEvent(t, ctx, svc, paramsNY), createEvent(t, ctx, svc, paramsLA)
	}

	lc.Run(t, "location equality returns exactly the matching rows", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		ny, _ := seed(t, svc)

		got, err := svc.Filter(ctx, events.Filters{Location: "NY"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ny.ID, got[0].ID)
	})

	lc.Run(t, "title equality", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		_, la := seed(t, svc)

		got, err := svc.Filter(ctx, events.Filters{Title: "Beach Cleanup"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, la.ID, got[0].ID)
	})

	lc.Run(t, "date equality", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		ny, _ := seed(t, svc)

		date := mustDate(t, "2026-09-01")
		got, err := svc.Filter(ctx, events.Filters{Date: &date})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ny.ID, got[0].ID)
	})

	lc.Run(t, "rsvp end date equality", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		_, la := seed(t, svc)

		end := mustDate(t, "2026-10-10")
		got, err := svc.Filter(ctx, events.Filters{RSVPEndDate: &end})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, la.ID, got[0].ID)
	})

	lc.Run(t, "empty criteria return the full event set", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		seed(t, svc)

		got, err := svc.Filter(ctx, events.Filters{})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	lc.Run(t, "no match is an empty result, not an error", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		seed(t, svc)

		got, err := svc.Filter(ctx, events.Filters{Location: "Berlin"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	lc.Run(t, "free text search matches the indexed document", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		_, la := seed(t, svc)

		got, err := svc.Filter(ctx, events.Filters{Query: "volunteering"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, la.ID, got[0].ID)
	})

	lc.Run(t, "hostile search string is handled as data", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		seed(t, svc)

		got, err := svc.Filter(ctx, events.Filters{Query: "'); DROP TABLE events; --"})
		require.NoError(t, err)
		assert.Empty(t, got)

		// Table must still be intact.
		all, err := svc.Filter(ctx, events.Filters{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	lc.Run(t, "date range comparison", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		_, la := seed(t, svc)

		cutoff := mustDate(t, "2026-09-30")
		got, err := svc.Filter(ctx, events.Filters{DateGt: &cutoff})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, la.ID, got[0].ID)

		both, err := svc.Filter(ctx, events.Filters{DateGte: ptrDate(mustDate(t, "2026-09-01"))})
		require.NoError(t, err)
		assert.Len(t, both, 2)
	})
}

func TestEventRepository_GetAll(t *testing.T) {
	lc := setupLifecycle(t)
	ctx := context.Background()

	lc.Run(t, "pages in insertion order and honors offset and limit", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		slugs := []string{"first", "second", "third"}
		for i, slug := range slugs {
			created := createEvent(t, ctx, svc, events.CreateParams{
				Title:       "Event " + slug,
				Slug:        slug,
				Date:        mustDate(t, "2026-09-01").AddDate(0, 0, i),
				RSVPEndDate: mustDate(t, "2026-08-25"),
			})
			setEventCreatedAt(t, ctx, pool, created.ID, mustDate(t, "2026-01-01").Add(time.Duration(i)*time.Hour))
		}

		page, err := svc.GetAll(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "second", page[0].Slug)
		assert.Equal(t, "third", page[1].Slug)
	})

	lc.Run(t, "offset past the total row count is not found", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		createEvent(t, ctx, svc, picnicParams(t))

		_, err := svc.GetAll(ctx, 5, 10)
		require.ErrorIs(t, err, events.ErrNotFound)
	})

	lc.Run(t, "empty table is not found", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)

		_, err := svc.GetAll(ctx, 0, 10)
		require.ErrorIs(t, err, events.ErrNotFound)
	})
}

func TestEventRepository_Update(t *testing.T) {
	lc := setupLifecycle(t)
	ctx := context.Background()

	lc.Run(t, "partial update changes only the mentioned fields", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		created := createEvent(t, ctx, svc, picnicParams(t))

		title := "Company Picnic (rescheduled)"
		date := mustDate(t, "2026-09-08")
		updated, err := svc.Update(ctx, events.UpdateParams{Title: &title, Date: &date}, created.ID)
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		assert.True(t, updated.Date.Equal(date))

		got, err := svc.Get(ctx, events.LookupByID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.True(t, got.Date.Equal(date))
		// Unmentioned fields retain their prior values.
		assert.Equal(t, created.Slug, got.Slug)
		assert.Equal(t, created.Description, got.Description)
		assert.Equal(t, created.Location, got.Location)
		assert.Equal(t, created.Time, got.Time)
		assert.True(t, got.RSVPEndDate.Equal(created.RSVPEndDate))
	})

	lc.Run(t, "updating a missing event is not found", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		title := "ghost"

		_, err := svc.Update(ctx, events.UpdateParams{Title: &title}, "2f9f04c1-07bb-43a6-a3b7-1b5dcf5f11ee")
		require.ErrorIs(t, err, events.ErrNotFound)
	})
}

func TestEventRepository_Delete(t *testing.T) {
	lc := setupLifecycle(t)
	ctx := context.Background()

	lc.Run(t, "delete then get is not found", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		created := createEvent(t, ctx, svc, picnicParams(t))

		require.NoError(t, svc.Delete(ctx, created.ID))

		_, err := svc.Get(ctx, events.LookupByID, created.ID)
		require.ErrorIs(t, err, events.ErrNotFound)
	})

	lc.Run(t, "deleting a missing event is a silent no-op", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)

		require.NoError(t, svc.Delete(ctx, "2f9f04c1-07bb-43a6-a3b7-1b5dcf5f11ee"))
	})
}

func TestEventRepository_Attendees(t *testing.T) {
	lc := setupLifecycle(t)
	ctx := context.Background()

	lc.Run(t, "two rsvps from distinct accounts yield two joined rows", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		created := createEvent(t, ctx, svc, picnicParams(t))

		ada := insertAccount(t, ctx, pool, "ada", "ada@example.com")
		grace := insertAccount(t, ctx, pool, "grace", "grace@example.com")
		insertRSVP(t, ctx, pool, created.ID, ada)
		insertRSVP(t, ctx, pool, created.ID, grace)

		got, err := svc.Attendees(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)

		byUsername := map[string]events.Attendee{}
		for _, attendee := range got {
			byUsername[attendee.Username] = attendee
			assert.Equal(t, created.ID, attendee.EventID)
			assert.NotEmpty(t, attendee.RSVPID)
			assert.False(t, attendee.RespondedAt.IsZero())
		}
		assert.Equal(t, "ada@example.com", byUsername["ada"].Email)
		assert.Equal(t, grace, byUsername["grace"].AccountID)
	})

	lc.Run(t, "event without rsvps yields an empty list", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		created := createEvent(t, ctx, svc, picnicParams(t))

		got, err := svc.Attendees(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	lc.Run(t, "rsvps for other events are excluded", func(t *testing.T, pool *pgxpool.Pool) {
		svc := newService(t, pool)
		first := createEvent(t, ctx, svc, picnicParams(t))
		second := createEvent(t, ctx, svc, events.CreateParams{
			Title:       "Board Games Night",
			Slug:        "board-games-night",
			Date:        mustDate(t, "2026-09-12"),
			RSVPEndDate: mustDate(t, "2026-09-10"),
		})

		ada := insertAccount(t, ctx, pool, "ada", "ada@example.com")
		insertRSVP(t, ctx, pool, first.ID, ada)

		got, err := svc.Attendees(ctx, second.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRepository_WithTx(t *testing.T) {
	lc := setupLifecycle(t)
	ctx := context.Background()

	lc.Run(t, "rolled back transaction leaves no rows behind", func(t *testing.T, pool *pgxpool.Pool) {
		repo, err := postgres.NewRepository(pool)
		require.NoError(t, err)

		sentinel := assert.AnError
		err = repo.WithTx(ctx, func(ctx context.Context, txRepo storage.Repository) error {
			_, createErr := txRepo.Events().Create(ctx, picnicParams(t))
			require.NoError(t, createErr)
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		svc := newService(t, pool)
		got, err := svc.Filter(ctx, events.Filters{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func ptrDate(value time.Time) *time.Time { return &value }
