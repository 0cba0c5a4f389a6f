package postgres

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/gatherly/server/internal/domain/events"
)

// queryTransform rewrites a select query, typically by appending a predicate.
type queryTransform func(sq.SelectBuilder) sq.SelectBuilder

// filterClause pairs a filter field with the predicate it contributes when
// present. Evaluation order is the position in filterClauses, never the
// order callers populated the criteria in.
type filterClause struct {
	name    string
	present func(events.Filters) bool
	apply   func(events.Filters) queryTransform
}

// filterClauses is the full ordered predicate set. The first five entries
// keep their original relative order (location, title, date, rsvp end date,
// free-text search); description equality and the range comparisons follow.
var filterClauses = []filterClause{
	{
		name:    "location",
		present: func(f events.Filters) bool { return f.Location != "" },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Eq{"location": f.Location}) },
	},
	{
		name:    "title",
		present: func(f events.Filters) bool { return f.Title != "" },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Eq{"title": f.Title}) },
	},
	{
		name:    "date",
		present: func(f events.Filters) bool { return f.Date != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Eq{`"date"`: *f.Date}) },
	},
	{
		name:    "rsvp_end_date",
		present: func(f events.Filters) bool { return f.RSVPEndDate != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Eq{"rsvp_end_date": *f.RSVPEndDate}) },
	},
	{
		name:    "query",
		present: func(f events.Filters) bool { return f.Query != "" },
		apply: func(f events.Filters) queryTransform {
			// The search string is a bound parameter; it must never be
			// spliced into the query text.
			return whereClause(sq.Expr("document @@ plainto_tsquery('simple', ?)", f.Query))
		},
	},
	{
		name:    "description",
		present: func(f events.Filters) bool { return f.Description != "" },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Eq{"description": f.Description}) },
	},
	{
		name:    "date_gt",
		present: func(f events.Filters) bool { return f.DateGt != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Gt{`"date"`: *f.DateGt}) },
	},
	{
		name:    "date_gte",
		present: func(f events.Filters) bool { return f.DateGte != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.GtOrEq{`"date"`: *f.DateGte}) },
	},
	{
		name:    "date_lt",
		present: func(f events.Filters) bool { return f.DateLt != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Lt{`"date"`: *f.DateLt}) },
	},
	{
		name:    "date_lte",
		present: func(f events.Filters) bool { return f.DateLte != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.LtOrEq{`"date"`: *f.DateLte}) },
	},
	{
		name:    "rsvp_end_date_gt",
		present: func(f events.Filters) bool { return f.RSVPEndDateGt != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Gt{"rsvp_end_date": *f.RSVPEndDateGt}) },
	},
	{
		name:    "rsvp_end_date_gte",
		present: func(f events.Filters) bool { return f.RSVPEndDateGte != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.GtOrEq{"rsvp_end_date": *f.RSVPEndDateGte}) },
	},
	{
		name:    "rsvp_end_date_lt",
		present: func(f events.Filters) bool { return f.RSVPEndDateLt != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.Lt{"rsvp_end_date": *f.RSVPEndDateLt}) },
	},
	{
		name:    "rsvp_end_date_lte",
		present: func(f events.Filters) bool { return f.RSVPEndDateLte != nil },
		apply:   func(f events.Filters) queryTransform { return whereClause(sq.LtOrEq{"rsvp_end_date": *f.RSVPEndDateLte}) },
	},
}

func whereClause(pred sq.Sqlizer) queryTransform {
	return func(q sq.SelectBuilder) sq.SelectBuilder {
		return q.Where(pred)
	}
}

// composeFilters folds the present clauses into one transform, applied left
// to right. It builds a deferred query rewrite only; execution stays with
// the caller. Empty criteria yield the identity transform.
func composeFilters(f events.Filters) queryTransform {
	transforms := make([]queryTransform, 0, len(filterClauses))
	for _, clause := range filterClauses {
		if clause.present(f) {
			transforms = append(transforms, clause.apply(f))
		}
	}
	return func(q sq.SelectBuilder) sq.SelectBuilder {
		for _, transform := range transforms {
			q = transform(q)
		}
		return q
	}
}
