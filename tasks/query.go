package tasks

import (
	"strings"
	"time"
)

// Pagination defaults and bounds.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// DefaultSortField is used when the requested sort field is absent or not on
// the allow-list.
const DefaultSortField = "dueDate"

// sortFields is the allow-list of sortable fields, in wire naming.
var sortFields = map[string]struct{}{
	"id":        {},
	"title":     {},
	"status":    {},
	"dueDate":   {},
	"createdAt": {},
	"updatedAt": {},
}

// ListQuery is the full incoming list query. Its canonical JSON rendering is
// the list cache key, so every field carries an omitempty tag: absent fields
// must not perturb the key. Extra holds unrecognized query parameters
// verbatim so they participate in the key as well.
type ListQuery struct {
	Status    string            `json:"status,omitempty"`
	Sort      string            `json:"sort,omitempty"`
	SortField string            `json:"sortField,omitempty"`
	Search    string            `json:"search,omitempty"`
	Title     string            `json:"title,omitempty"`
	DueDate   string            `json:"dueDate,omitempty"`
	Page      *int              `json:"page,omitempty"`
	Limit     *int              `json:"limit,omitempty"`
	Skip      *int              `json:"skip,omitempty"`
	Take      *int              `json:"take,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Pagination is the resolved window for a list query.
type Pagination struct {
	Page  int
	Limit int
	Skip  int
	Take  int
}

// Pagination resolves the window: page defaults to 1, limit to DefaultLimit
// (capped at MaxLimit), skip to (page-1)*limit and take to limit. Explicit
// Skip/Take always win over the page/limit-derived values, so cursor-style
// callers coexist with page-style callers.
func (q ListQuery) Pagination() Pagination {
	page := 1
	if q.Page != nil && *q.Page > 0 {
		page = *q.Page
	}

	limit := DefaultLimit
	if q.Limit != nil && *q.Limit > 0 {
		limit = *q.Limit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	skip := (page - 1) * limit
	if q.Skip != nil && *q.Skip >= 0 {
		skip = *q.Skip
	}

	take := limit
	if q.Take != nil && *q.Take > 0 {
		take = *q.Take
	}

	return Pagination{Page: page, Limit: limit, Skip: skip, Take: take}
}

// Order is the resolved sort for a list query.
type Order struct {
	Field string
	Desc  bool
}

// Order validates the sort field against the allow-list, defaulting to
// dueDate, and resolves direction: ascending unless explicitly "desc".
func (q ListQuery) Order() Order {
	field := q.SortField
	if _, ok := sortFields[field]; !ok {
		field = DefaultSortField
	}
	return Order{Field: field, Desc: q.Sort == "desc"}
}

// Filter is the predicate handed to the store. DueFrom/DueTo form a
// half-open interval [DueFrom, DueTo). Search and Title are mutually
// exclusive; Search wins when both are present.
type Filter struct {
	Status  Status
	DueFrom *time.Time
	DueTo   *time.Time
	Search  string
	Title   string
}

// Filter builds the store predicate from the query. The "all" status
// sentinel and blank values mean "no filter"; unparseable due-date input is
// silently dropped rather than rejected.
func (q ListQuery) Filter() Filter {
	var f Filter

	if status := strings.TrimSpace(q.Status); status != "" && status != "all" {
		f.Status = Status(status)
	}

	f.DueFrom, f.DueTo = ParseDueDateFilter(q.DueDate)

	if search := strings.TrimSpace(q.Search); search != "" {
		f.Search = search
	} else if title := strings.TrimSpace(q.Title); title != "" {
		f.Title = title
	}

	return f
}

// ParseDueDateFilter parses a day-granularity due-date filter: either a
// single day (yyyy-mm-dd, matching [day, day+1)) or a range "from..to" where
// either side may be omitted. Unparseable input yields no filter at all;
// this permissive behaviour is deliberate and matches the query contract.
func ParseDueDateFilter(input string) (*time.Time, *time.Time) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	if strings.Contains(input, "..") {
		fromRaw, toRaw, _ := strings.Cut(input, "..")

		var gte, lt *time.Time
		if from, err := ParseDate(fromRaw); err == nil {
			g := startOfDay(from)
			gte = &g
		}
		if to, err := ParseDate(toRaw); err == nil {
			l := startOfDay(to).AddDate(0, 0, 1)
			lt = &l
		}
		return gte, lt
	}

	day, err := ParseDate(input)
	if err != nil {
		return nil, nil
	}
	gte := startOfDay(day)
	lt := gte.AddDate(0, 0, 1)
	return &gte, &lt
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
