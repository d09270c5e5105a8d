// Package listquery implements the list-endpoint query conventions shared
// by the user and book admin tables: pagination, case-insensitive field
// filters, a createdAt date range and single-key sorting.
//
// The same grammar is spoken on both sides of the wire. Builder produces
// query strings for API clients, Parse interprets them on the server
// against a per-entity whitelist.
package listquery

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SortOrder mirrors the table surface's column sort state.
type SortOrder string

const (
	SortAscend  SortOrder = "ascend"
	SortDescend SortOrder = "descend"
)

// DateLayout is the input format for date-range bounds.
const DateLayout = "2006-01-02"

// boundLayout formats range bounds with millisecond precision.
const boundLayout = "2006-01-02T15:04:05.000Z07:00"

// Meta is the server-reported pagination state. It is authoritative:
// tables render meta.current, never a locally counted page.
type Meta struct {
	Current  int   `json:"current"`
	PageSize int   `json:"pageSize"`
	Pages    int   `json:"pages"`
	Total    int64 `json:"total"`
}

// Page is the payload shape of every list endpoint.
type Page[T any] struct {
	Meta   Meta `json:"meta"`
	Result []T  `json:"result"`
}

// NewMeta derives pagination state for a result window.
func NewMeta(current, pageSize int, total int64) Meta {
	pages := 0
	if pageSize > 0 {
		pages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return Meta{Current: current, PageSize: pageSize, Pages: pages, Total: total}
}

// Request carries one table-refresh cycle's worth of search state. It is
// built fresh per fetch and discarded once the response is applied.
type Request struct {
	Current  int
	PageSize int
	// Filters holds free-text search values keyed by field name. Only
	// fields the owning Builder recognizes are emitted.
	Filters map[string]string
	// DateRange holds raw [start, end] day strings in DateLayout format.
	DateRange []string
	// Sort holds the requested direction per column.
	Sort map[string]SortOrder
}

// Builder turns Requests into query-string fragments for one entity's
// list endpoint. FilterFields and SortFields are fixed, ordered lists:
// filters are emitted in declaration order, and the first sortable field
// with a requested direction wins.
type Builder struct {
	FilterFields []string
	SortFields   []string
	// DateField names the column the date range applies to.
	DateField string
}

// Build emits the query string for one request. Clause order is fixed:
// pagination, filters, date range, sort. Filter values are wrapped as
// /<value>/i and are deliberately not URL-escaped; values containing
// '&', '/' or '#' will corrupt the query. Callers own that limitation.
func (b Builder) Build(req Request) string {
	var parts []string

	if req.Current > 0 {
		parts = append(parts, fmt.Sprintf("current=%d", req.Current))
	}
	if req.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("pageSize=%d", req.PageSize))
	}

	for _, field := range b.FilterFields {
		if v := req.Filters[field]; v != "" {
			parts = append(parts, fmt.Sprintf("%s=/%s/i", field, v))
		}
	}

	// Malformed ranges degrade to "no date filter", never an error.
	if b.DateField != "" {
		if start, end, ok := validateDateRange(req.DateRange); ok {
			parts = append(parts,
				fmt.Sprintf("%s>=%s", b.DateField, start.Format(boundLayout)),
				fmt.Sprintf("%s<=%s", b.DateField, end.Format(boundLayout)))
		}
	}

	parts = append(parts, b.sortClause(req.Sort))

	return strings.Join(parts, "&")
}

// sortClause picks the first field in SortFields with an explicit
// direction. Only one sort key is ever sent.
func (b Builder) sortClause(sort map[string]SortOrder) string {
	for _, field := range b.SortFields {
		switch sort[field] {
		case SortAscend:
			return "sort=" + field
		case SortDescend:
			return "sort=-" + field
		}
	}
	return "sort=-createdAt"
}

// validateDateRange parses a [start, end] pair of day strings and widens
// them to the full calendar days in local time: start at 00:00:00.000,
// end at 23:59:59.999.
func validateDateRange(dateRange []string) (start, end time.Time, ok bool) {
	if len(dateRange) != 2 {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.ParseInLocation(DateLayout, dateRange[0], time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endDay, err := time.ParseInLocation(DateLayout, dateRange[1], time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	// Built from calendar components, not midnight+24h, so the bound
	// stays on the end day across DST transitions.
	end = time.Date(endDay.Year(), endDay.Month(), endDay.Day(),
		23, 59, 59, int(999*time.Millisecond), time.Local)
	return start, end, true
}

// Allowed whitelists what a list endpoint accepts. Query parts naming
// anything outside the whitelist are ignored, not rejected.
type Allowed struct {
	FilterFields []string
	SortFields   []string
	DateField    string
}

func (a Allowed) sortable(field string) bool {
	for _, f := range a.SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// Filter is one resolved substring match.
type Filter struct {
	Field string
	Term  string
}

// Query is the server-side interpretation of a list request.
type Query struct {
	Current  int
	PageSize int
	Filters  []Filter
	After    *time.Time
	Before   *time.Time
	// OrderField is always a whitelisted column; defaults to createdAt
	// descending when the client sends no usable sort.
	OrderField string
	OrderDesc  bool
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Parse interprets raw query values against a whitelist. Pagination
// defaults to page 1 of 10 and is clamped to sane bounds.
//
// Range clauses arrive as "<field>>=<ts>" and "<field><=<ts>"; after
// url.Values splitting those become keys "<field>>" and "<field><".
func Parse(values url.Values, allowed Allowed) Query {
	q := Query{
		Current:    1,
		PageSize:   defaultPageSize,
		OrderField: "createdAt",
		OrderDesc:  true,
	}

	if n, err := strconv.Atoi(values.Get("current")); err == nil && n >= 1 {
		q.Current = n
	}
	if n, err := strconv.Atoi(values.Get("pageSize")); err == nil && n >= 1 {
		q.PageSize = n
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	if sort := values.Get("sort"); sort != "" {
		field, desc := strings.TrimPrefix(sort, "-"), strings.HasPrefix(sort, "-")
		if allowed.sortable(field) {
			q.OrderField = field
			q.OrderDesc = desc
		}
	}

	// Preserve whitelist order for deterministic WHERE clauses.
	for _, field := range allowed.FilterFields {
		if raw := values.Get(field); raw != "" {
			q.Filters = append(q.Filters, Filter{Field: field, Term: stripRegexSlashes(raw)})
		}
	}

	if allowed.DateField != "" {
		if t, ok := parseBound(values.Get(allowed.DateField + ">")); ok {
			q.After = &t
		}
		if t, ok := parseBound(values.Get(allowed.DateField + "<")); ok {
			q.Before = &t
		}
	}

	return q
}

// stripRegexSlashes unwraps the /<value>/i match directive the admin
// tables emit. Bare values are treated as the same substring search.
func stripRegexSlashes(raw string) string {
	if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/i") && len(raw) > 3 {
		return raw[1 : len(raw)-2]
	}
	return raw
}

func parseBound(raw string) (time.Time, bool) {
	raw = strings.TrimPrefix(raw, "=")
	if raw == "" {
		return time.Time{}, false
	}
	// Clients do not escape the '+' of a positive zone offset, which
	// url.ParseQuery decodes as a space. Undo that before parsing.
	raw = strings.ReplaceAll(raw, " ", "+")
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(DateLayout, raw, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// columnFor maps wire field names to their database columns.
var columnFor = map[string]string{
	"fullName":  "full_name",
	"email":     "email",
	"phone":     "phone",
	"mainText":  "main_text",
	"author":    "author",
	"price":     "price",
	"category":  "category",
	"quantity":  "quantity",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Scope applies the query's filters, date range and ordering to a gorm
// statement. Pagination is left to the repository so it can count first.
func (q Query) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, f := range q.Filters {
			col, ok := columnFor[f.Field]
			if !ok {
				continue
			}
			db = db.Where(fmt.Sprintf("LOWER(%s) LIKE ?", col),
				"%"+strings.ToLower(f.Term)+"%")
		}

		dateCol := columnFor["createdAt"]
		if q.After != nil {
			db = db.Where(dateCol+" >= ?", *q.After)
		}
		if q.Before != nil {
			db = db.Where(dateCol+" <= ?", *q.Before)
		}

		if col, ok := columnFor[q.OrderField]; ok {
			dir := "ASC"
			if q.OrderDesc {
				dir = "DESC"
			}
			db = db.Order(col + " " + dir)
		}
		return db
	}
}

// Offset returns the row offset for the requested page.
func (q Query) Offset() int {
	return (q.Current - 1) * q.PageSize
}
