package store

import (
	"fmt"
	"strings"
)

// Comparison is how a filter value is matched against its column.
type Comparison int

const (
	// Equals matches the column exactly.
	Equals Comparison = iota
	// Substring matches when the value occurs anywhere in the column,
	// case-sensitively.
	Substring
)

// clause renders a single parameterized predicate for column.
func (c Comparison) clause(column string) string {
	switch c {
	case Substring:
		// LIKE folds ASCII case in SQLite; instr does not.
		return fmt.Sprintf("instr(%s, ?) > 0", column)
	default:
		return column + " = ?"
	}
}

// ItemFilter narrows an item listing. Empty fields are not applied.
type ItemFilter struct {
	Type       string
	CategoryID string
	Location   string
	Status     string
}

type filterField struct {
	column string
	cmp    Comparison
	value  func(ItemFilter) string
}

// itemFilterFields maps each filter field to its column and comparison.
var itemFilterFields = []filterField{
	{"i.type", Equals, func(f ItemFilter) string { return f.Type }},
	{"i.category_id", Equals, func(f ItemFilter) string { return f.CategoryID }},
	{"i.location", Substring, func(f ItemFilter) string { return f.Location }},
	{"i.status", Equals, func(f ItemFilter) string { return f.Status }},
}

// where builds the WHERE clause and its arguments from the present fields.
// It returns an empty clause when no field is set.
func (f ItemFilter) where() (string, []any) {
	var conditions []string
	var args []any

	for _, field := range itemFilterFields {
		v := field.value(f)
		if v == "" {
			continue
		}
		conditions = append(conditions, field.cmp.clause(field.column))
		args = append(args, v)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// DefaultLimit is the page size used when none is requested.
const DefaultLimit = 50

// Page selects a window of an ordered result. Values are passed to SQLite
// as given: a zero Limit yields no rows and a negative one means no limit.
type Page struct {
	Limit  int
	Offset int
}

// DefaultPage is the first page of DefaultLimit rows.
func DefaultPage() Page {
	return Page{Limit: DefaultLimit}
}
