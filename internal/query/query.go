package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pharmadash/internal/model"
)

// FilterAll is the sentinel filter value that disables a filter.
const FilterAll = "all"

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort names a sort key and its direction. An empty Field keeps collection order.
type Sort struct {
	Field     string
	Direction Direction
}

// Page holds limit/offset pagination parameters. Limit 0 returns everything.
type Page struct {
	Limit  int
	Offset int
}

// Query is the full description of a derived table view.
type Query struct {
	Search  string
	Filters map[string]string
	Sort    Sort
	Page    Page
	// Locale drives string collation. The zero tag collates as undetermined (root) order.
	Locale language.Tag
}

// Result is a page of the derived view plus the size of the unpaged view.
type Result struct {
	Items []model.Record `json:"data"`
	Total int            `json:"total"`
}

// Apply derives a view from records: search, then filters, then sort, then page.
// records is never modified; the returned items are a new slice.
func Apply(records []model.Record, q Query, schema *model.Schema) Result {
	matched := make([]model.Record, 0, len(records))
	folder := cases.Fold()
	term := folder.String(strings.TrimSpace(q.Search))
	searchFields := schema.SearchFields()

	for i := range records {
		r := &records[i]
		if !matchesSearch(r, term, searchFields, folder) {
			continue
		}
		if !matchesFilters(r, q.Filters) {
			continue
		}
		matched = append(matched, *r)
	}

	if q.Sort.Field != "" {
		SortRecords(matched, q.Sort, schema, q.Locale)
	}

	total := len(matched)
	return Result{Items: paginate(matched, q.Page), Total: total}
}

// Search keeps records whose searchable fields contain term, case-insensitively.
func Search(records []model.Record, term string, schema *model.Schema) []model.Record {
	return Apply(records, Query{Search: term}, schema).Items
}

// Filter keeps records matching every filter.
func Filter(records []model.Record, filters map[string]string, schema *model.Schema) []model.Record {
	return Apply(records, Query{Filters: filters}, schema).Items
}

// Sorted returns a sorted copy of records.
func Sorted(records []model.Record, s Sort, schema *model.Schema, locale language.Tag) []model.Record {
	out := slices.Clone(records)
	SortRecords(out, s, schema, locale)
	return out
}

func matchesSearch(r *model.Record, term string, fields []string, folder cases.Caser) bool {
	if term == "" {
		return true
	}
	for _, name := range fields {
		if strings.Contains(folder.String(r.Text(name)), term) {
			return true
		}
	}
	return false
}

func matchesFilters(r *model.Record, filters map[string]string) bool {
	for name, want := range filters {
		if want == "" || strings.EqualFold(want, FilterAll) {
			continue
		}
		if r.Text(name) != want {
			return false
		}
	}
	return true
}

// SortRecords sorts records in place, stably, by s.
// Numbers compare numerically, dates chronologically and text with the locale collator.
// Missing values sort first in ascending order.
func SortRecords(records []model.Record, s Sort, schema *model.Schema, locale language.Tag) {
	coll := collate.New(locale, collate.IgnoreCase)
	kind := columnType(schema, s.Field)

	compare := func(a, b *model.Record) int {
		av, aok := presentValue(a, s.Field)
		bv, bok := presentValue(b, s.Field)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return -1
		case !bok:
			return 1
		}
		return compareValues(av, bv, kind, coll)
	}

	slices.SortStableFunc(records, func(a, b model.Record) int {
		c := compare(&a, &b)
		if s.Direction == Desc {
			return -c
		}
		return c
	})
}

func presentValue(r *model.Record, name string) (any, bool) {
	v, ok := r.Value(name)
	if !ok || v == nil {
		return nil, false
	}
	if str, isStr := v.(string); isStr && str == "" {
		return nil, false
	}
	return v, true
}

func columnType(schema *model.Schema, name string) model.FieldType {
	switch name {
	case "created_at", "updated_at":
		return model.FieldDate
	case "id", "status":
		return model.FieldString
	}
	if f, ok := schema.Field(name); ok {
		return f.Type
	}
	return model.FieldString
}

func compareValues(a, b any, kind model.FieldType, coll *collate.Collator) int {
	switch kind {
	case model.FieldNumber:
		ad, aok := model.ToDecimal(a)
		bd, bok := model.ToDecimal(b)
		if aok && bok {
			return ad.Cmp(bd)
		}
	case model.FieldDate:
		at, aok := asTime(a)
		bt, bok := asTime(b)
		if aok && bok {
			return at.Compare(bt)
		}
	}
	as, bs := model.Stringify(a), model.Stringify(b)
	if c := coll.CompareString(as, bs); c != 0 {
		return c
	}
	return cmp.Compare(as, bs)
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return model.ParseDate(t)
	}
	return time.Time{}, false
}

func paginate(items []model.Record, p Page) []model.Record {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Offset >= len(items) {
		return []model.Record{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}
