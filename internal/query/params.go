package query

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"pharmadash/internal/model"
)

const (
	DefaultLimit = 10
	MaxLimit     = 500
)

// ParamError reports an unusable query string parameter.
type ParamError struct {
	Param string
	Code  string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid query parameter %q", e.Param)
}

var reservedParams = map[string]struct{}{
	"q": {}, "search": {}, "sort": {}, "order": {}, "limit": {}, "offset": {}, "lang": {},
}

// ParseParams builds a Query from URL query values.
// Recognised keys: q (or search), sort, order, limit, offset, lang,
// plus any filterable column of the schema. Unknown keys are ignored.
// lang is parsed but callers usually resolve the final locale themselves.
// limit is capped at MaxLimit and limit=0 asks for a full MaxLimit page, so a
// request can never ask for an unbounded page. Only callers building a Page
// themselves (e.g. exports) get the "Limit 0 returns everything" behaviour.
func ParseParams(values map[string]string, schema *model.Schema) (Query, error) {
	q := Query{
		Search:  values["q"],
		Filters: map[string]string{},
		Page:    Page{Limit: DefaultLimit},
	}
	if q.Search == "" {
		q.Search = values["search"]
	}

	if v, ok := values["limit"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Query{}, &ParamError{Param: "limit", Code: "INVALID_LIMIT"}
		}
		if n == 0 {
			n = MaxLimit
		}
		q.Page.Limit = min(n, MaxLimit)
	}
	if v, ok := values["offset"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Query{}, &ParamError{Param: "offset", Code: "INVALID_OFFSET"}
		}
		q.Page.Offset = n
	}

	if field := values["sort"]; field != "" {
		if !schema.Sortable(field) {
			return Query{}, &ParamError{Param: "sort", Code: "INVALID_SORT"}
		}
		q.Sort.Field = field
		q.Sort.Direction = Asc
	}
	if dir := strings.ToLower(values["order"]); dir != "" {
		switch Direction(dir) {
		case Asc, Desc:
			q.Sort.Direction = Direction(dir)
		default:
			return Query{}, &ParamError{Param: "order", Code: "INVALID_ORDER"}
		}
	}

	if lang := values["lang"]; lang != "" {
		tag, err := language.Parse(lang)
		if err != nil {
			return Query{}, &ParamError{Param: "lang", Code: "INVALID_LANG"}
		}
		q.Locale = tag
	}

	for key, v := range values {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		if schema.Filterable(key) {
			q.Filters[key] = v
		}
	}
	return q, nil
}
