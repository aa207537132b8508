package query

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"pharmadash/internal/model"
)

func clients() []model.Record {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id, company, contact, email, status, industry string, day int) model.Record {
		return model.Record{
			ID:     id,
			Kind:   model.KindClient,
			Status: status,
			Fields: map[string]any{
				"company_name":   company,
				"contact_person": contact,
				"email":          email,
				"industry":       industry,
			},
			CreatedAt: base.AddDate(0, 0, day),
			UpdatedAt: base.AddDate(0, 0, day),
		}
	}
	return []model.Record{
		mk("CLT-1-a", "Zenith Pharma", "Sara Haddad", "sara@zenith.io", "active", "pharmaceuticals", 1),
		mk("CLT-2-b", "acme labs", "Jo Park", "jo@acme.com", "pending", "biotech", 2),
		mk("CLT-3-c", "Medico Distribution", "Omar Ali", "omar@medico.com", "active", "distributor", 3),
		mk("CLT-4-d", "Éclair Health", "Lina Roy", "lina@eclair.fr", "suspended", "pharmaceuticals", 4),
		mk("CLT-5-e", "Beta Biotech", "Jo Smith", "jo@beta.bio", "inactive", "biotech", 5),
	}
}

func ids(rs []model.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

var clientSchema = model.MustSchema(model.KindClient)

func TestSearch_MatchesAnyConfiguredField(t *testing.T) {
	rs := clients()

	tests := []struct {
		term string
		want []string
	}{
		{term: "", want: ids(rs)},
		{term: "ACME", want: []string{"CLT-2-b"}},
		{term: "jo", want: []string{"CLT-2-b", "CLT-5-e"}},
		{term: "medico.com", want: []string{"CLT-3-c"}},
		{term: "éclair", want: []string{"CLT-4-d"}},
		{term: "biotech", want: []string{"CLT-5-e"}}, // industry is not a search field
		{term: "nobody", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := Search(rs, tt.term, clientSchema)
			assert.Equal(t, tt.want, ids(got))
			assert.LessOrEqual(t, len(got), len(rs))
			for _, r := range got {
				if tt.term == "" {
					continue
				}
				found := false
				for _, f := range clientSchema.SearchFields() {
					if strings.Contains(strings.ToLower(r.Text(f)), strings.ToLower(tt.term)) {
						found = true
					}
				}
				assert.True(t, found, r.ID)
			}
		})
	}
}

func TestSearch_RequirementScenario(t *testing.T) {
	schema := model.MustSchema(model.KindRequirement)
	rs := []model.Record{
		{ID: "REQ-1-a", Kind: model.KindRequirement, Status: "open", Fields: map[string]any{"product_name": "Amoxicillin Trihydrate", "api_name": "Amoxicillin"}},
		{ID: "REQ-2-b", Kind: model.KindRequirement, Status: "open", Fields: map[string]any{"product_name": "Metformin Hydrochloride", "api_name": "Metformin"}},
	}

	got := Search(rs, "amox", schema)
	require.Len(t, got, 1)
	assert.Equal(t, "REQ-1-a", got[0].ID)
}

func TestFilter(t *testing.T) {
	rs := clients()

	got := Filter(rs, map[string]string{"status": "active"}, clientSchema)
	assert.Equal(t, []string{"CLT-1-a", "CLT-3-c"}, ids(got))
	for _, r := range got {
		assert.Equal(t, "active", r.Status)
	}

	assert.Equal(t, ids(rs), ids(Filter(rs, map[string]string{"status": FilterAll}, clientSchema)))
	assert.Equal(t, ids(rs), ids(Filter(rs, map[string]string{"status": ""}, clientSchema)))

	got = Filter(rs, map[string]string{"status": "active", "industry": "pharmaceuticals"}, clientSchema)
	assert.Equal(t, []string{"CLT-1-a"}, ids(got))
}

func TestSort_StringsUseCollation(t *testing.T) {
	rs := clients()
	got := Sorted(rs, Sort{Field: "company_name", Direction: Asc}, clientSchema, language.English)
	assert.Equal(t, []string{"CLT-2-b", "CLT-5-e", "CLT-4-d", "CLT-3-c", "CLT-1-a"}, ids(got))
}

func TestSort_IdempotentAndReversible(t *testing.T) {
	rs := clients()
	s := Sort{Field: "company_name", Direction: Asc}

	once := Sorted(rs, s, clientSchema, language.English)
	twice := Sorted(once, s, clientSchema, language.English)
	assert.Equal(t, ids(once), ids(twice))

	desc := Sorted(rs, Sort{Field: "company_name", Direction: Desc}, clientSchema, language.English)
	reversed := slices.Clone(ids(once))
	slices.Reverse(reversed)
	assert.Equal(t, reversed, ids(desc))
}

func TestSort_StableForEqualKeys(t *testing.T) {
	rs := clients()
	got := Sorted(rs, Sort{Field: "industry", Direction: Asc}, clientSchema, language.Und)
	// biotech: CLT-2-b before CLT-5-e, pharmaceuticals: CLT-1-a before CLT-4-d.
	assert.Equal(t, []string{"CLT-2-b", "CLT-5-e", "CLT-3-c", "CLT-1-a", "CLT-4-d"}, ids(got))

	got = Sorted(rs, Sort{Field: "industry", Direction: Desc}, clientSchema, language.Und)
	assert.Equal(t, []string{"CLT-1-a", "CLT-4-d", "CLT-3-c", "CLT-2-b", "CLT-5-e"}, ids(got))
}

func TestSort_NumbersAndDates(t *testing.T) {
	schema := model.MustSchema(model.KindOrder)
	rs := []model.Record{
		{ID: "PO-1-a", Fields: map[string]any{"quantity": 100.0, "eta": "2026-03-01"}},
		{ID: "PO-2-b", Fields: map[string]any{"quantity": 9.0, "eta": "2026-01-15"}},
		{ID: "PO-3-c", Fields: map[string]any{"quantity": "25", "eta": ""}},
	}

	got := Sorted(rs, Sort{Field: "quantity", Direction: Asc}, schema, language.Und)
	assert.Equal(t, []string{"PO-2-b", "PO-3-c", "PO-1-a"}, ids(got))

	got = Sorted(rs, Sort{Field: "eta", Direction: Asc}, schema, language.Und)
	assert.Equal(t, []string{"PO-3-c", "PO-2-b", "PO-1-a"}, ids(got))

	got = Sorted(rs, Sort{Field: "eta", Direction: Desc}, schema, language.Und)
	assert.Equal(t, []string{"PO-1-a", "PO-2-b", "PO-3-c"}, ids(got))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	rs := clients()
	before := ids(rs)

	res := Apply(rs, Query{
		Search:  "jo",
		Filters: map[string]string{"status": FilterAll},
		Sort:    Sort{Field: "company_name", Direction: Desc},
	}, clientSchema)

	assert.Equal(t, before, ids(rs))
	assert.Equal(t, []string{"CLT-5-e", "CLT-2-b"}, ids(res.Items))
	assert.Equal(t, 2, res.Total)
}

func TestApply_Deterministic(t *testing.T) {
	rs := clients()
	q := Query{Sort: Sort{Field: "status", Direction: Asc}, Locale: language.French}
	a := Apply(rs, q, clientSchema)
	b := Apply(rs, q, clientSchema)
	assert.Equal(t, a, b)
}

func TestApply_Paging(t *testing.T) {
	rs := clients()

	res := Apply(rs, Query{Page: Page{Limit: 2, Offset: 1}}, clientSchema)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, []string{"CLT-2-b", "CLT-3-c"}, ids(res.Items))

	res = Apply(rs, Query{Page: Page{Limit: 2, Offset: 10}}, clientSchema)
	assert.Equal(t, 5, res.Total)
	assert.Empty(t, res.Items)

	res = Apply(rs, Query{Page: Page{Offset: 3}}, clientSchema)
	assert.Equal(t, []string{"CLT-4-d", "CLT-5-e"}, ids(res.Items))
}

func TestParseParams(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		q, err := ParseParams(map[string]string{
			"q":        "acme",
			"status":   "active",
			"industry": "biotech",
			"phone":    "555",
			"sort":     "company_name",
			"order":    "DESC",
			"limit":    "20",
			"offset":   "40",
			"lang":     "fr",
		}, clientSchema)
		require.NoError(t, err)

		assert.Equal(t, "acme", q.Search)
		assert.Equal(t, map[string]string{"status": "active", "industry": "biotech"}, q.Filters)
		assert.Equal(t, Sort{Field: "company_name", Direction: Desc}, q.Sort)
		assert.Equal(t, Page{Limit: 20, Offset: 40}, q.Page)
		assert.Equal(t, language.French, q.Locale)
	})

	t.Run("defaults", func(t *testing.T) {
		q, err := ParseParams(map[string]string{}, clientSchema)
		require.NoError(t, err)
		assert.Equal(t, Page{Limit: DefaultLimit}, q.Page)
		assert.Empty(t, q.Sort.Field)
	})

	t.Run("limit capped", func(t *testing.T) {
		q, err := ParseParams(map[string]string{"limit": "100000"}, clientSchema)
		require.NoError(t, err)
		assert.Equal(t, MaxLimit, q.Page.Limit)
	})

	t.Run("limit zero is a full page, never unbounded", func(t *testing.T) {
		q, err := ParseParams(map[string]string{"limit": "0"}, clientSchema)
		require.NoError(t, err)
		assert.Equal(t, MaxLimit, q.Page.Limit)
	})

	errs := map[string]map[string]string{
		"INVALID_LIMIT":  {"limit": "abc"},
		"INVALID_OFFSET": {"offset": "-1"},
		"INVALID_SORT":   {"sort": "password"},
		"INVALID_ORDER":  {"sort": "email", "order": "sideways"},
	}
	for code, values := range errs {
		t.Run(code, func(t *testing.T) {
			_, err := ParseParams(values, clientSchema)
			var pe *ParamError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, code, pe.Code)
		})
	}
}
