package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClient() map[string]any {
	return map[string]any{
		"company_name":   "Acme",
		"contact_person": "Jo",
		"email":          "jo@acme.com",
		"phone":          "555",
		"industry":       "pharmaceuticals",
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "client", want: KindClient},
		{in: "Clients", want: KindClient},
		{in: "purchase-orders", want: KindOrder},
		{in: "search-results", want: KindSearchResult},
		{in: "requirements", want: KindRequirement},
		{in: "tenders", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchema_ValidateClient(t *testing.T) {
	s := MustSchema(KindClient)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, s.Validate(validClient()))
	})

	t.Run("invalid email only", func(t *testing.T) {
		values := validClient()
		values["email"] = "not-an-email"

		err := s.Validate(values)
		ve, ok := AsValidationError(err)
		require.True(t, ok)
		assert.Len(t, ve.Fields, 1)
		assert.Contains(t, ve.Fields, "email")
	})

	t.Run("missing required", func(t *testing.T) {
		err := s.Validate(map[string]any{"company_name": "  "})
		ve, ok := AsValidationError(err)
		require.True(t, ok)
		for _, name := range []string{"company_name", "contact_person", "email", "phone", "industry"} {
			assert.Contains(t, ve.Fields, name)
		}
		assert.NotContains(t, ve.Fields, "country")
	})
}

func TestEmailRule(t *testing.T) {
	s := MustSchema(KindClient)
	cases := map[string]bool{
		"jo@acme.com":   true,
		"a@b.c":         true,
		"jo@acme":       false,
		"@acme.com":     false,
		"jo acme@x.com": false,
		"jo@@acme.com":  false,
	}
	for email, ok := range cases {
		values := validClient()
		values["email"] = email
		err := s.Validate(values)
		assert.Equal(t, ok, err == nil, email)
	}
}

func TestSchema_ValidateTypedFields(t *testing.T) {
	s := MustSchema(KindRequirement)
	base := func() map[string]any {
		return map[string]any{"product_name": "Amoxicillin Trihydrate", "api_name": "Amoxicillin", "quantity": 100.0}
	}

	assert.NoError(t, s.Validate(base()))

	v := base()
	v["quantity"] = "12.5"
	assert.NoError(t, s.Validate(v))

	v = base()
	v["quantity"] = json.Number("0")
	ve, _ := AsValidationError(s.Validate(v))
	require.NotNil(t, ve)
	assert.Equal(t, "quantity must be greater than zero", ve.Fields["quantity"])

	v = base()
	v["quantity"] = "lots"
	ve, _ = AsValidationError(s.Validate(v))
	require.NotNil(t, ve)
	assert.Equal(t, "quantity must be a number", ve.Fields["quantity"])

	v = base()
	v["required_by"] = "next week"
	v["priority"] = "whenever"
	ve, _ = AsValidationError(s.Validate(v))
	require.NotNil(t, ve)
	assert.Contains(t, ve.Fields, "required_by")
	assert.Contains(t, ve.Fields, "priority")

	v = base()
	v["required_by"] = "2026-11-01"
	v["priority"] = "HIGH"
	assert.NoError(t, s.Validate(v))
}

func TestSchema_Sanitize(t *testing.T) {
	s := MustSchema(KindOrder)
	out := s.Sanitize(map[string]any{
		"po_number": "  PO-1 ",
		"quantity":  "250",
		"unknown":   "dropped",
		"currency":  "USD",
	})

	assert.Equal(t, "PO-1", out["po_number"])
	assert.Equal(t, 250.0, out["quantity"])
	assert.Equal(t, "USD", out["currency"])
	assert.NotContains(t, out, "unknown")
}

func TestSchema_NormalizeStatus(t *testing.T) {
	s := MustSchema(KindClient)
	assert.Equal(t, "suspended", s.NormalizeStatus("Suspended"))
	assert.Equal(t, "active", s.NormalizeStatus("archived"))
	assert.Equal(t, "active", s.NormalizeStatus(""))
}

func TestSchema_Defaults(t *testing.T) {
	s := MustSchema(KindClient)
	d := s.Defaults()
	assert.Equal(t, "", d["company_name"])
	assert.Equal(t, "active", d["status"])
	assert.Len(t, d, len(s.Fields)+1)
}

func TestOrderProgress(t *testing.T) {
	assert.Equal(t, 0, OrderProgress("draft"))
	assert.Equal(t, 25, OrderProgress("created"))
	assert.Equal(t, 50, OrderProgress("in-process"))
	assert.Equal(t, 75, OrderProgress("ready"))
	assert.Equal(t, 100, OrderProgress("shipped"))
	assert.Equal(t, 0, OrderProgress("lost-at-sea"))
}

func TestNewID(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	a := NewID("CLT", now)
	b := NewID("CLT", now)

	assert.NotEqual(t, a, b)
	assert.True(t, ValidID("CLT", a))
	assert.False(t, ValidID("PO", a))
	assert.False(t, ValidID("CLT", "CLT-abc-123456"))
}

func TestRecord_CloneAndValue(t *testing.T) {
	r := &Record{ID: "CLT-1-abcdef", Kind: KindClient, Status: "active", Fields: map[string]any{"company_name": "Acme"}}
	c := r.Clone()
	c.Fields["company_name"] = "Other"

	assert.Equal(t, "Acme", r.Fields["company_name"])
	assert.Equal(t, "active", r.Text("status"))
	assert.Equal(t, "", r.Text("missing"))
}

func TestValidationError_Message(t *testing.T) {
	ve := NewValidationError()
	ve.Add("phone", "phone is required")
	ve.Add("email", "email must be a valid email address")
	ve.Add("email", "ignored")

	assert.Equal(t, "validation failed: email must be a valid email address; phone is required", ve.Error())

	wrapped := errors.Join(errors.New("save"), ve)
	got, ok := AsValidationError(wrapped)
	assert.True(t, ok)
	assert.Same(t, ve, got)
}
