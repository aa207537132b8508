package model

import (
	"fmt"
	"strings"
)

// Kind is the discriminant of a record variant. Every record carries exactly one kind,
// and the kind selects the schema (field set, statuses, validation rules) that applies to it.
type Kind string

const (
	KindClient       Kind = "client"
	KindRequirement  Kind = "requirement"
	KindOrder        Kind = "order"
	KindSearchResult Kind = "search_result"
)

// Kinds returns every known kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindClient, KindRequirement, KindOrder, KindSearchResult}
}

var kindAliases = map[string]Kind{
	"client":          KindClient,
	"clients":         KindClient,
	"requirement":     KindRequirement,
	"requirements":    KindRequirement,
	"order":           KindOrder,
	"orders":          KindOrder,
	"purchase-order":  KindOrder,
	"purchase-orders": KindOrder,
	"search_result":   KindSearchResult,
	"search_results":  KindSearchResult,
	"search-result":   KindSearchResult,
	"search-results":  KindSearchResult,
}

// ParseKind resolves a kind from its singular, plural or dashed form as used in URLs.
func ParseKind(s string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }
