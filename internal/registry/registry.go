// Package registry defines the company-registry lookup port and the records
// it returns. Concrete clients (the Enlite SOAP adapter, caches, test stubs)
// implement Lookup; the screening engine depends only on this package.
package registry

import "context"

// HolderKind distinguishes natural persons from corporate holders.
type HolderKind string

const (
	HolderPerson    HolderKind = "person"
	HolderCorporate HolderKind = "corporate"
)

// Director is one board member as reported by the registry. Carried through
// to reports; the shareholding analysis itself does not consume directors.
type Director struct {
	Title     string `json:"title,omitempty"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// Shareholder is one direct holding relation within a company record.
//
// Percent is the share of the held company owned by this holder, in [0, 100].
// Registry data is not required to sum to 100 across all holders; callers
// must not assume closure.
type Shareholder struct {
	Kind        HolderKind `json:"kind"`
	DisplayName string     `json:"display_name"`
	FirstName   string     `json:"firstname,omitempty"`
	LastName    string     `json:"lastname,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	ShareAmount int64      `json:"share_amount"`
	Percent     float64    `json:"percent"`

	// CorporateID is the registration id to follow for corporate holders.
	// A corporate holder without one cannot be expanded further.
	CorporateID string `json:"corporate_id,omitempty"`

	BusinessStatus string `json:"business_status,omitempty"`
	// Directorship is the registry's "YES"/"NO" flag marking a shareholder
	// who also sits on the board.
	Directorship string `json:"directorship,omitempty"`
}

// IsDirector reports whether the registry flagged this holder as a director.
func (s Shareholder) IsDirector() bool {
	return s.Directorship == "YES" || s.Directorship == "Yes" || s.Directorship == "yes"
}

// CompanyRecord is one snapshot of a company as returned by the registry.
// Records are immutable once returned; the engine never mutates them.
type CompanyRecord struct {
	RegistrationID string        `json:"registration_id"`
	NameEN         string        `json:"name_en,omitempty"`
	NameTH         string        `json:"name_th,omitempty"`
	BusinessType   string        `json:"business_type,omitempty"`
	Status         string        `json:"status,omitempty"`
	Capital        string        `json:"capital,omitempty"`
	RegisteredDate string        `json:"regis_date,omitempty"`
	Shareholders   []Shareholder `json:"shareholders"`
	Directors      []Director    `json:"directors,omitempty"`
}

// DisplayName prefers the English name, then the local name, then the
// registration id.
func (r *CompanyRecord) DisplayName() string {
	if r.NameEN != "" {
		return r.NameEN
	}
	if r.NameTH != "" {
		return r.NameTH
	}
	return r.RegistrationID
}

// Lookup is the registry port. One call is one atomic read; caching,
// rate limiting and retries are adapter concerns.
type Lookup interface {
	Lookup(ctx context.Context, registrationID string) (*CompanyRecord, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, registrationID string) (*CompanyRecord, error)

func (f LookupFunc) Lookup(ctx context.Context, registrationID string) (*CompanyRecord, error) {
	return f(ctx, registrationID)
}
