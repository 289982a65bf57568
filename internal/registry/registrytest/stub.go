// Package registrytest provides an in-memory registry fixture for tests that
// exercise traversal and screening logic against a known shareholding graph.
package registrytest

import (
	"context"
	"sync"

	"github.com/consciencex/lhb-ubo/internal/registry"
)

// Stub is a scriptable Lookup backed by a fixture graph. It records every
// call so tests can assert on traversal order and lookup counts.
type Stub struct {
	mu       sync.Mutex
	records  map[string]*registry.CompanyRecord
	failures map[string]error
	calls    []string
}

// NewStub returns an empty stub; lookups against it fail with not_found until
// records are added.
func NewStub() *Stub {
	return &Stub{
		records:  make(map[string]*registry.CompanyRecord),
		failures: make(map[string]error),
	}
}

// Add registers a company record in the fixture graph.
func (s *Stub) Add(record *registry.CompanyRecord) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.RegistrationID] = record
	return s
}

// FailWith scripts a lookup failure for one registration ID.
func (s *Stub) FailWith(registrationID string, err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[registrationID] = err
	return s
}

func (s *Stub) Lookup(ctx context.Context, registrationID string) (*registry.CompanyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, registrationID)

	if err, ok := s.failures[registrationID]; ok {
		return nil, err
	}
	if record, ok := s.records[registrationID]; ok {
		return record, nil
	}
	return nil, registry.NewLookupError(registry.ErrorNotFound, registrationID, "company not found", nil)
}

// Calls returns the registration IDs looked up so far, in order.
func (s *Stub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount reports how many times one registration ID was looked up.
func (s *Stub) CallCount(registrationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range s.calls {
		if id == registrationID {
			n++
		}
	}
	return n
}

// Company builds a fixture company record.
func Company(registrationID, name string, holders ...registry.Shareholder) *registry.CompanyRecord {
	return &registry.CompanyRecord{
		RegistrationID: registrationID,
		NameEN:         name,
		Status:         "Active",
		Shareholders:   holders,
	}
}

// Person builds an individual shareholder fixture.
func Person(name, nationality string, percent float64) registry.Shareholder {
	return registry.Shareholder{
		Kind:        registry.HolderPerson,
		DisplayName: name,
		Nationality: nationality,
		Percent:     percent,
	}
}

// DirectorOf marks a shareholder fixture as sitting on the board.
func DirectorOf(sh registry.Shareholder) registry.Shareholder {
	sh.Directorship = "YES"
	return sh
}

// Corporate builds a corporate shareholder fixture. An empty registrationID
// models a holder the registry could not identify.
func Corporate(name, registrationID string, percent float64) registry.Shareholder {
	return registry.Shareholder{
		Kind:        registry.HolderCorporate,
		DisplayName: name,
		CorporateID: registrationID,
		Percent:     percent,
	}
}
