package audit

import "context"

// FanoutStore appends to every sink and answers queries from the first one.
// It lets a queryable store sit alongside a write-only transport like Kafka.
type FanoutStore struct {
	stores []Store
}

func NewFanoutStore(stores ...Store) *FanoutStore {
	return &FanoutStore{stores: stores}
}

func (s *FanoutStore) Append(ctx context.Context, event Event) error {
	var firstErr error
	for _, store := range s.stores {
		if err := store.Append(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *FanoutStore) ListByCompany(ctx context.Context, registrationID string) ([]Event, error) {
	return s.stores[0].ListByCompany(ctx, registrationID)
}
