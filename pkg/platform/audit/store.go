package audit

import "context"

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can replay recent events.
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Emitter is the narrow interface services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// MultiStore fans an event out to several stores and returns the first error.
type MultiStore []Store

func (m MultiStore) Append(ctx context.Context, event Event) error {
	var firstErr error
	for _, s := range m {
		if err := s.Append(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
