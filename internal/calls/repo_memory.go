package calls

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps the log in process memory. Used when no database is configured and in tests.
type MemoryRepo struct {
	mu    sync.Mutex
	calls []PlacedCall
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(_ context.Context, c PlacedCall) error {
	if err := c.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return nil
}

func (r *MemoryRepo) List(_ context.Context, userID string, from, to time.Time) ([]PlacedCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PlacedCall, 0)
	for _, c := range r.calls {
		if c.UserID != userID {
			continue
		}
		if !from.IsZero() && c.StartTime.Before(from) {
			continue
		}
		if !to.IsZero() && !c.StartTime.Before(to) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (r *MemoryRepo) Get(_ context.Context, userID, requestID string) (PlacedCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c.UserID == userID && c.RequestID == requestID {
			return c, nil
		}
	}
	return PlacedCall{}, ErrNotFound
}
