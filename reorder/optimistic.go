package reorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultResumeDelay is how long animations stay suspended after the
// optimistic write, long enough for the list to settle.
const DefaultResumeDelay = 100 * time.Millisecond

// Animator is the view layer's list animation switch.
type Animator interface {
	Suspend()
	Resume()
}

type NoopAnimator struct{}

func (NoopAnimator) Suspend() {}
func (NoopAnimator) Resume()  {}

// PersistFunc sends a position payload to the server.
type PersistFunc[T any] func(ctx context.Context, updates []PositionUpdate) ([]T, error)

// Reorderer applies moves to a Cache optimistically and rolls back when the
// server rejects them.
type Reorderer[T Orderable[T]] struct {
	Cache       *Cache[T]
	Animator    Animator
	ResumeDelay time.Duration
	// Notify receives persist failures after rollback.
	Notify func(err error)
	Logger *slog.Logger
}

// NewReorderer returns a Reorderer over cache. A nil logger falls back to
// slog.Default.
func NewReorderer[T Orderable[T]](cache *Cache[T], logger *slog.Logger) *Reorderer[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reorderer[T]{
		Cache:       cache,
		Animator:    NoopAnimator{},
		ResumeDelay: DefaultResumeDelay,
		Notify:      func(error) {},
		Logger:      logger,
	}
}

// Move reorders the scope cached under key. The cache shows the new order
// before persist is called; if persist fails the scope is restored to its
// exact prior contents and the error is both notified and returned. A move
// onto the same index makes no call.
func (r *Reorderer[T]) Move(ctx context.Context, key string, source int, destination *int, persist PersistFunc[T]) ([]T, error) {
	current, ok := r.Cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("reorder: scope %q is not cached", key)
	}
	SortByPosition(current)

	plan, err := Plan(current, source, destination)
	if err != nil {
		return nil, err
	}
	if !plan.Changed {
		return current, nil
	}

	snap := r.Cache.Snapshot(key)

	r.Animator.Suspend()
	r.Cache.Set(key, Synthesize(current, plan.Updates))
	time.AfterFunc(r.ResumeDelay, r.Animator.Resume)

	r.Logger.DebugContext(ctx, "persisting reorder", "scope", key, "source", source, "items", len(plan.Updates))
	saved, err := persist(ctx, plan.Updates)
	if err != nil {
		r.Cache.Restore(snap)
		r.Logger.WarnContext(ctx, "reorder rejected, cache restored", "scope", key, "error", err)
		r.Notify(err)
		return nil, err
	}
	return saved, nil
}
