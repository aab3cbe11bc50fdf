// Package reorder moves one entity within an ordered sibling list and
// produces the position payload that persists the new order.
package reorder

import (
	"errors"
	"fmt"
	"slices"
)

var ErrIndexOutOfRange = errors.New("reorder: index out of range")

// Orderable is implemented by value types that carry a stable id and an
// integer position within their parent scope.
type Orderable[T any] interface {
	OrderID() string
	OrderPosition() int
	WithPosition(position int) T
}

// PositionUpdate is one entry of the payload sent to the server.
type PositionUpdate struct {
	ID          string `json:"id" binding:"required"`
	NewPosition int    `json:"new_position" binding:"min=0"`
}

// Move returns a copy of items with the element at source removed and
// reinserted at destination. Elements between the two indices shift by one.
func Move[T any](items []T, source, destination int) ([]T, error) {
	if source < 0 || source >= len(items) {
		return nil, fmt.Errorf("%w: source %d, length %d", ErrIndexOutOfRange, source, len(items))
	}
	if destination < 0 || destination >= len(items) {
		return nil, fmt.Errorf("%w: destination %d, length %d", ErrIndexOutOfRange, destination, len(items))
	}

	out := slices.Clone(items)
	moved := out[source]
	out = slices.Delete(out, source, source+1)
	out = slices.Insert(out, destination, moved)
	return out, nil
}

// Positions assigns 0..n-1 by slice order, one update per item.
func Positions[T Orderable[T]](items []T) []PositionUpdate {
	updates := make([]PositionUpdate, len(items))
	for i, item := range items {
		updates[i] = PositionUpdate{ID: item.OrderID(), NewPosition: i}
	}
	return updates
}

// Result is the outcome of planning a drag-and-drop move.
type Result[T any] struct {
	Items   []T
	Updates []PositionUpdate
	Changed bool
}

// Plan computes the reordered list and its payload for a move from source
// to destination. A nil destination means the top of the list. Moving an
// item onto its own index is reported as unchanged with no payload.
func Plan[T Orderable[T]](items []T, source int, destination *int) (Result[T], error) {
	dst := 0
	if destination != nil {
		dst = *destination
	}
	if source == dst {
		if source < 0 || source >= len(items) {
			return Result[T]{}, fmt.Errorf("%w: source %d, length %d", ErrIndexOutOfRange, source, len(items))
		}
		return Result[T]{Items: items}, nil
	}

	moved, err := Move(items, source, dst)
	if err != nil {
		return Result[T]{}, err
	}
	updates := Positions(moved)
	for i := range moved {
		moved[i] = moved[i].WithPosition(i)
	}
	return Result[T]{Items: moved, Updates: updates, Changed: true}, nil
}

// Synthesize rebuilds a scope from cached entities and a position payload.
// Updates whose id is absent from cached are dropped. The result is sorted
// by the new positions.
func Synthesize[T Orderable[T]](cached []T, updates []PositionUpdate) []T {
	byID := make(map[string]T, len(cached))
	for _, item := range cached {
		byID[item.OrderID()] = item
	}

	out := make([]T, 0, len(updates))
	for _, u := range updates {
		item, ok := byID[u.ID]
		if !ok {
			continue
		}
		out = append(out, item.WithPosition(u.NewPosition))
	}
	SortByPosition(out)
	return out
}

// SortByPosition sorts items ascending by position, keeping the relative
// order of equal positions.
func SortByPosition[T Orderable[T]](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return a.OrderPosition() - b.OrderPosition()
	})
}

// ValidateBatch rejects payloads with duplicate ids or duplicate or
// negative positions.
func ValidateBatch(updates []PositionUpdate) error {
	ids := make(map[string]struct{}, len(updates))
	positions := make(map[int]struct{}, len(updates))
	for _, u := range updates {
		if u.ID == "" {
			return errors.New("position update is missing an id")
		}
		if u.NewPosition < 0 {
			return fmt.Errorf("position for %s must not be negative", u.ID)
		}
		if _, dup := ids[u.ID]; dup {
			return fmt.Errorf("duplicate id %s in position batch", u.ID)
		}
		if _, dup := positions[u.NewPosition]; dup {
			return fmt.Errorf("duplicate position %d in position batch", u.NewPosition)
		}
		ids[u.ID] = struct{}{}
		positions[u.NewPosition] = struct{}{}
	}
	return nil
}
