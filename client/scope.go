package client

import (
	"context"
	"log/slog"
	"slices"

	"menufic/model"
	"menufic/reorder"
)

// Scope keeps the ordered children of each parent in a reorder cache and
// persists moves and deletes through the client.
type Scope[T reorder.Orderable[T]] struct {
	kind    string
	list    func(ctx context.Context, parentID string) ([]T, error)
	persist reorder.PersistFunc[T]
	remove  func(ctx context.Context, id string) (*T, error)

	Cache     *reorder.Cache[T]
	Reorderer *reorder.Reorderer[T]
}

type (
	Menus      = Scope[model.Menu]
	Categories = Scope[model.Category]
	Items      = Scope[model.MenuItem]
)

func newScope[T reorder.Orderable[T]](
	kind string,
	list func(context.Context, string) ([]T, error),
	persist reorder.PersistFunc[T],
	remove func(context.Context, string) (*T, error),
	logger *slog.Logger,
) *Scope[T] {
	cache := reorder.NewCache[T]()
	return &Scope[T]{
		kind:      kind,
		list:      list,
		persist:   persist,
		remove:    remove,
		Cache:     cache,
		Reorderer: reorder.NewReorderer(cache, logger),
	}
}

// NewMenus caches menus per restaurant.
func NewMenus(api *Client, logger *slog.Logger) *Menus {
	return newScope("menus", api.ListMenus, api.UpdateMenuPositions, api.DeleteMenu, logger)
}

// NewCategories caches categories per menu.
func NewCategories(api *Client, logger *slog.Logger) *Categories {
	return newScope("categories", api.ListCategories, api.UpdateCategoryPositions, api.DeleteCategory, logger)
}

// NewItems caches items per category.
func NewItems(api *Client, logger *slog.Logger) *Items {
	return newScope("items", api.ListItems, api.UpdateItemPositions, api.DeleteItem, logger)
}

func (s *Scope[T]) key(parentID string) string {
	return reorder.ScopeKey(s.kind, parentID)
}

// Load fetches the parent's children into the cache.
func (s *Scope[T]) Load(ctx context.Context, parentID string) ([]T, error) {
	items, err := s.list(ctx, parentID)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(s.key(parentID), items)
	return items, nil
}

func (s *Scope[T]) Cached(parentID string) []T {
	items, _ := s.Cache.Get(s.key(parentID))
	return items
}

// Move drags the entry at source to destination. A nil destination means
// the drop landed outside the list and is treated as the top.
func (s *Scope[T]) Move(ctx context.Context, parentID string, source int, destination *int) ([]T, error) {
	return s.Reorderer.Move(ctx, s.key(parentID), source, destination, s.persist)
}

// Delete removes an entry on the server, then drops it from the cache. The
// cache is left untouched when the call fails.
func (s *Scope[T]) Delete(ctx context.Context, parentID, id string) (*T, error) {
	deleted, err := s.remove(ctx, id)
	if err != nil {
		return nil, err
	}
	key := s.key(parentID)
	if items, ok := s.Cache.Get(key); ok {
		s.Cache.Set(key, slices.DeleteFunc(items, func(x T) bool { return x.OrderID() == id }))
	}
	return deleted, nil
}
