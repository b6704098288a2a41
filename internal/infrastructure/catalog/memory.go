// Package catalog provides dish catalog adapters. The in-memory catalog
// serves a fixed dish set loaded at startup; dish nutrient vectors arrive
// precomputed per serving.
package catalog

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/ports/outbound"
	"github.com/alchemorsel/planner/pkg/errors"
)

// MemoryCatalog implements outbound.DishCatalogProvider over an immutable
// in-memory dish set.
type MemoryCatalog struct {
	mu     sync.RWMutex
	dishes []*planning.Dish
	byID   map[uuid.UUID]*planning.Dish
	logger *zap.Logger
}

var _ outbound.DishCatalogProvider = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates a catalog over the given dishes. Every dish is
// validated on the way in; an invalid dish rejects the whole set.
func NewMemoryCatalog(dishes []*planning.Dish, logger *zap.Logger) (*MemoryCatalog, error) {
	byID := make(map[uuid.UUID]*planning.Dish, len(dishes))
	for _, dish := range dishes {
		if err := dish.Validate(); err != nil {
			return nil, errors.NewCatalogError("validate dish "+dish.Name, err)
		}
		byID[dish.ID] = dish
	}
	return &MemoryCatalog{
		dishes: dishes,
		byID:   byID,
		logger: logger.Named("dish-catalog"),
	}, nil
}

// LoadFromFile builds a catalog from a JSON dish file.
func LoadFromFile(path string, logger *zap.Logger) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogError("read catalog file", err)
	}
	var dishes []*planning.Dish
	if err := json.Unmarshal(data, &dishes); err != nil {
		return nil, errors.NewCatalogError("decode catalog file", err)
	}
	logger.Info("dish catalog loaded",
		zap.String("path", path),
		zap.Int("dishes", len(dishes)),
	)
	return NewMemoryCatalog(dishes, logger)
}

// FindAll implements outbound.DishCatalogProvider.
func (c *MemoryCatalog) FindAll(ctx context.Context) ([]*planning.Dish, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*planning.Dish(nil), c.dishes...), nil
}

// FindByIDs implements outbound.DishCatalogProvider. Unknown IDs are
// skipped rather than failing the lookup.
func (c *MemoryCatalog) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*planning.Dish, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*planning.Dish, 0, len(ids))
	for _, id := range ids {
		if dish, ok := c.byID[id]; ok {
			out = append(out, dish)
		}
	}
	return out, nil
}

// FindExcludingAllergens implements outbound.DishCatalogProvider.
func (c *MemoryCatalog) FindExcludingAllergens(ctx context.Context, allergens []planning.Allergen) ([]*planning.Dish, error) {
	excluded := make(map[planning.Allergen]bool, len(allergens))
	for _, a := range allergens {
		excluded[a] = true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*planning.Dish
	for _, dish := range c.dishes {
		if dish.ContainsAllergen(excluded) {
			continue
		}
		out = append(out, dish)
	}
	return out, nil
}
