// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/ports/outbound"
)

// MockDishCatalogProvider provides a mock implementation of
// DishCatalogProvider backed by testify/mock.
type MockDishCatalogProvider struct {
	mock.Mock
}

// NewMockDishCatalogProvider creates a new mock dish catalog
func NewMockDishCatalogProvider() *MockDishCatalogProvider {
	return &MockDishCatalogProvider{}
}

// FindAll mocks catalog listing
func (m *MockDishCatalogProvider) FindAll(ctx context.Context) ([]*planning.Dish, error) {
	args := m.Called(ctx)
	if dishes := args.Get(0); dishes != nil {
		return dishes.([]*planning.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByIDs mocks lookup by id set
func (m *MockDishCatalogProvider) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*planning.Dish, error) {
	args := m.Called(ctx, ids)
	if dishes := args.Get(0); dishes != nil {
		return dishes.([]*planning.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindExcludingAllergens mocks the allergen-filtered listing
func (m *MockDishCatalogProvider) FindExcludingAllergens(ctx context.Context, allergens []planning.Allergen) ([]*planning.Dish, error) {
	args := m.Called(ctx, allergens)
	if dishes := args.Get(0); dishes != nil {
		return dishes.([]*planning.Dish), args.Error(1)
	}
	return nil, args.Error(1)
}

// RecordingProgressSink collects snapshots for assertions without mock
// expectations.
type RecordingProgressSink struct {
	mu        sync.Mutex
	snapshots []outbound.ProgressSnapshot
}

// NewRecordingProgressSink creates an empty recording sink
func NewRecordingProgressSink() *RecordingProgressSink {
	return &RecordingProgressSink{}
}

// Publish implements outbound.ProgressSink
func (s *RecordingProgressSink) Publish(snapshot outbound.ProgressSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
}

// Snapshots returns the recorded snapshots in publish order
func (s *RecordingProgressSink) Snapshots() []outbound.ProgressSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]outbound.ProgressSnapshot(nil), s.snapshots...)
}
