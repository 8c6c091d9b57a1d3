package progress

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=progress
type Repository interface {
	ListItems(ctx context.Context, costCenter string) ([]Item, error)
	// SaveItems replaces every item stored for the cost center.
	SaveItems(ctx context.Context, costCenter string, items []Item) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Merge folds a new snapshot into the stored items of a cost center. Stored
// and incoming items are deduplicated together, so an item only moves when the
// snapshot carries a larger accumulated value.
func (s *Service) Merge(ctx context.Context, costCenter string, items []Item) ([]Item, error) {
	existing, err := s.repo.ListItems(ctx, costCenter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	all := make([]Item, 0, len(existing)+len(items))
	all = append(all, existing...)
	all = append(all, items...)

	merged := Dedupe(all)
	for i := range merged {
		merged[i].CostCenter = costCenter
	}

	if err := s.repo.SaveItems(ctx, costCenter, merged); err != nil {
		return nil, fmt.Errorf("save items: %w", err)
	}

	return merged, nil
}

func (s *Service) List(ctx context.Context, costCenter string) ([]Item, error) {
	return s.repo.ListItems(ctx, costCenter)
}
