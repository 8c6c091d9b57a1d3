package budget

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	// SaveBudgetTree replaces every node stored for the cost center.
	SaveBudgetTree(ctx context.Context, roots []*Node, costCenter string) error
	LoadBudgetTree(ctx context.Context, costCenter string) ([]*Node, error)
	ListCostCenters(ctx context.Context) ([]string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save stamps the cost center on every node, recomputes group totals and
// hands the tree to the repository as a full replacement.
func (s *Service) Save(ctx context.Context, costCenter string, roots []*Node) error {
	costCenter = strings.TrimSpace(costCenter)
	if costCenter == "" || strings.EqualFold(costCenter, Consolidated) {
		return fmt.Errorf("%w: %q", ErrReservedCostCenter, costCenter)
	}

	for _, n := range Flatten(roots) {
		n.CostCenter = costCenter
	}

	if err := Recompute(roots); err != nil {
		return fmt.Errorf("recompute tree: %w", err)
	}

	if err := s.repo.SaveBudgetTree(ctx, roots, costCenter); err != nil {
		return fmt.Errorf("save budget tree: %w", err)
	}

	return nil
}

func (s *Service) Tree(ctx context.Context, costCenter string) ([]*Node, error) {
	roots, err := s.repo.LoadBudgetTree(ctx, costCenter)
	if err != nil {
		return nil, err
	}

	if len(roots) == 0 {
		return nil, ErrNotFound
	}

	return roots, nil
}

func (s *Service) CostCenters(ctx context.Context) ([]string, error) {
	return s.repo.ListCostCenters(ctx)
}

// Consolidated merges the trees of the given cost centers. With no cost
// centers, every stored partition is merged.
func (s *Service) Consolidated(ctx context.Context, costCenters []string) ([]*Node, error) {
	if len(costCenters) == 0 {
		all, err := s.repo.ListCostCenters(ctx)
		if err != nil {
			return nil, fmt.Errorf("list cost centers: %w", err)
		}

		costCenters = all
	}

	trees := make([][]*Node, 0, len(costCenters))

	for _, cc := range costCenters {
		roots, err := s.repo.LoadBudgetTree(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cc, err)
		}

		trees = append(trees, roots)
	}

	roots, err := Consolidate(trees...)
	if err != nil {
		return nil, fmt.Errorf("consolidate: %w", err)
	}

	if len(roots) == 0 {
		return nil, ErrNotFound
	}

	return roots, nil
}
