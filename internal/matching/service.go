package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/costree/internal/progress"
	"github.com/MrJamesThe3rd/costree/internal/schema"
)

var ErrInvalidMapping = errors.New("pattern and budget code are required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the budget code of the longest pattern contained in the
	// description, or "" when nothing matches.
	FindMatch(ctx context.Context, description string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, budgetCode string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest looks up a budget code for a service description.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	return s.repo.FindMatch(ctx, schema.Normalize(description))
}

// Learn remembers that descriptions containing rawPattern belong to budgetCode.
func (s *Service) Learn(ctx context.Context, rawPattern, budgetCode string) error {
	pattern := schema.Normalize(rawPattern)
	code := strings.TrimSpace(budgetCode)

	if pattern == "" || code == "" {
		return ErrInvalidMapping
	}

	return s.repo.CreateMapping(ctx, pattern, code)
}

// Fill sets a suggested budget code on every item that has none. It returns
// how many items were filled.
func (s *Service) Fill(ctx context.Context, items []progress.Item) (int, error) {
	filled := 0

	for i := range items {
		if items[i].BudgetGroupCode != "" || items[i].ServiceDescription == "" {
			continue
		}

		code, err := s.Suggest(ctx, items[i].ServiceDescription)
		if err != nil {
			return filled, fmt.Errorf("suggest code: %w", err)
		}

		if code != "" {
			items[i].BudgetGroupCode = code
			filled++
		}
	}

	return filled, nil
}
