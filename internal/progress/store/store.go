package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/costree/internal/progress"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func (s *Store) ListItems(ctx context.Context, costCenter string) ([]progress.Item, error) {
	query := `
		SELECT id, cost_center, service_description, accumulated_value, budget_group_code, date,
			is_indirect_cost, original_budget_id, origin_sheet
		FROM progress_items
		WHERE cost_center = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, costCenter)
	if err != nil {
		return nil, fmt.Errorf("listing progress items: %w", err)
	}
	defer rows.Close()

	var items []progress.Item

	for rows.Next() {
		var it progress.Item

		var value decimal.Decimal

		var code, budgetID sql.NullString

		var date sql.NullTime

		if err := rows.Scan(
			&it.ID, &it.CostCenter, &it.ServiceDescription, &value, &code, &date,
			&it.IsIndirectCost, &budgetID, &it.OriginSheet,
		); err != nil {
			return nil, fmt.Errorf("scanning progress item: %w", err)
		}

		it.AccumulatedValue = value.InexactFloat64()
		it.BudgetGroupCode = code.String
		it.OriginalBudgetID = budgetID.String
		it.Date = date.Time

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress items: %w", err)
	}

	return items, nil
}

// SaveItems swaps the stored items of a cost center inside one transaction.
func (s *Store) SaveItems(ctx context.Context, costCenter string, items []progress.Item) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM progress_items WHERE cost_center = $1`, costCenter); err != nil {
		return fmt.Errorf("deleting previous items: %w", err)
	}

	query := `
		INSERT INTO progress_items (
			id, cost_center, service_description, accumulated_value, budget_group_code, date,
			is_indirect_cost, original_budget_id, origin_sheet, position, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`

	for i, it := range items {
		_, err := dbTx.ExecContext(ctx, query,
			it.ID,
			costCenter,
			it.ServiceDescription,
			decimal.NewFromFloat(it.AccumulatedValue).Round(2),
			nullString(it.BudgetGroupCode),
			nullDate(it.Date),
			it.IsIndirectCost,
			nullString(it.OriginalBudgetID),
			it.OriginSheet,
			i,
		)
		if err != nil {
			return fmt.Errorf("inserting progress item: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
