package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/costree/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func saveLockKey(costCenter string) int64 {
	h := fnv.New64a()
	h.Write([]byte("budget_nodes"))
	h.Write([]byte{0})
	h.Write([]byte(costCenter))

	return int64(h.Sum64())
}

func amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// SaveBudgetTree replaces the stored tree of a cost center inside a single
// database transaction. Concurrent saves of the same cost center serialize on
// an advisory lock.
func (s *Store) SaveBudgetTree(ctx context.Context, roots []*budget.Node, costCenter string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", saveLockKey(costCenter)); err != nil {
		return fmt.Errorf("acquiring save lock: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM budget_nodes WHERE cost_center = $1`, costCenter); err != nil {
		return fmt.Errorf("deleting previous tree: %w", err)
	}

	query := `
		INSERT INTO budget_nodes (
			id, cost_center, code, description, level, type, item_type, resource_kind, unit,
			quantity, unit_price, total_value, budget_initial, budget_current,
			origin_sheet, parent_id, position, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
	`

	for i, n := range budget.Flatten(roots) {
		var parentID sql.NullString
		if n.ParentID != "" {
			parentID = sql.NullString{String: n.ParentID, Valid: true}
		}

		_, err := dbTx.ExecContext(ctx, query,
			n.ID,
			costCenter,
			n.Code,
			n.Description,
			n.Level,
			n.Type,
			n.ItemType,
			n.ResourceKind,
			n.Unit,
			decimal.NewFromFloat(n.Quantity).Round(4),
			amount(n.UnitPrice),
			amount(n.TotalValue),
			amount(n.BudgetInitial),
			amount(n.BudgetCurrent),
			n.OriginSheet,
			parentID,
			i,
		)
		if err != nil {
			return fmt.Errorf("inserting node %s: %w", n.Code, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// LoadBudgetTree reads the stored nodes of a cost center and relinks them.
// An unknown cost center yields an empty forest.
func (s *Store) LoadBudgetTree(ctx context.Context, costCenter string) ([]*budget.Node, error) {
	query := `
		SELECT id, cost_center, code, description, level, type, item_type, resource_kind, unit,
			quantity, unit_price, total_value, budget_initial, budget_current, origin_sheet
		FROM budget_nodes
		WHERE cost_center = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, costCenter)
	if err != nil {
		return nil, fmt.Errorf("loading budget tree: %w", err)
	}
	defer rows.Close()

	var nodes []*budget.Node

	for rows.Next() {
		var n budget.Node

		var nodeType, itemType, kind string

		var qty, price, total, initial, current decimal.Decimal

		if err := rows.Scan(
			&n.ID, &n.CostCenter, &n.Code, &n.Description, &n.Level, &nodeType, &itemType, &kind, &n.Unit,
			&qty, &price, &total, &initial, &current, &n.OriginSheet,
		); err != nil {
			return nil, fmt.Errorf("scanning budget node: %w", err)
		}

		n.Type = budget.NodeType(nodeType)
		n.ItemType = budget.ItemType(itemType)
		n.ResourceKind = budget.ResourceKind(kind)
		n.Quantity = qty.InexactFloat64()
		n.UnitPrice = price.InexactFloat64()
		n.TotalValue = total.InexactFloat64()
		n.BudgetInitial = initial.InexactFloat64()
		n.BudgetCurrent = current.InexactFloat64()

		nodes = append(nodes, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget nodes: %w", err)
	}

	roots, err := budget.Build(nodes)
	if err != nil {
		return nil, fmt.Errorf("rebuilding budget tree: %w", err)
	}

	return roots, nil
}

func (s *Store) ListCostCenters(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT cost_center FROM budget_nodes ORDER BY cost_center`)
	if err != nil {
		return nil, fmt.Errorf("listing cost centers: %w", err)
	}
	defer rows.Close()

	var out []string

	for rows.Next() {
		var cc string
		if err := rows.Scan(&cc); err != nil {
			return nil, fmt.Errorf("scanning cost center: %w", err)
		}

		out = append(out, cc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cost centers: %w", err)
	}

	return out, nil
}
