package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/costree/internal/database/dbtest"
	"github.com/MrJamesThe3rd/costree/internal/progress"
	"github.com/MrJamesThe3rd/costree/internal/progress/store"
)

func TestStore_SaveItems(t *testing.T) {
	s := store.New(dbtest.Open(t, "progress_items"))
	ctx := context.Background()

	items := []progress.Item{
		{
			ID:                 uuid.New(),
			ServiceDescription: "Concreto",
			AccumulatedValue:   800.456,
			BudgetGroupCode:    "01.01",
			Date:               time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			OriginSheet:        "RDO",
		},
		{
			ID:                 uuid.New(),
			ServiceDescription: "Administração",
			AccumulatedValue:   120,
			IsIndirectCost:     true,
		},
	}

	require.NoError(t, s.SaveItems(ctx, "torre-a", items))

	// the same merged items may be kept under another cost center
	require.NoError(t, s.SaveItems(ctx, "torre-b", items))

	got, err := s.ListItems(ctx, "torre-a")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, "torre-a", got[0].CostCenter)
	assert.Equal(t, 800.46, got[0].AccumulatedValue)
	assert.Equal(t, "01.01", got[0].BudgetGroupCode)
	assert.True(t, got[0].Date.Equal(items[0].Date))
	assert.Empty(t, got[1].BudgetGroupCode)
	assert.True(t, got[1].IsIndirectCost)
	assert.True(t, got[1].Date.IsZero())

	// saving again replaces only the cost center being saved
	require.NoError(t, s.SaveItems(ctx, "torre-a", items[:1]))

	got, err = s.ListItems(ctx, "torre-a")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.ListItems(ctx, "torre-b")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_ListItems_Unknown(t *testing.T) {
	s := store.New(dbtest.Open(t, "progress_items"))

	got, err := s.ListItems(context.Background(), "nenhum")
	require.NoError(t, err)
	assert.Empty(t, got)
}
