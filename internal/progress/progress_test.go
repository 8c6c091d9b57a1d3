package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/costree/internal/budget"
	"github.com/MrJamesThe3rd/costree/internal/progress"
	"github.com/MrJamesThe3rd/costree/internal/reconcile"
	"github.com/MrJamesThe3rd/costree/internal/schema"
	"github.com/MrJamesThe3rd/costree/internal/workbook"
)

func item(code, desc string, value float64) progress.Item {
	return progress.Item{ID: uuid.New(), BudgetGroupCode: code, ServiceDescription: desc, AccumulatedValue: value}
}

func TestDedupe(t *testing.T) {
	type testCase struct {
		name       string
		items      []progress.Item
		wantValues []float64
	}

	tests := []testCase{
		{
			name:       "max accumulated value wins",
			items:      []progress.Item{item("01.01", "CONCRETO", 50), item("01.01", "CONCRETO", 80)},
			wantValues: []float64{80},
		},
		{
			name:       "earlier larger value survives a later snapshot",
			items:      []progress.Item{item("01.01", "CONCRETO", 90), item("01.01", "CONCRETO", 80)},
			wantValues: []float64{90},
		},
		{
			name:       "items without code are never merged",
			items:      []progress.Item{item("", "LIMPEZA", 10), item("", "LIMPEZA", 20)},
			wantValues: []float64{10, 20},
		},
		{
			name: "first seen order is kept",
			items: []progress.Item{
				item("02", "PINTURA", 5), item("01", "ALVENARIA", 7), item("02", "PINTURA", 6),
			},
			wantValues: []float64{6, 7},
		},
		{
			name:       "same code different description",
			items:      []progress.Item{item("01", "A", 1), item("01", "B", 2)},
			wantValues: []float64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progress.Dedupe(tt.items)

			values := make([]float64, len(got))
			for i, it := range got {
				values[i] = it.AccumulatedValue
			}

			assert.Equal(t, tt.wantValues, values)
		})
	}
}

func TestDedupe_TieKeepsFirst(t *testing.T) {
	first := item("01", "X", 10)
	got := progress.Dedupe([]progress.Item{first, item("01", "X", 10)})

	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
}

func TestCorrect(t *testing.T) {
	items := []progress.Item{item("01", "A", 30), item("02", "B", 70)}

	opts := reconcile.DefaultOptions()
	opts.Threshold = 0

	got, c := progress.Correct(items, reconcile.Finding{Value: 200}, opts)

	assert.True(t, c.Applied)
	assert.Equal(t, 2.0, c.Ratio)
	assert.Equal(t, 60.0, got[0].AccumulatedValue)
	assert.Equal(t, 140.0, got[1].AccumulatedValue)
	assert.Equal(t, 30.0, items[0].AccumulatedValue)

	same, c := progress.Correct(items, reconcile.Finding{Value: 100.5}, opts)
	assert.False(t, c.Applied)
	assert.Equal(t, items, same)
}

func TestLink(t *testing.T) {
	roots, err := budget.Build([]*budget.Node{
		{ID: "n1", Code: "01"},
		{ID: "n2", Code: "01.01", TotalValue: 10},
	})
	require.NoError(t, err)

	got := progress.Link([]progress.Item{
		item("01.01", "exact", 1),
		item(" 01 ", "trimmed", 1),
		item("09", "unknown", 1),
		item("", "no code", 1),
	}, roots)

	assert.Equal(t, "n2", got[0].OriginalBudgetID)
	assert.Equal(t, "n1", got[1].OriginalBudgetID)
	assert.Empty(t, got[2].OriginalBudgetID)
	assert.Empty(t, got[3].OriginalBudgetID)
}

func TestItems(t *testing.T) {
	sheet := workbook.Sheet{
		Name: "RDO Março",
		Rows: [][]string{
			{"Data", "Código", "Serviço", "Classificação", "Valor acumulado"},
			{"45000", "01.01", "Concreto", "Direto", "1.500,00"},
			{"16/03/2023", "01.02", "Administração local", "", "200"},
			{"", "", "", "", ""},
			{"", "", "TOTAL REALIZADO", "", "1700"},
			{"2023-03-17", "", "Limpeza", "Indireto", "50"},
		},
	}

	h := schema.Header{Row: 0, Columns: map[schema.Role]int{
		schema.RoleDate:        0,
		schema.RoleCode:        1,
		schema.RoleDescription: 2,
		schema.RoleTag:         3,
		schema.RoleValue:       4,
	}}

	got := progress.Items(sheet, h, progress.DefaultItemOptions())
	require.Len(t, got, 3)

	assert.Equal(t, "01.01", got[0].BudgetGroupCode)
	assert.Equal(t, 1500.0, got[0].AccumulatedValue)
	assert.Equal(t, "2023-03-15", got[0].Date.Format(time.DateOnly))
	assert.False(t, got[0].IsIndirectCost)
	assert.Equal(t, "RDO Março", got[0].OriginSheet)
	assert.Equal(t, 2, got[0].SourceRow)

	assert.True(t, got[1].IsIndirectCost)
	assert.Equal(t, "2023-03-16", got[1].Date.Format(time.DateOnly))

	assert.Equal(t, "Limpeza", got[2].ServiceDescription)
	assert.True(t, got[2].IsIndirectCost)
	assert.NotEqual(t, uuid.Nil, got[2].ID)
	assert.NotEqual(t, got[0].ID, got[2].ID)
}

func TestParseDate(t *testing.T) {
	assert.True(t, progress.ParseDate("").IsZero())
	assert.True(t, progress.ParseDate("soon").IsZero())
	assert.Equal(t, "2024-02-01", progress.ParseDate("01/02/2024").Format(time.DateOnly))
	assert.Equal(t, "2024-05-01", progress.ParseDate("05/2024").Format(time.DateOnly))
}

func TestService_Merge(t *testing.T) {
	existing := []progress.Item{item("01", "CONCRETO", 50), item("02", "ACO", 10)}

	type testCase struct {
		name      string
		setupMock func(m *progress.MockRepository)
		wantVals  []float64
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *progress.MockRepository) {
				m.EXPECT().ListItems(gomock.Any(), "A").Return(existing, nil)
				m.EXPECT().
					SaveItems(gomock.Any(), "A", gomock.Len(3)).
					Return(nil)
			},
			wantVals: []float64{80, 10, 5},
		},
		{
			name: "ListError",
			setupMock: func(m *progress.MockRepository) {
				m.EXPECT().ListItems(gomock.Any(), "A").Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
		{
			name: "SaveError",
			setupMock: func(m *progress.MockRepository) {
				m.EXPECT().ListItems(gomock.Any(), "A").Return(nil, nil)
				m.EXPECT().SaveItems(gomock.Any(), "A", gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := progress.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := progress.NewService(repo)
			got, err := svc.Merge(context.Background(), "A", []progress.Item{
				item("01", "CONCRETO", 80),
				item("03", "PINTURA", 5),
			})

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			vals := make([]float64, len(got))
			for i, it := range got {
				vals[i] = it.AccumulatedValue
				assert.Equal(t, "A", it.CostCenter)
			}

			assert.Equal(t, tt.wantVals, vals)
		})
	}
}
