package budget_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/costree/internal/budget"
)

func sampleTree(t *testing.T, cc string) []*budget.Node {
	t.Helper()

	ns := nodes(map[string]float64{"01.01": 1000, "01.02": 2000}, "01", "01.01", "01.02")
	for _, n := range ns {
		n.CostCenter = cc
		n.BudgetInitial = n.TotalValue
		n.BudgetCurrent = n.TotalValue
	}

	roots, err := budget.Build(ns)
	require.NoError(t, err)

	return roots
}

func TestService_Save(t *testing.T) {
	type testCase struct {
		name       string
		costCenter string
		setupMock  func(m *budget.MockRepository)
		wantErr    error
	}

	tests := []testCase{
		{
			name:       "Success",
			costCenter: "BLOCO A",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					SaveBudgetTree(gomock.Any(), gomock.Any(), "BLOCO A").
					DoAndReturn(func(_ context.Context, roots []*budget.Node, cc string) error {
						for _, n := range budget.Flatten(roots) {
							assert.Equal(t, cc, n.CostCenter)
						}

						return nil
					})
			},
		},
		{
			name:       "ReservedCostCenter",
			costCenter: "consolidated",
			wantErr:    budget.ErrReservedCostCenter,
		},
		{
			name:       "EmptyCostCenter",
			costCenter: "  ",
			wantErr:    budget.ErrReservedCostCenter,
		},
		{
			name:       "RepoError",
			costCenter: "BLOCO A",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					SaveBudgetTree(gomock.Any(), gomock.Any(), "BLOCO A").
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := budget.NewService(repo)
			err := svc.Save(context.Background(), tt.costCenter, sampleTree(t, ""))

			if tt.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tt.wantErr, budget.ErrReservedCostCenter) {
					assert.ErrorIs(t, err, budget.ErrReservedCostCenter)
				}

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Tree(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().LoadBudgetTree(gomock.Any(), "A").Return(sampleTree(t, "A"), nil)
	repo.EXPECT().LoadBudgetTree(gomock.Any(), "missing").Return(nil, nil)

	svc := budget.NewService(repo)

	roots, err := svc.Tree(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, 3000.0, roots[0].TotalValue)

	_, err = svc.Tree(context.Background(), "missing")
	assert.ErrorIs(t, err, budget.ErrNotFound)
}

func TestService_Consolidated(t *testing.T) {
	type testCase struct {
		name        string
		costCenters []string
		setupMock   func(m *budget.MockRepository)
		wantTotal   float64
		wantErr     bool
	}

	tests := []testCase{
		{
			name:        "ExplicitCostCenters",
			costCenters: []string{"A", "B"},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().LoadBudgetTree(gomock.Any(), "A").Return(sampleTree(t, "A"), nil)
				m.EXPECT().LoadBudgetTree(gomock.Any(), "B").Return(sampleTree(t, "B"), nil)
			},
			wantTotal: 6000,
		},
		{
			name: "AllCostCenters",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().ListCostCenters(gomock.Any()).Return([]string{"A", "B", "C"}, nil)
				m.EXPECT().LoadBudgetTree(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, cc string) ([]*budget.Node, error) {
						return sampleTree(t, cc), nil
					}).Times(3)
			},
			wantTotal: 9000,
		},
		{
			name:        "LoadError",
			costCenters: []string{"A"},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().LoadBudgetTree(gomock.Any(), "A").Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
		{
			name: "NothingStored",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().ListCostCenters(gomock.Any()).Return(nil, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := budget.NewService(repo)
			got, err := svc.Consolidated(context.Background(), tt.costCenters)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantTotal, got[0].TotalValue)
			assert.Equal(t, budget.Consolidated, got[0].CostCenter)
		})
	}
}
