package money_test

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/costree/internal/money"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{name: "decimal comma with thousands", in: "1.234,56", want: 1234.56},
		{name: "decimal point with thousands", in: "1,234.56", want: 1234.56},
		{name: "dots only as thousands", in: "43.000.000", want: 43000000},
		{name: "empty", in: "", want: 0},
		{name: "blank", in: "   ", want: 0},
		{name: "nil", in: nil, want: 0},
		{name: "int", in: 1500, want: 1500},
		{name: "float", in: 12.5, want: 12.5},
		{name: "decimal value", in: decimal.RequireFromString("99.90"), want: 99.9},
		{name: "plain integer string", in: "2000", want: 2000},
		{name: "currency prefix", in: "R$ 1.000,00", want: 1000},
		{name: "dollar prefix", in: "$1,000.25", want: 1000.25},
		{name: "negative comma decimal", in: "-588,74", want: -588.74},
		{name: "comma only decimal", in: "10,5", want: 10.5},
		{name: "single dot decimal", in: "1234.5", want: 1234.5},
		{name: "raw scientific", in: "1.5E+7", want: 15000000},
		{name: "commas only as thousands", in: "1,234,567", want: 1234567},
		{name: "negative commas as thousands", in: "-2,500,000", want: -2500000},
		{name: "overflowing exponent", in: "1e400", want: 0},
		{name: "overflowing digits", in: strings.Repeat("9", 400), want: 0},
		{name: "overflowing decimal value", in: decimal.RequireFromString("1e400"), want: 0},
		{name: "infinite float", in: math.Inf(1), want: 0},
		{name: "garbage", in: "abc", want: 0},
		{name: "text with digits", in: "12abc", want: 0},
		{name: "nan float", in: math.NaN(), want: 0},
		{name: "unsupported type", in: struct{}{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, money.Parse(tt.in), 1e-9)
		})
	}
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 0.3, money.Add(0.1, 0.2))
	assert.Equal(t, 10.01, money.Round2(10.005))
	assert.Equal(t, 6.0, money.Sum(1, 2, 3))
	assert.Equal(t, 0.0, money.Sum())
	assert.Equal(t, 100.0, money.Scale(10, 10))
	assert.Equal(t, 33.33, money.Scale(100, 1.0/3))
}

func TestArithmetic_NonFinite(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Zero(t, money.Round2(math.Inf(1)))
		assert.Equal(t, 2.0, money.Add(math.NaN(), 2))
		assert.Equal(t, 3.0, money.Sum(1, math.Inf(-1), 2))
		assert.Zero(t, money.Scale(10, math.Inf(1)))
		assert.Zero(t, money.Scale(1e300, 1e300))
	})
}
