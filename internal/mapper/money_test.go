package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketbridge/marketbridge/internal/model"
)

func TestMajorUnits(t *testing.T) {
	tests := []struct {
		name  string
		money model.TypedMoney
		want  float64
	}{
		{
			name:  "two fraction digits",
			money: model.TypedMoney{CurrencyCode: "USD", CentAmount: 1300, FractionDigits: 2},
			want:  13.00,
		},
		{
			name:  "odd cents",
			money: model.TypedMoney{CurrencyCode: "EUR", CentAmount: 1999, FractionDigits: 2},
			want:  19.99,
		},
		{
			name:  "zero fraction digits keeps the amount as-is",
			money: model.TypedMoney{CurrencyCode: "JPY", CentAmount: 1300, FractionDigits: 0},
			want:  1300,
		},
		{
			name:  "three fraction digits",
			money: model.TypedMoney{CurrencyCode: "KWD", CentAmount: 12345, FractionDigits: 3},
			want:  12.345,
		},
		{
			name:  "zero amount",
			money: model.TypedMoney{CurrencyCode: "USD", CentAmount: 0, FractionDigits: 2},
			want:  0,
		},
		{
			name:  "negative amount",
			money: model.TypedMoney{CurrencyCode: "USD", CentAmount: -500, FractionDigits: 2},
			want:  -5.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MajorUnits(tt.money), 1e-9)
		})
	}
}
