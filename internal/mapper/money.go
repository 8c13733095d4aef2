package mapper

import (
	"math"

	"github.com/marketbridge/marketbridge/internal/model"
)

// MajorUnits converts a cent-precision amount into major currency units,
// honoring the amount's fraction digits (1300 cents, 2 digits -> 13.00).
func MajorUnits(m model.TypedMoney) float64 {
	return float64(m.CentAmount) / math.Pow10(int(m.FractionDigits))
}
