// Package currency provides the currency normalization capability used
// when mapping monetary amounts onto marketing events.
package currency

// Converter converts an amount in major units of the given ISO currency
// into the store's reporting currency. Implementations must be pure.
type Converter interface {
	Convert(amount float64, currencyCode string) float64
}

// Identity performs no conversion. It is the default when multi-currency
// normalization is not configured.
type Identity struct{}

// Convert returns the amount unchanged.
func (Identity) Convert(amount float64, _ string) float64 {
	return amount
}
