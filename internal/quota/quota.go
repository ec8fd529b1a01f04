package quota

import (
	"math"
	"strconv"
)

// Converter maps between integer quota units and their decimal currency
// display form. Quota is the persisted value; currency never is.
type Converter struct {
	// PerUnit is the number of quota units worth one currency unit.
	PerUnit int
	// Decimals is the display precision of the currency form.
	Decimals int
}

// ToCurrency renders a quota value in currency units, rounded to the
// configured display precision.
func (c Converter) ToCurrency(q int) float64 {
	if c.PerUnit == 0 {
		return 0
	}
	scale := math.Pow10(c.Decimals)
	return math.Round(float64(q)/float64(c.PerUnit)*scale) / scale
}

// ToQuota converts a currency amount back to the nearest integer quota unit.
// Non-finite input reports ok=false so the caller keeps the prior quota.
func (c Converter) ToQuota(amount float64) (q int, ok bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return int(math.Round(amount * float64(c.PerUnit))), true
}

// FormatCurrency renders a quota value as a currency string, e.g. "1.25".
func (c Converter) FormatCurrency(q int) string {
	return strconv.FormatFloat(c.ToCurrency(q), 'f', c.Decimals, 64)
}
