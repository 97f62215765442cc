package money

import "github.com/shopspring/decimal"

// Monetary amounts are float64 at the storage boundary (DECIMAL(18,2) columns)
// but every derivation goes through decimal so repeated arithmetic cannot
// accumulate binary-float drift before the 2-dp round.

// Round2 rounds an amount to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Mul2 multiplies two amounts and rounds the product to 2 decimal places.
func Mul2(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}

// Interest computes simple pro-rata interest over a term:
// principal * annualRate * termDays/365, rounded to 2 decimal places.
func Interest(principal, annualRate float64, termDays int) float64 {
	p := decimal.NewFromFloat(principal)
	r := decimal.NewFromFloat(annualRate)
	t := decimal.NewFromInt(int64(termDays)).Div(decimal.NewFromInt(365))
	f, _ := p.Mul(r).Mul(t).Round(2).Float64()
	return f
}

// Sum adds amounts and rounds the total to 2 decimal places.
func Sum(vs ...float64) float64 {
	total := decimal.Zero
	for _, v := range vs {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// SubFloor subtracts b from a, rounds to 2 decimal places, and floors at zero.
func SubFloor(a, b float64) float64 {
	d := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2)
	if d.IsNegative() {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// Ratio returns a/b, or 0 when b is not positive.
func Ratio(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	f, _ := decimal.NewFromFloat(a).Div(decimal.NewFromFloat(b)).Float64()
	return f
}
