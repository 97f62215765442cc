// Package valuation prices produce offered as loan collateral.
package valuation

import "agripledge-backend/pkg/money"

// ComputeCollateralValue converts a produce quantity and unit market price
// into a collateral value. Non-positive inputs value to zero; there is no
// error path.
func ComputeCollateralValue(quantityKg, pricePerKg float64) float64 {
	if quantityKg <= 0 || pricePerKg <= 0 {
		return 0
	}
	return money.Mul2(quantityKg, pricePerKg)
}
