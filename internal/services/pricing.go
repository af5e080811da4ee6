package services

import (
	"math"

	"github.com/shopfront/api/internal/domain"
)

// DiscountedUnitPrice returns the effective unit price after applying the
// percentage discount. A nil discount means the product carries none; an
// explicit zero is honoured as a 0% discount.
func DiscountedUnitPrice(unitPrice float64, discountPercent *float64) float64 {
	if discountPercent == nil {
		return unitPrice
	}
	return unitPrice * (1 - *discountPercent/100)
}

// LineTotal returns the effective price of a cart line.
func LineTotal(line domain.CartLineItem) float64 {
	return DiscountedUnitPrice(line.UnitPrice, line.DiscountPercent) * float64(line.Quantity)
}

// CartTotal sums the effective line totals without rounding. Rounding is
// applied once at presentation time.
func CartTotal(lines []domain.CartLineItem) float64 {
	var total float64
	for _, line := range lines {
		total += LineTotal(line)
	}
	return total
}

// CartItemCount sums the quantities across all lines.
func CartItemCount(lines []domain.CartLineItem) int {
	var count int
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

// RoundPrice rounds a price to two decimal places, half away from zero.
func RoundPrice(value float64) float64 {
	return math.Round(value*100) / 100
}
