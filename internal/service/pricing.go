package service

import (
	"math"

	"github.com/rvworks/servicedesk/internal/model"
)

// RoundCurrency rounds to two decimal places, half away from zero. Part
// prices are rounded once at snapshot time so stored line items carry exact
// cent values.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// ApplyMarkup returns the customer-facing unit price for a catalog part.
// markupPercent is the dealership-wide parts markup, e.g. 12 for 12%.
func ApplyMarkup(basePrice, markupPercent float64) float64 {
	return RoundCurrency(basePrice * (1 + markupPercent/100))
}

// ComputeTotal derives the work order estimate from its part lines and
// labor. Part unit prices already include markup.
func ComputeTotal(parts []model.WorkOrderPart, laborHours, laborRate float64) float64 {
	total := laborHours * laborRate
	for _, p := range parts {
		total += p.UnitPrice * float64(p.Quantity)
	}
	return RoundCurrency(total)
}
