package pricing

import (
	"math"
	"strconv"
	"strings"

	"bookline/internal/domain"
)

// For every 10 percentage points of stock depletion, the product discount
// loses 20% of its initial rate.
const (
	depletionStep     = 0.1
	reductionPerStep  = 0.2
	percentageDivisor = 100.0
)

// DynamicDiscountRate computes a product's current discount percentage from
// how depleted its stock is relative to its initial stock. Pure function of
// (quantity, initialQuantity, initialRate); returns 0 when initialQuantity
// is 0 and never goes below 0.
func DynamicDiscountRate(quantity, initialQuantity int, initialRate float64) float64 {
	if initialQuantity == 0 {
		return 0.0
	}

	depletion := float64(initialQuantity-quantity) / float64(initialQuantity)
	reductionFactor := reductionPerStep * (depletion / depletionStep)

	rate := initialRate * (1 - reductionFactor)
	return math.Max(0.0, rate)
}

// ProductDiscountRate computes the current discount rate for a product
// snapshot. It never trusts the stored CurrentDiscountRate field.
func ProductDiscountRate(p *domain.Product) float64 {
	return DynamicDiscountRate(p.Quantity, p.InitialQuantity, p.InitialDiscountRate)
}

// FinalUnitPrice applies the product discount to the base price, then the
// customer discount to the remainder, and rounds half-up to 2 decimal
// places. The order of application is fixed: the two discounts compound,
// they are not summed.
func FinalUnitPrice(basePrice, productDiscountPct, customerDiscountPct float64) float64 {
	price := basePrice

	if productDiscountPct > 0 {
		price -= price * (productDiscountPct / percentageDivisor)
	}

	if customerDiscountPct > 0 {
		price -= price * (customerDiscountPct / percentageDivisor)
	}

	return RoundHalfUp2(price)
}

// RoundHalfUp2 rounds a monetary value to 2 fractional digits, half-up.
// Rounding is done on the value's shortest decimal representation, not on
// the underlying binary float, so a midpoint like 9.665 rounds to 9.67
// even when its float64 encoding sits just below the midpoint.
func RoundHalfUp2(x float64) float64 {
	s := strconv.FormatFloat(x, 'f', -1, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(fracPart) <= 2 {
		return x
	}

	cents, err := strconv.ParseInt(intPart+fracPart[:2], 10, 64)
	if err != nil {
		// Magnitude beyond int64 cents; no monetary value gets here.
		return math.Floor(x*100+0.5) / 100
	}
	if fracPart[2] >= '5' {
		cents++
	}

	rounded := float64(cents) / 100
	if neg {
		rounded = -rounded
	}
	return rounded
}
