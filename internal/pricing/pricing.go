package pricing

import "errors"

// ErrNegativeAmount is returned when price or quantity is negative.
var ErrNegativeAmount = errors.New("price and quantity must be non-negative")

// ErrDiscountRange is returned when the discount percentage is outside [0, 100].
var ErrDiscountRange = errors.New("discount must be between 0 and 100")

// TotalPrice computes price * quantity with discountPercent applied as a
// percentage off the subtotal. The result is not rounded; presentation
// rounding is left to the caller. Zero quantity yields zero regardless of
// price or discount.
func TotalPrice(price float64, quantity int, discountPercent float64) (float64, error) {
	if price < 0 || quantity < 0 {
		return 0, ErrNegativeAmount
	}
	if discountPercent < 0 || discountPercent > 100 {
		return 0, ErrDiscountRange
	}
	return price * float64(quantity) * (1 - discountPercent/100), nil
}
