package cart

// Pricing rules applied to the cart subtotal. Shipping is a flat fee waived
// once the subtotal passes the free-shipping threshold; tax is a flat
// percentage of the subtotal.
const (
	ShippingFee           = 9.99
	FreeShippingThreshold = 100.0
	TaxRate               = 0.08
)

// Summary is the priced cart, derived from the subtotal on demand and never
// stored.
type Summary struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

// FreeShipping reports whether the shipping fee is waived.
func (s Summary) FreeShipping() bool {
	return s.Shipping == 0
}

// AmountToFreeShipping is how much more the subtotal needs to qualify for
// free shipping, 0 when it already does.
func (s Summary) AmountToFreeShipping() float64 {
	if s.Subtotal > FreeShippingThreshold {
		return 0
	}
	return FreeShippingThreshold - s.Subtotal
}

// Summarize prices a subtotal.
func Summarize(subtotal float64) Summary {
	shipping := ShippingFee
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}
	tax := subtotal * TaxRate
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
