package orders

// Unit prices in COP.
const (
	PriceMaxiVaso = 10000
	PriceBolsa    = 5000
)

func Subtotal(maxiVasos, bolsas int) int {
	return maxiVasos*PriceMaxiVaso + bolsas*PriceBolsa
}
