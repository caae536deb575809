package models

// States lists the administrative regions an order may be delivered to.
// Order validation checks membership; the region free-text field is not
// constrained.
var States = []string{
	"Ariana", "Béja", "Ben Arous", "Bizerte", "Gabès", "Gafsa",
	"Jendouba", "Kairouan", "Kasserine", "Kébili", "Le Kef", "Mahdia",
	"La Manouba", "Médenine", "Monastir", "Nabeul", "Sfax", "Sidi Bouzid",
	"Siliana", "Sousse", "Tataouine", "Tozeur", "Tunis", "Zaghouan",
}

// ValidState reports whether name is a recognized administrative region.
func ValidState(name string) bool {
	for _, s := range States {
		if s == name {
			return true
		}
	}
	return false
}

// DeliveryPrice holds the delivery fee for one state, per method.
type DeliveryPrice struct {
	State  string  `json:"state"`
	Home   float64 `json:"home"`
	Center float64 `json:"center"`
}

// deliveryPrices is the static fee table. Greater Tunis ships cheaper;
// the south costs more for home delivery.
var deliveryPrices = map[string]DeliveryPrice{
	"Tunis":      {State: "Tunis", Home: 5, Center: 3},
	"Ariana":     {State: "Ariana", Home: 5, Center: 3},
	"Ben Arous":  {State: "Ben Arous", Home: 5, Center: 3},
	"La Manouba": {State: "La Manouba", Home: 5, Center: 3},
	"Tataouine":  {State: "Tataouine", Home: 10, Center: 7},
	"Médenine":   {State: "Médenine", Home: 10, Center: 7},
	"Tozeur":     {State: "Tozeur", Home: 10, Center: 7},
	"Kébili":     {State: "Kébili", Home: 10, Center: 7},
}

// defaultDeliveryPrice applies to any state without an explicit row.
var defaultDeliveryPrice = DeliveryPrice{Home: 7, Center: 5}

// PriceFor returns the delivery fee table entry for a state.
func PriceFor(state string) DeliveryPrice {
	if p, ok := deliveryPrices[state]; ok {
		return p
	}
	p := defaultDeliveryPrice
	p.State = state
	return p
}

// AllDeliveryPrices returns one entry per valid state, falling back to the
// default fee where no explicit row exists.
func AllDeliveryPrices() []DeliveryPrice {
	out := make([]DeliveryPrice, 0, len(States))
	for _, s := range States {
		out = append(out, PriceFor(s))
	}
	return out
}
