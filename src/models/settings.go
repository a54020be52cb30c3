package models

// MSettings is the restaurant-wide settings row. The backend keeps a single
// record; the snapshot is still a slice like every other kind.
type MSettings struct {
	ID             string  `json:"id"`
	RestaurantName string  `json:"restaurant_name"`
	Currency       string  `json:"currency"`
	TaxRate        float64 `json:"tax_rate"`
	OpeningTime    string  `json:"opening_time"`
	ClosingTime    string  `json:"closing_time"`
	KitchenHandles int     `json:"kitchen_handles"`
}
