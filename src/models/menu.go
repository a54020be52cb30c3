package models

// -----------------------------------------------------------------------------
// Menu catalogue: items, categories, portions.
// -----------------------------------------------------------------------------

type MMenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CategoryID  string  `json:"category_id"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Available   bool    `json:"available"`
}

// MCategory groups menu items and carries the expected preparation time
// used by the wait-time estimator.
type MCategory struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PrepTimeMinutes int    `json:"prep_time_minutes"`
	SortOrder       int    `json:"sort_order"`
}

// MPortionOption is a named serving size (e.g. half, full).
type MPortionOption struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// MItemPortionPrice is the price of one menu item in one portion size.
// Derived table on the backend; refetched together with portion options.
type MItemPortionPrice struct {
	MenuItemID string  `json:"menu_item_id"`
	PortionID  string  `json:"portion_id"`
	Price      float64 `json:"price"`
}
