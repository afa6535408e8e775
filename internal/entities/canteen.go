package entities

// CanteenBalance is one wallet of a canteen account (ARD, Turboself).
type CanteenBalance struct {
	AccountLocalID string  `json:"account_local_id"`
	Label          string  `json:"label"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	RemainingMeals *int    `json:"remaining_meals,omitempty"`
}
