package model

type Membership struct {
	ID           uint64   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency,omitempty"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features,omitempty"`
}
