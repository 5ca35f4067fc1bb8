package model

import "time"

type Facility struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PricePerHour float64   `json:"pricePerHour"`
	Location     string    `json:"location"`
	ImageURL     string    `json:"image,omitempty"`
	IsDeleted    bool      `json:"isDeleted"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
