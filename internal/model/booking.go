package model

import "time"

const (
	BookingConfirmed = "confirmed"
	BookingCanceled  = "canceled"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Booking struct {
	ID            string    `json:"id"`
	FacilityID    string    `json:"facilityId"`
	UserID        string    `json:"userId,omitempty"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	PayableAmount float64   `json:"payableAmount"`
	IsBooked      string    `json:"isBooked"`
	PaymentStatus string    `json:"paymentStatus"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`

	// Populated on reads that join the related rows.
	Facility *Facility `json:"facility,omitempty"`
	User     *User     `json:"user,omitempty"`
}
