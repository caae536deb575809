package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
)

// Statuses lists every valid order status.
var Statuses = []Status{
	StatusWaiting, StatusProcessing, StatusShipped, StatusDelivered, StatusCanceled,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// DeliveryMethod selects between home delivery and pickup at a center.
type DeliveryMethod string

const (
	DeliveryHome   DeliveryMethod = "home"
	DeliveryCenter DeliveryMethod = "center"
)

var (
	// ErrInvalidStatusTransition is returned when a requested status change
	// is not allowed by the transition table.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrInvalidStatusNumber is returned when a numeric status code is
	// outside the recognized 1–4 range.
	ErrInvalidStatusNumber = errors.New("invalid status number")
)

// transitions is the allow-list of status changes. Anything absent here is
// rejected. canceled → waiting is the only reactivation path.
var transitions = map[Status][]Status{
	StatusWaiting:    {StatusProcessing, StatusCanceled},
	StatusProcessing: {StatusShipped, StatusCanceled},
	StatusShipped:    {StatusDelivered, StatusCanceled},
	StatusDelivered:  {StatusCanceled},
	StatusCanceled:   {StatusWaiting},
}

// CanTransition reports whether from → to is an allowed status change.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidStatusTransition (annotated with the
// offending pair) unless from → to is allowed.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidStatusTransition, from, to)
	}
	return nil
}

// StatusFromNumber maps the dashboard's numeric status codes onto the
// canonical enum. The wire contract is 1=waiting, 2=delivering, 3=delivered,
// 4=canceled; "delivering" is the legacy label for what the state machine
// calls processing.
func StatusFromNumber(n int) (Status, error) {
	switch n {
	case 1:
		return StatusWaiting, nil
	case 2:
		return StatusProcessing, nil
	case 3:
		return StatusDelivered, nil
	case 4:
		return StatusCanceled, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidStatusNumber, n)
	}
}

// Order references exactly one product variant by (color, size) and carries
// the customer's delivery details. Stock adjustments are driven by status
// changes; see services.OrderService.
type Order struct {
	gorm.Model
	ProductID   uint           `gorm:"not null;index" json:"product_id"`
	Product     *Product       `json:"product,omitempty"`
	Color       string         `gorm:"size:50;not null"  json:"color"`
	Size        string         `gorm:"size:50;not null"  json:"size"`
	FullName    string         `gorm:"size:255;not null" json:"full_name"`
	PhoneNumber string         `gorm:"size:50;not null"  json:"phone_number"`
	State       string         `gorm:"size:100;not null" json:"state"`
	Region      string         `gorm:"size:255"          json:"region"`
	Delivery    DeliveryMethod `gorm:"size:20;not null;default:home" json:"delivery"`
	Status      Status         `gorm:"size:20;not null;default:waiting;index" json:"status"`
}
