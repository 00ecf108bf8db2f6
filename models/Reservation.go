package models

import (
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// AllStatuses lists every reservation status a client may submit.
var AllStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// statusTransitions is the allowed lifecycle. CANCELLED and COMPLETED are
// terminal. The original API let any status move to any other; that
// permissiveness was replaced with this explicit table.
var statusTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

func (s ReservationStatus) Valid() bool {
	return slices.Contains(AllStatuses, s)
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	return slices.Contains(statusTransitions[s], next)
}

// AllowedTransitions returns the reachable statuses from s.
func (s ReservationStatus) AllowedTransitions() []ReservationStatus {
	return statusTransitions[s]
}

// Reservation links a user to a destination for a date range. TotalPrice is a
// snapshot taken at booking time and is never recomputed, even if the
// destination's price changes later.
type Reservation struct {
	gorm.Model
	UserID          uint              `json:"userId" gorm:"not null;index"`
	User            User              `json:"user" gorm:"foreignKey:UserID"`
	DestinationID   uint              `json:"destinationId" gorm:"not null;index"`
	Destination     Destination       `json:"destination" gorm:"foreignKey:DestinationID"`
	StartDate       time.Time         `json:"startDate" gorm:"not null"`
	EndDate         time.Time         `json:"endDate" gorm:"not null"`
	Travelers       int               `json:"travelers" gorm:"not null"`
	TotalPrice      float64           `json:"totalPrice" gorm:"not null"`
	Status          ReservationStatus `json:"status" gorm:"type:varchar(20);default:PENDING;index"`
	SpecialRequests string            `json:"specialRequests"`
}
