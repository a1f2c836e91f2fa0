package domain

import "time"

type ArrivalStatus string

const (
	ArrivalArrived   ArrivalStatus = "arrived"
	ArrivalInService ArrivalStatus = "in_service"
	ArrivalCompleted ArrivalStatus = "completed"
)

func (s ArrivalStatus) Terminal() bool { return s == ArrivalCompleted }

// Arrival records a client physically present at a branch. BookingID is nil
// for walk-ins; a walk-in can be served to completion without a booking.
type Arrival struct {
	ID         int64         `json:"id"`
	BranchID   int64         `json:"branch_id" validate:"required"`
	BookingID  *int64        `json:"booking_id,omitempty"`
	ClientName string        `json:"client_name" validate:"required"`
	Status     ArrivalStatus `json:"status"`
	ArrivedAt  time.Time     `json:"arrived_at"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}
