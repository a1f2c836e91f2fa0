package arrival

import (
	"time"

	"salonbooking/internal/domain"
)

type CheckInRequest struct {
	BranchID   int64  `json:"branch_id" binding:"required"`
	BookingID  *int64 `json:"booking_id"`
	ClientName string `json:"client_name" binding:"required"`
}

// QueueEntry is one row of the live queue. WaitingSeconds is derived from the
// arrival timestamp at snapshot time, never stored.
type QueueEntry struct {
	ID             int64                `json:"id"`
	BookingID      *int64               `json:"booking_id,omitempty"`
	ClientName     string               `json:"client_name"`
	Status         domain.ArrivalStatus `json:"status"`
	Position       int                  `json:"position"`
	ArrivedAt      time.Time            `json:"arrived_at"`
	WaitingSeconds int64                `json:"waiting_seconds"`
}

type QueueSnapshot struct {
	BranchID    int64        `json:"branch_id"`
	Entries     []QueueEntry `json:"entries"`
	GeneratedAt time.Time    `json:"generated_at"`
}
