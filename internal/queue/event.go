// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds carried on the booking.lifecycle queue.
const (
	KindBookingRequested     = "booking.requested"
	KindBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published whenever a booking is created or changes
// status. It carries enough context for downstream consumers to log or
// notify without querying the primary database. For a freshly created
// booking, Kind is KindBookingRequested and OldStatus is empty.
type BookingEvent struct {
	Kind             string `json:"kind"`
	BookingID        uint64 `json:"booking_id"`
	EquipmentID      uint64 `json:"equipment_id"`
	EquipmentName    string `json:"equipment_name"`
	OwnerID          uint64 `json:"owner_id"`
	RenterID         uint64 `json:"renter_id"`
	RenterName       string `json:"renter_name"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	TotalAmountCents uint32 `json:"total_amount_cents"`
	OldStatus        string `json:"old_status,omitempty"`
	NewStatus        string `json:"new_status"`
	OccurredAt       string `json:"occurred_at"`
}
