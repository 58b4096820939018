package model

import (
	"strings"
	"time"
)

// Booking status values as stored in the bookings.status column.
// A booking starts out pending; the state machine below governs every
// later move. Completed and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking records a renter's reservation of one equipment item for a
// date range, as stored in the `bookings` table.
//
// Fields:
//  ID               - primary key identifier.
//  EquipmentID      - equipment being booked.
//  RenterID         - user who made the booking.
//  StartDate        - first day of the rental.
//  EndDate          - last day of the rental; strictly after StartDate.
//  TotalAmountCents - rental days times the equipment daily rate.
//  Status           - one of the four status constants above.
//  CreatedAt        - creation timestamp.
//  UpdatedAt        - last update timestamp.
type Booking struct {
	ID               uint64    // bookings.id
	EquipmentID      uint64    // bookings.equipment_id
	RenterID         uint64    // bookings.renter_id
	StartDate        time.Time // bookings.start_date
	EndDate          time.Time // bookings.end_date
	TotalAmountCents uint32    // bookings.total_amount_cents
	Status           string    // bookings.status
	CreatedAt        time.Time // bookings.created_at
	UpdatedAt        time.Time // bookings.updated_at
}

// ParseStatus normalizes a client-supplied status string and reports
// whether it names one of the four known statuses.
func ParseStatus(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return s, true
	}
	return "", false
}

// IsActive reports whether a status counts toward the overlap and
// deletion guards. Only pending and confirmed bookings block a date
// range or an equipment delete.
func IsActive(status string) bool {
	return status == StatusPending || status == StatusConfirmed
}

// IsTerminal reports whether no further transition is permitted out of
// the given status.
func IsTerminal(status string) bool {
	return status == StatusCancelled || status == StatusCompleted
}

// CanTransition reports whether a booking may move from one status to
// another. The allowed moves are:
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
//
// Terminal statuses admit no outgoing transition, and a no-op
// transition to the current status is rejected as well.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// RentalDays returns the number of chargeable days between start and
// end. A range of [June 1, June 3] is two days. Returns zero when the
// range is empty or inverted; callers must reject those ranges.
func RentalDays(start, end time.Time) int {
	d := int(end.Sub(start).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// RentalAmountCents computes the total charge for a date range at the
// given daily rate: RentalDays(start, end) * dailyRateCents.
func RentalAmountCents(start, end time.Time, dailyRateCents uint32) uint32 {
	return uint32(RentalDays(start, end)) * dailyRateCents
}

// Overlaps reports whether two date intervals share at least one day.
// Boundaries are inclusive on both sides: a booking ending June 3 and
// one starting June 3 conflict. This mirrors the SQL predicate used by
// the booking repository (start <= otherEnd AND end >= otherStart).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
