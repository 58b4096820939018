// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow handlers to distinguish
// between failure scenarios and map each one to the right HTTP status:
// ErrForbidden means the caller is not authorized to touch a resource
// owned by someone else, ErrConflict means an operation is blocked by
// existing dependent records (an overlapping booking, or deleting
// equipment with active bookings), and so on.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting records: a booking whose date range overlaps an active
// booking on the same equipment, or deleting equipment that still has
// pending or confirmed bookings. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEquipmentNotFound is returned when the referenced equipment does
// not exist. Handlers translate this into HTTP 404.
var ErrEquipmentNotFound = errors.New("equipment not found")

// ErrBookingNotFound is returned when the referenced booking does not
// exist. Handlers translate this into HTTP 404.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNotAvailable is returned when a booking is attempted on equipment
// whose availability flag is off. Handlers translate this into HTTP 400.
var ErrNotAvailable = errors.New("equipment not available")

// ErrInvalidDateRange is returned when a booking's end date is not
// strictly after its start date. Enforced again at persistence time
// regardless of handler validation.
var ErrInvalidDateRange = errors.New("end date must be after start date")

// ErrAmountMismatch is returned when the submitted total amount does
// not equal rental days times the equipment daily rate.
var ErrAmountMismatch = errors.New("total amount does not match rate")

// ErrInvalidTransition is returned when a status update would leave a
// terminal status or skip a step of the booking state machine.
var ErrInvalidTransition = errors.New("invalid status transition")
