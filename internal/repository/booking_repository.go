package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fasalmitra/equipment-rental/internal/model"
)

// BookingRepo owns the booking lifecycle: conflict-checked creation,
// role-aware listing and guarded status transitions. Creation is the
// one operation with a real concurrency hazard (two renters racing for
// the same dates), so the availability check, the overlap check and the
// insert all run in a single transaction that first locks the equipment
// row with SELECT ... FOR UPDATE. That lock serializes concurrent
// creates per equipment item and closes the check-then-insert window.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingDetail is a booking joined with equipment and renter
// summaries, the shape returned by listing and detail endpoints. The
// equipment owner ID is included so handlers can decide what the
// caller may see or do without a second query.
type BookingDetail struct {
	ID               uint64 `json:"id"`
	EquipmentID      uint64 `json:"equipment_id"`
	EquipmentName    string `json:"equipment_name"`
	Category         string `json:"category"`
	Location         string `json:"location"`
	DailyRateCents   uint32 `json:"daily_rate_cents"`
	OwnerID          uint64 `json:"owner_id"`
	RenterID         uint64 `json:"renter_id"`
	RenterName       string `json:"renter_name"`
	RenterEmail      string `json:"renter_email"`
	RenterPhone      string `json:"renter_phone"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	TotalAmountCents uint32 `json:"total_amount_cents"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

const bookingDetailColumns = `
	b.id, b.equipment_id, e.name, e.category, e.location, e.daily_rate_cents, e.owner_id,
	b.renter_id, u.name, u.email, u.phone,
	b.start_date, b.end_date, b.total_amount_cents, b.status, b.created_at`

func scanBookingDetail(row interface{ Scan(...interface{}) error }) (*BookingDetail, error) {
	var det BookingDetail
	var start, end, created time.Time
	err := row.Scan(
		&det.ID, &det.EquipmentID, &det.EquipmentName, &det.Category, &det.Location,
		&det.DailyRateCents, &det.OwnerID,
		&det.RenterID, &det.RenterName, &det.RenterEmail, &det.RenterPhone,
		&start, &end, &det.TotalAmountCents, &det.Status, &created,
	)
	if err != nil {
		return nil, err
	}
	det.StartDate = start.UTC().Format("2006-01-02")
	det.EndDate = end.UTC().Format("2006-01-02")
	det.CreatedAt = created.UTC().Format(time.RFC3339)
	return &det, nil
}

// Create persists a new pending booking after running every
// precondition in order, first failure wins:
//
//  1. the date range must be non-empty (ErrInvalidDateRange),
//  2. the equipment must exist (ErrEquipmentNotFound); its row is
//     locked for the rest of the transaction,
//  3. its availability flag must be on (ErrNotAvailable),
//  4. no pending or confirmed booking on it may overlap the requested
//     range, boundaries inclusive (ErrConflict),
//  5. the submitted total must equal rental days times the daily rate
//     (ErrAmountMismatch).
//
// On success the generated ID and DB timestamps are populated on the
// passed booking and its status is set to pending.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if !b.EndDate.After(b.StartDate) {
		return ErrInvalidDateRange
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the equipment row so concurrent creates for the same machine
	// run one at a time. Without this, two overlapping requests could
	// both pass the overlap check below and both insert.
	var (
		dailyRate uint32
		available bool
	)
	err = tx.QueryRowContext(ctx,
		`SELECT daily_rate_cents, availability FROM equipment WHERE id = ? FOR UPDATE`,
		b.EquipmentID).Scan(&dailyRate, &available)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrEquipmentNotFound
		}
		return err
	}
	if !available {
		return ErrNotAvailable
	}

	// Inclusive boundary overlap: an existing booking conflicts when
	// existing.start <= requested.end AND existing.end >= requested.start.
	// Touching start/end dates therefore count as a conflict.
	var overlapping int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE equipment_id = ? AND status IN ('pending','confirmed')
		   AND start_date <= ? AND end_date >= ?`,
		b.EquipmentID, b.EndDate, b.StartDate).Scan(&overlapping)
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return ErrConflict
	}

	if expected := model.RentalAmountCents(b.StartDate, b.EndDate, dailyRate); b.TotalAmountCents != expected {
		return ErrAmountMismatch
	}

	b.Status = model.StatusPending
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (equipment_id, renter_id, start_date, end_date, total_amount_cents, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.EquipmentID, b.RenterID, b.StartDate, b.EndDate, b.TotalAmountCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the timestamps the DB filled in.
	err = tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM bookings WHERE id = ?`, b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListForUser returns bookings visible to a caller, newest first. A
// farmer sees every booking on equipment they own; a renter sees the
// bookings they made. Both shapes carry denormalized equipment and
// renter summaries so clients render lists without extra round trips.
func (r *BookingRepo) ListForUser(ctx context.Context, userID uint64, role string) ([]BookingDetail, error) {
	q := `SELECT` + bookingDetailColumns + `
		  FROM bookings b
		  JOIN equipment e ON e.id = b.equipment_id
		  JOIN users u ON u.id = b.renter_id
		  WHERE `
	if role == model.RoleFarmer {
		q += `e.owner_id = ?`
	} else {
		q += `b.renter_id = ?`
	}
	q += ` ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		det, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetByIDForParticipant returns a single booking when the caller is
// either the renter who made it or the farmer owning its equipment.
// It returns ErrBookingNotFound when the booking is missing and
// ErrForbidden for everyone else.
func (r *BookingRepo) GetByIDForParticipant(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
	q := `SELECT` + bookingDetailColumns + `
		  FROM bookings b
		  JOIN equipment e ON e.id = b.equipment_id
		  JOIN users u ON u.id = b.renter_id
		  WHERE b.id = ?`
	det, err := scanBookingDetail(r.db.QueryRowContext(ctx, q, bookingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if det.RenterID != userID && det.OwnerID != userID {
		return nil, ErrForbidden
	}
	return det, nil
}

// UpdateStatus applies a status transition on behalf of a caller.
// Authorization follows participation: a farmer may touch bookings on
// equipment they own, a renter the bookings they made. Beyond that
// ownership check the repo deliberately does not restrict which role
// performs which transition; the state machine itself is the guard:
// pending may become confirmed or cancelled, confirmed may become
// completed or cancelled, and terminal statuses never change again
// (ErrInvalidTransition). The row is locked while the transition is
// validated so two racing updates cannot both pass the guard.
func (r *BookingRepo) UpdateStatus(ctx context.Context, bookingID, userID uint64, role, newStatus string) (*BookingDetail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var (
		renterID uint64
		ownerID  uint64
		current  string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT b.renter_id, e.owner_id, b.status
		 FROM bookings b
		 JOIN equipment e ON e.id = b.equipment_id
		 WHERE b.id = ? FOR UPDATE`,
		bookingID).Scan(&renterID, &ownerID, &current)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if role == model.RoleFarmer {
		if ownerID != userID {
			return nil, ErrForbidden
		}
	} else if renterID != userID {
		return nil, ErrForbidden
	}
	if !model.CanTransition(current, newStatus) {
		return nil, ErrInvalidTransition
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = NOW() WHERE id = ?`,
		newStatus, bookingID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByIDForParticipant(ctx, bookingID, userID)
}
