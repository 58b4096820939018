package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/fasalmitra/equipment-rental/internal/model"
)

// EquipmentRepo provides CRUD operations for equipment listings.
// Listings always belong to exactly one farmer; every mutation verifies
// ownership before touching the row. Image URLs are stored as a JSON
// array inside a TEXT column and encoded/decoded here so the rest of
// the application only ever sees []string.
type EquipmentRepo struct {
	db *sql.DB
}

// NewEquipmentRepo returns a new EquipmentRepo bound to the given database.
func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

// EquipmentDetail pairs an equipment row with a summary of its owner
// for public listings and booking responses.
type EquipmentDetail struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	DailyRateCents uint32   `json:"daily_rate_cents"`
	Location       string   `json:"location"`
	ImageURLs      []string `json:"image_urls"`
	Availability   bool     `json:"availability"`
	OwnerID        uint64   `json:"owner_id"`
	OwnerName      string   `json:"owner_name"`
	OwnerPhone     string   `json:"owner_phone"`
	CreatedAt      string   `json:"created_at"`
}

func encodeImageURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeImageURLs(raw sql.NullString) []string {
	urls := []string{}
	if raw.Valid && raw.String != "" {
		_ = json.Unmarshal([]byte(raw.String), &urls)
	}
	return urls
}

// Create inserts a new listing owned by the given farmer and populates
// the generated ID on the provided model.
func (r *EquipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	images, err := encodeImageURLs(e.ImageURLs)
	if err != nil {
		return err
	}
	const q = `INSERT INTO equipment
			   (owner_id, name, description, category, daily_rate_cents, location, image_urls, availability)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.OwnerID, e.Name, e.Description, e.Category, e.DailyRateCents, e.Location, images, e.Availability)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID returns a single listing with its owner summary. It returns
// ErrEquipmentNotFound when no row exists.
func (r *EquipmentRepo) GetByID(ctx context.Context, id uint64) (*EquipmentDetail, error) {
	const q = `SELECT e.id, e.name, e.description, e.category, e.daily_rate_cents,
					  e.location, e.image_urls, e.availability, e.created_at,
					  u.id, u.name, u.phone
			   FROM equipment e
			   JOIN users u ON u.id = e.owner_id
			   WHERE e.id = ?`
	var det EquipmentDetail
	var images sql.NullString
	var createdAt string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.Name, &det.Description, &det.Category, &det.DailyRateCents,
		&det.Location, &images, &det.Availability, &createdAt,
		&det.OwnerID, &det.OwnerName, &det.OwnerPhone,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	det.ImageURLs = decodeImageURLs(images)
	det.CreatedAt = createdAt
	return &det, nil
}

// ListAll returns every listing with owner summaries, newest first.
// Used by the public browse endpoint; availability filtering is left to
// clients so unavailable machines remain visible but unbookable.
func (r *EquipmentRepo) ListAll(ctx context.Context) ([]EquipmentDetail, error) {
	const q = `SELECT e.id, e.name, e.description, e.category, e.daily_rate_cents,
					  e.location, e.image_urls, e.availability, e.created_at,
					  u.id, u.name, u.phone
			   FROM equipment e
			   JOIN users u ON u.id = e.owner_id
			   ORDER BY e.created_at DESC`
	return r.list(ctx, q)
}

// ListByOwner returns all listings of a single farmer, newest first.
// The query is indexed on owner_id rather than scanning the whole
// collection and filtering in the application.
func (r *EquipmentRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]EquipmentDetail, error) {
	const q = `SELECT e.id, e.name, e.description, e.category, e.daily_rate_cents,
					  e.location, e.image_urls, e.availability, e.created_at,
					  u.id, u.name, u.phone
			   FROM equipment e
			   JOIN users u ON u.id = e.owner_id
			   WHERE e.owner_id = ?
			   ORDER BY e.created_at DESC`
	return r.list(ctx, q, ownerID)
}

func (r *EquipmentRepo) list(ctx context.Context, q string, args ...interface{}) ([]EquipmentDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]EquipmentDetail, 0)
	for rows.Next() {
		var det EquipmentDetail
		var images sql.NullString
		var createdAt string
		if err := rows.Scan(
			&det.ID, &det.Name, &det.Description, &det.Category, &det.DailyRateCents,
			&det.Location, &images, &det.Availability, &createdAt,
			&det.OwnerID, &det.OwnerName, &det.OwnerPhone,
		); err != nil {
			return nil, err
		}
		det.ImageURLs = decodeImageURLs(images)
		det.CreatedAt = createdAt
		details = append(details, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// UpdateByIDAndOwner applies new listing fields when the listing exists
// and belongs to the caller. It returns ErrEquipmentNotFound when the
// row is missing and ErrForbidden when it belongs to another owner.
func (r *EquipmentRepo) UpdateByIDAndOwner(ctx context.Context, e *model.Equipment, ownerID uint64) error {
	var actualOwnerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM equipment WHERE id = ?`, e.ID).Scan(&actualOwnerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrEquipmentNotFound
		}
		return err
	}
	if actualOwnerID != ownerID {
		return ErrForbidden
	}
	images, err := encodeImageURLs(e.ImageURLs)
	if err != nil {
		return err
	}
	const q = `UPDATE equipment
			   SET name = ?, description = ?, category = ?, daily_rate_cents = ?,
				   location = ?, image_urls = ?, availability = ?
			   WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q,
		e.Name, e.Description, e.Category, e.DailyRateCents, e.Location, images, e.Availability, e.ID)
	return err
}

// DeleteByIDAndOwner removes a listing after verifying ownership and
// the absence of active bookings. The ownership read, the active
// booking count and the delete run in one transaction so a booking
// created concurrently cannot slip past the guard. It returns
// ErrEquipmentNotFound when the listing is missing, ErrForbidden when
// it belongs to another owner and ErrConflict while any booking on it
// is still pending or confirmed.
func (r *EquipmentRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
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
	var actualOwnerID uint64
	err = tx.QueryRowContext(ctx, `SELECT owner_id FROM equipment WHERE id = ? FOR UPDATE`, id).Scan(&actualOwnerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrEquipmentNotFound
		}
		return err
	}
	if actualOwnerID != ownerID {
		return ErrForbidden
	}
	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE equipment_id = ? AND status IN ('pending','confirmed')`,
		id).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
