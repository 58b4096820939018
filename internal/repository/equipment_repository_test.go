package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fasalmitra/equipment-rental/internal/model"
)

func newEquipmentRepo(t *testing.T) (*EquipmentRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEquipmentRepo(db), mock
}

const (
	lockOwnerQ   = `SELECT owner_id FROM equipment WHERE id = \? FOR UPDATE`
	activeCountQ = `SELECT COUNT\(\*\) FROM bookings WHERE equipment_id = \? AND status IN \('pending','confirmed'\)`
	deleteEquipQ = `DELETE FROM equipment WHERE id = \?`
	equipDetailQ = `(?s)SELECT e\.id, e\.name, e\.description`
	ownerByIDQ   = `SELECT owner_id FROM equipment WHERE id = \?`
	updateEquipQ = `(?s)UPDATE equipment\s+SET name = \?`
	insertEquipQ = `INSERT INTO equipment`
)

func TestEquipmentDelete(t *testing.T) {
	t.Run("blocked while active bookings exist", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockOwnerQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(3))
		mock.ExpectQuery(activeCountQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectRollback()

		err := repo.DeleteByIDAndOwner(context.Background(), 5, 3)
		assert.ErrorIs(t, err, ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("allowed once every booking is terminal", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockOwnerQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(3))
		mock.ExpectQuery(activeCountQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(deleteEquipQ).WithArgs(uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteByIDAndOwner(context.Background(), 5, 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not the owner", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockOwnerQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(3))
		mock.ExpectRollback()

		err := repo.DeleteByIDAndOwner(context.Background(), 5, 99)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing listing", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockOwnerQ).WithArgs(uint64(404)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.DeleteByIDAndOwner(context.Background(), 404, 3)
		assert.ErrorIs(t, err, ErrEquipmentNotFound)
	})
}

func TestEquipmentCreate(t *testing.T) {
	repo, mock := newEquipmentRepo(t)
	mock.ExpectExec(insertEquipQ).
		WithArgs(uint64(3), "Tractor", "35 HP", "tractor", uint32(100_00), "Pune", `["a.jpg"]`, true).
		WillReturnResult(sqlmock.NewResult(5, 1))

	e := &model.Equipment{
		OwnerID:        3,
		Name:           "Tractor",
		Description:    "35 HP",
		Category:       "tractor",
		DailyRateCents: 100_00,
		Location:       "Pune",
		ImageURLs:      []string{"a.jpg"},
		Availability:   true,
	}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, uint64(5), e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentUpdateByIDAndOwner(t *testing.T) {
	e := &model.Equipment{ID: 5, Name: "Tractor", Category: "tractor", DailyRateCents: 100_00, Location: "Pune", Availability: true}

	t.Run("owner updates", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectQuery(ownerByIDQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(3))
		mock.ExpectExec(updateEquipQ).
			WithArgs("Tractor", "", "tractor", uint32(100_00), "Pune", "[]", true, uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateByIDAndOwner(context.Background(), e, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stranger is refused", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectQuery(ownerByIDQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(3))

		assert.ErrorIs(t, repo.UpdateByIDAndOwner(context.Background(), e, 99), ErrForbidden)
	})

	t.Run("missing listing", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectQuery(ownerByIDQ).WithArgs(uint64(5)).WillReturnError(sql.ErrNoRows)
		assert.ErrorIs(t, repo.UpdateByIDAndOwner(context.Background(), e, 3), ErrEquipmentNotFound)
	})
}

func TestEquipmentGetByID(t *testing.T) {
	cols := []string{
		"id", "name", "description", "category", "daily_rate_cents",
		"location", "image_urls", "availability", "created_at",
		"owner_id", "owner_name", "owner_phone",
	}

	t.Run("found", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectQuery(equipDetailQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(5, "Tractor", "35 HP", "tractor", 100_00, "Pune", `["a.jpg","b.jpg"]`, true, "2024-06-01 10:00:00", 3, "Anil", "98"))

		det, err := repo.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), det.OwnerID)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, det.ImageURLs)
	})

	t.Run("null image urls decode to empty slice", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectQuery(equipDetailQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(5, "Tractor", "", "tractor", 100_00, "Pune", nil, true, "2024-06-01 10:00:00", 3, "Anil", "98"))

		det, err := repo.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, []string{}, det.ImageURLs)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newEquipmentRepo(t)
		mock.ExpectQuery(equipDetailQ).WithArgs(uint64(404)).WillReturnError(sql.ErrNoRows)
		_, err := repo.GetByID(context.Background(), 404)
		assert.ErrorIs(t, err, ErrEquipmentNotFound)
	})
}
