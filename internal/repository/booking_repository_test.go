package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fasalmitra/equipment-rental/internal/model"
)

func newBookingRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const (
	lockEquipmentQ = `SELECT daily_rate_cents, availability FROM equipment WHERE id = \? FOR UPDATE`
	overlapCountQ  = `SELECT COUNT\(\*\) FROM bookings\s+WHERE equipment_id = \? AND status IN \('pending','confirmed'\)\s+AND start_date <= \? AND end_date >= \?`
	insertBookingQ = `INSERT INTO bookings`
	bookingStampsQ = `SELECT created_at, updated_at FROM bookings WHERE id = \?`
	lockBookingQ   = `SELECT b\.renter_id, e\.owner_id, b\.status`
	bookingDetailQ = `(?s)SELECT\s+b\.id, b\.equipment_id, e\.name`
	updateBookingQ = `UPDATE bookings SET status = \?, updated_at = NOW\(\) WHERE id = \?`
)

func detailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "equipment_id", "name", "category", "location", "daily_rate_cents", "owner_id",
		"renter_id", "name", "email", "phone",
		"start_date", "end_date", "total_amount_cents", "status", "created_at",
	})
}

func TestBookingCreate(t *testing.T) {
	start, end := day("2024-06-01"), day("2024-06-03")

	t.Run("success", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockEquipmentQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"daily_rate_cents", "availability"}).AddRow(100, true))
		mock.ExpectQuery(overlapCountQ).WithArgs(uint64(5), end, start).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(insertBookingQ).
			WithArgs(uint64(5), uint64(7), start, end, uint32(200), model.StatusPending).
			WillReturnResult(sqlmock.NewResult(42, 1))
		mock.ExpectQuery(bookingStampsQ).WithArgs(uint64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(time.Now(), time.Now()))
		mock.ExpectCommit()

		b := &model.Booking{EquipmentID: 5, RenterID: 7, StartDate: start, EndDate: end, TotalAmountCents: 200}
		err := repo.Create(context.Background(), b)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), b.ID)
		assert.Equal(t, model.StatusPending, b.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overlap conflict", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockEquipmentQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"daily_rate_cents", "availability"}).AddRow(100, true))
		mock.ExpectQuery(overlapCountQ).WithArgs(uint64(5), end, start).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		b := &model.Booking{EquipmentID: 5, RenterID: 7, StartDate: start, EndDate: end, TotalAmountCents: 200}
		err := repo.Create(context.Background(), b)
		assert.ErrorIs(t, err, ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("equipment unavailable", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockEquipmentQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"daily_rate_cents", "availability"}).AddRow(100, false))
		mock.ExpectRollback()

		b := &model.Booking{EquipmentID: 5, RenterID: 7, StartDate: start, EndDate: end, TotalAmountCents: 200}
		err := repo.Create(context.Background(), b)
		assert.ErrorIs(t, err, ErrNotAvailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("equipment missing", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockEquipmentQ).WithArgs(uint64(99)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		b := &model.Booking{EquipmentID: 99, RenterID: 7, StartDate: start, EndDate: end, TotalAmountCents: 200}
		err := repo.Create(context.Background(), b)
		assert.ErrorIs(t, err, ErrEquipmentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("amount mismatch", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockEquipmentQ).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"daily_rate_cents", "availability"}).AddRow(100, true))
		mock.ExpectQuery(overlapCountQ).WithArgs(uint64(5), end, start).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectRollback()

		b := &model.Booking{EquipmentID: 5, RenterID: 7, StartDate: start, EndDate: end, TotalAmountCents: 999}
		err := repo.Create(context.Background(), b)
		assert.ErrorIs(t, err, ErrAmountMismatch)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inverted dates never reach the database", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		b := &model.Booking{EquipmentID: 5, RenterID: 7, StartDate: end, EndDate: start}
		err := repo.Create(context.Background(), b)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingListForUser(t *testing.T) {
	t.Run("farmer sees bookings on owned equipment", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectQuery(bookingDetailQ + `.*e\.owner_id = \?.*ORDER BY b\.created_at DESC`).
			WithArgs(uint64(3)).
			WillReturnRows(detailRows().
				AddRow(11, 5, "Tractor", "tractor", "Pune", 100, 3, 7, "Ravi", "ravi@x.in", "98", day("2024-06-05"), day("2024-06-07"), 200, "pending", time.Now()).
				AddRow(10, 5, "Tractor", "tractor", "Pune", 100, 3, 8, "Meena", "meena@x.in", "97", day("2024-06-01"), day("2024-06-03"), 200, "confirmed", time.Now()))

		items, err := repo.ListForUser(context.Background(), 3, model.RoleFarmer)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, uint64(11), items[0].ID)
		assert.Equal(t, "2024-06-05", items[0].StartDate)
		assert.Equal(t, "Ravi", items[0].RenterName)
		assert.Equal(t, uint64(10), items[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("renter sees own bookings", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectQuery(bookingDetailQ + `.*b\.renter_id = \?.*ORDER BY b\.created_at DESC`).
			WithArgs(uint64(7)).
			WillReturnRows(detailRows().
				AddRow(11, 5, "Tractor", "tractor", "Pune", 100, 3, 7, "Ravi", "ravi@x.in", "98", day("2024-06-05"), day("2024-06-07"), 200, "pending", time.Now()))

		items, err := repo.ListForUser(context.Background(), 7, model.RoleRenter)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, uint64(7), items[0].RenterID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectQuery(bookingDetailQ).WithArgs(uint64(9)).WillReturnRows(detailRows())
		items, err := repo.ListForUser(context.Background(), 9, model.RoleRenter)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Len(t, items, 0)
	})
}

func TestBookingGetByIDForParticipant(t *testing.T) {
	row := func() *sqlmock.Rows {
		return detailRows().
			AddRow(11, 5, "Tractor", "tractor", "Pune", 100, 3, 7, "Ravi", "ravi@x.in", "98", day("2024-06-05"), day("2024-06-07"), 200, "pending", time.Now())
	}

	t.Run("renter may read", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectQuery(bookingDetailQ).WithArgs(uint64(11)).WillReturnRows(row())
		det, err := repo.GetByIDForParticipant(context.Background(), 11, 7)
		require.NoError(t, err)
		assert.Equal(t, uint64(11), det.ID)
	})

	t.Run("owner may read", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectQuery(bookingDetailQ).WithArgs(uint64(11)).WillReturnRows(row())
		_, err := repo.GetByIDForParticipant(context.Background(), 11, 3)
		assert.NoError(t, err)
	})

	t.Run("stranger is refused", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectQuery(bookingDetailQ).WithArgs(uint64(11)).WillReturnRows(row())
		_, err := repo.GetByIDForParticipant(context.Background(), 11, 99)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing booking", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectQuery(bookingDetailQ).WithArgs(uint64(404)).WillReturnError(sql.ErrNoRows)
		_, err := repo.GetByIDForParticipant(context.Background(), 404, 7)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestBookingUpdateStatus(t *testing.T) {
	participantRow := func(status string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"renter_id", "owner_id", "status"}).AddRow(7, 3, status)
	}

	t.Run("renter cancels pending booking", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQ).WithArgs(uint64(11)).WillReturnRows(participantRow("pending"))
		mock.ExpectExec(updateBookingQ).WithArgs(model.StatusCancelled, uint64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(bookingDetailQ).WithArgs(uint64(11)).
			WillReturnRows(detailRows().
				AddRow(11, 5, "Tractor", "tractor", "Pune", 100, 3, 7, "Ravi", "ravi@x.in", "98", day("2024-06-05"), day("2024-06-07"), 200, "cancelled", time.Now()))

		det, err := repo.UpdateStatus(context.Background(), 11, 7, model.RoleRenter, model.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, det.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("farmer confirms pending booking", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQ).WithArgs(uint64(11)).WillReturnRows(participantRow("pending"))
		mock.ExpectExec(updateBookingQ).WithArgs(model.StatusConfirmed, uint64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(bookingDetailQ).WithArgs(uint64(11)).
			WillReturnRows(detailRows().
				AddRow(11, 5, "Tractor", "tractor", "Pune", 100, 3, 7, "Ravi", "ravi@x.in", "98", day("2024-06-05"), day("2024-06-07"), 200, "confirmed", time.Now()))

		det, err := repo.UpdateStatus(context.Background(), 11, 3, model.RoleFarmer, model.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, det.Status)
	})

	t.Run("terminal booking is frozen", func(t *testing.T) {
		for _, status := range []string{model.StatusCancelled, model.StatusCompleted} {
			repo, mock := newBookingRepo(t)
			mock.ExpectBegin()
			mock.ExpectQuery(lockBookingQ).WithArgs(uint64(11)).WillReturnRows(participantRow(status))
			mock.ExpectRollback()

			_, err := repo.UpdateStatus(context.Background(), 11, 7, model.RoleRenter, model.StatusConfirmed)
			assert.ErrorIs(t, err, ErrInvalidTransition, "from %s", status)
			assert.NoError(t, mock.ExpectationsWereMet())
		}
	})

	t.Run("pending cannot jump to completed", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQ).WithArgs(uint64(11)).WillReturnRows(participantRow("pending"))
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(context.Background(), 11, 7, model.RoleRenter, model.StatusCompleted)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("renter who is not the booker is refused", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQ).WithArgs(uint64(11)).WillReturnRows(participantRow("pending"))
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(context.Background(), 11, 9, model.RoleRenter, model.StatusCancelled)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("farmer who does not own the equipment is refused", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQ).WithArgs(uint64(11)).WillReturnRows(participantRow("pending"))
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(context.Background(), 11, 4, model.RoleFarmer, model.StatusConfirmed)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing booking", func(t *testing.T) {
		repo, mock := newBookingRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQ).WithArgs(uint64(404)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(context.Background(), 404, 7, model.RoleRenter, model.StatusCancelled)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}
