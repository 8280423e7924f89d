package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestTranslate(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.ErrorIs(t, translate(dup), ErrDuplicate)

	other := &mysql.MySQLError{Number: 1452, Message: "fk"}
	assert.Same(t, other, translate(other))
	assert.True(t, errors.Is(ErrUserExists, ErrDuplicate))
}

func TestBuildingDelete_Cascades(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBuildingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM buildings WHERE id = \? FOR UPDATE`).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectExec(`DELETE rv FROM reservations rv\s+JOIN rooms rm ON rm.id = rv.room_id\s+WHERE rm.building_id = \?`).
		WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM rooms WHERE building_id = \?`).WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM buildings WHERE id = \?`).WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingDelete_NotFoundRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBuildingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM buildings WHERE id = \? FOR UPDATE`).WithArgs(9).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), 9), ErrBuildingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDelete_Cascades(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \? FOR UPDATE`).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(`DELETE FROM reservations WHERE room_id = \?`).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM rooms WHERE id = \?`).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreate_UnknownBuilding(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	mock.ExpectQuery(`SELECT id FROM buildings WHERE id = \?`).WithArgs(5).WillReturnError(sql.ErrNoRows)

	err := repo.Create(context.Background(), &model.Room{Name: "Blue", Slug: "blue", BuildingID: 5})
	assert.ErrorIs(t, err, ErrBuildingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForValidationTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	from := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT datetime_from, datetime_to FROM reservations\s+WHERE room_id = \? AND id <> \? AND datetime_from <= \? AND datetime_to >= \?`).
		WithArgs(3, 7, to, from).
		WillReturnRows(sqlmock.NewRows([]string{"datetime_from", "datetime_to"}).
			AddRow(from.Add(-30*time.Minute), from.Add(15*time.Minute)))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	got, err := repo.ListForValidationTx(context.Background(), tx, 3, 7, booking.Interval{From: from, To: to})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	require.Len(t, got, 1)
	assert.True(t, booking.Overlaps(got[0], booking.Interval{From: from, To: to}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationDelete_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	mock.ExpectExec(`DELETE FROM reservations WHERE id = \?`).WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 1), ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	mock.ExpectExec(`INSERT INTO users`).WithArgs("ann", "ann@example.com", sqlmock.AnyArg(), "USER").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ann'"})

	_, err := repo.Create(context.Background(), " ann ", " Ann@Example.com ", "pw", "USER", 4)
	assert.ErrorIs(t, err, ErrUserExists)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenValidate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"user_id", "expires_at", "revoked_at"}
	const q = `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=\?`

	mock.ExpectQuery(q).WithArgs("live").WillReturnRows(sqlmock.NewRows(cols).AddRow(5, now.Add(time.Hour), nil))
	id, err := repo.ValidateRefresh(context.Background(), "live", now)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)

	mock.ExpectQuery(q).WithArgs("expired").WillReturnRows(sqlmock.NewRows(cols).AddRow(5, now, nil))
	_, err = repo.ValidateRefresh(context.Background(), "expired", now)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	mock.ExpectQuery(q).WithArgs("revoked").WillReturnRows(sqlmock.NewRows(cols).AddRow(5, now.Add(time.Hour), now))
	_, err = repo.ValidateRefresh(context.Background(), "revoked", now)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	mock.ExpectQuery(q).WithArgs("unknown").WillReturnError(sql.ErrNoRows)
	_, err = repo.ValidateRefresh(context.Background(), "unknown", now)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdmin_Promotes(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM users WHERE username=\?`).WithArgs("root").WillReturnRows(
		sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}).
			AddRow(3, "root", "root@localhost", "x", "USER", true, now, now))
	mock.ExpectExec(`UPDATE users SET role=\? WHERE id=\?`).WithArgs("ADMIN", 3).WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.EnsureAdmin(context.Background(), "root", "pw", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
