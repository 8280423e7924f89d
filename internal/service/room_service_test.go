package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/repository"
)

var roomCols = []string{"id", "name", "slug", "description", "building_id", "created_at", "updated_at"}

func newRoomService(t *testing.T) (*RoomService, sqlmock.Sqlmock, *countingCache) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cache := &countingCache{}
	return NewRoomService(repository.NewRoomRepo(db), cache), mock, cache
}

func TestRoomList_WithoutWindow(t *testing.T) {
	s, mock, _ := newRoomService(t)
	mock.ExpectQuery(`FROM rooms ORDER BY building_id, name`).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(1, "Blue", "blue", "", 1, at(0, 0), at(0, 0)))

	rooms, err := s.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "blue", rooms[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomList_Availability(t *testing.T) {
	s, mock, _ := newRoomService(t)
	w, err := booking.ParseWindow("2024-01-01T09:00", "2024-01-01T12:00")
	require.NoError(t, err)

	mock.ExpectQuery(`WHERE id NOT IN \(\s+SELECT room_id FROM reservations\s+WHERE datetime_from >= \? AND datetime_to <= \?\)\s+ORDER BY building_id, name`).
		WithArgs(at(9, 0), at(12, 0)).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(2, "Red", "red", "", 1, at(0, 0), at(0, 0)))

	rooms, err := s.List(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, uint64(2), rooms[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreate_SlugFromName(t *testing.T) {
	s, mock, cache := newRoomService(t)
	mock.ExpectQuery(`SELECT id FROM buildings WHERE id = \?`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO rooms`).WithArgs("Blue Room", "blue-room", "", 1).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(7, "Blue Room", "blue-room", "", 1, at(0, 0), at(0, 0)))

	rm, err := s.Create(context.Background(), admin, RoomInput{Name: strp(" Blue Room "), Building: idp(1)})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rm.ID)
	assert.Equal(t, "blue-room", rm.Slug)
	assert.Equal(t, 1, cache.purges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreate_Duplicate(t *testing.T) {
	s, mock, _ := newRoomService(t)
	mock.ExpectQuery(`SELECT id FROM buildings WHERE id = \?`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO rooms`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Blue' for key 'uq_rooms_name'"})

	_, err := s.Create(context.Background(), admin, RoomInput{Name: strp("Blue"), Building: idp(1)})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreate_Validation(t *testing.T) {
	s, mock, _ := newRoomService(t)

	_, err := s.Create(context.Background(), admin, RoomInput{})
	var verr *booking.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("name", MsgRequired))
	assert.True(t, verr.Has("building", MsgRequired))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomWrites_AdminOnly(t *testing.T) {
	s, mock, _ := newRoomService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, user, RoomInput{Name: strp("x"), Building: idp(1)})
	assert.ErrorIs(t, err, policy.ErrForbidden)
	_, err = s.Update(ctx, policy.Actor{}, 1, RoomInput{}, true)
	assert.ErrorIs(t, err, policy.ErrUnauthenticated)
	assert.ErrorIs(t, s.Delete(ctx, user, 1), policy.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomUpdate_PartialKeepsSlug(t *testing.T) {
	s, mock, _ := newRoomService(t)
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(7, "Blue", "blue", "old", 1, at(0, 0), at(0, 0)))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(7, "Blue", "blue", "old", 1, at(0, 0), at(0, 0)))
	mock.ExpectQuery(`SELECT id FROM buildings WHERE id = \?`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE rooms`).WithArgs("Navy", "blue", "old", 1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(7, "Navy", "blue", "old", 1, at(0, 0), at(0, 0)))

	rm, err := s.Update(context.Background(), admin, 7, RoomInput{Name: strp("Navy")}, true)
	require.NoError(t, err)
	assert.Equal(t, "Navy", rm.Name)
	assert.Equal(t, "blue", rm.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewBuildingService(repository.NewBuildingRepo(db), nil)

	mock.ExpectExec(`INSERT INTO buildings \(name\) VALUES \(\?\)`).WithArgs("Main").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(`FROM buildings WHERE id = \?`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).AddRow(4, "Main", at(0, 0), at(0, 0)))

	b, err := s.Create(context.Background(), admin, " Main ")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), b.ID)

	_, err = s.Create(context.Background(), admin, "  ")
	var verr *booking.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = s.Create(context.Background(), user, "Annex")
	assert.ErrorIs(t, err, policy.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserList_AdminOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewUserService(repository.NewUserRepo(db))

	_, err = s.List(context.Background(), user)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	mock.ExpectQuery(`FROM users ORDER BY username`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}).
			AddRow(1, "root", "root@localhost", "x", "ADMIN", true, at(0, 0), at(0, 0)))
	users, err := s.List(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
