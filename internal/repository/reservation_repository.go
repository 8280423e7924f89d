package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
)

// ErrReservationNotFound is returned when a reservation cannot be found.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides CRUD operations for reservations.  Writes that
// must be validated against other reservations of the same room run inside
// a caller-owned transaction (the *Tx methods) after the room row has been
// locked with RoomRepo.LockTx.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// reservationSelect joins the author and room so listings can show names
// without extra round trips.
const reservationSelect = `SELECT r.id, r.room_id, r.datetime_from, r.datetime_to, r.created,
       r.author_id, u.username, rm.name, rm.slug
  FROM reservations r
  JOIN users u ON u.id = r.author_id
  JOIN rooms rm ON rm.id = r.room_id`

// reservationOrder is the default listing order: newest interval first,
// ties broken by room.
const reservationOrder = " ORDER BY r.datetime_from DESC, r.datetime_to DESC, r.room_id, r.id"

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var rv model.Reservation
	err := s.Scan(&rv.ID, &rv.RoomID, &rv.DatetimeFrom, &rv.DatetimeTo, &rv.Created,
		&rv.AuthorID, &rv.Author, &rv.RoomName, &rv.RoomSlug)
	if err != nil {
		return nil, err
	}
	rv.DatetimeFrom = rv.DatetimeFrom.UTC()
	rv.DatetimeTo = rv.DatetimeTo.UTC()
	rv.Created = rv.Created.UTC()
	return &rv, nil
}

func (r *ReservationRepo) query(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a single reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	rv, err := scanReservation(r.db.QueryRowContext(ctx, reservationSelect+" WHERE r.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return rv, err
}

// List returns one page of all reservations in default order together with
// the total number of reservations.
func (r *ReservationRepo) List(ctx context.Context, limit, offset int) ([]model.Reservation, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations").Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.query(ctx, reservationSelect+reservationOrder+" LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByRoom returns every reservation of a room in default order.
func (r *ReservationRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
	return r.query(ctx, reservationSelect+" WHERE r.room_id = ?"+reservationOrder, roomID)
}

// ListByAuthor returns one page of a user's reservations in default order
// together with that user's reservation count.
func (r *ReservationRepo) ListByAuthor(ctx context.Context, authorID uint64, limit, offset int) ([]model.Reservation, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations WHERE author_id = ?", authorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.query(ctx, reservationSelect+" WHERE r.author_id = ?"+reservationOrder+" LIMIT ? OFFSET ?", authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListForValidationTx loads the intervals of roomID that could conflict
// with a candidate spanning bounds.  Only rows touching bounds are read;
// excludeID leaves out the reservation being edited (0 excludes nothing).
// Rows are read inside tx so they reflect the state protected by the room
// lock.
func (r *ReservationRepo) ListForValidationTx(ctx context.Context, tx *sql.Tx, roomID, excludeID uint64, bounds booking.Interval) ([]booking.Interval, error) {
	const q = `SELECT datetime_from, datetime_to FROM reservations
	           WHERE room_id = ? AND id <> ? AND datetime_from <= ? AND datetime_to >= ?`
	rows, err := tx.QueryContext(ctx, q, roomID, excludeID, bounds.To, bounds.From)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Interval
	for rows.Next() {
		var iv booking.Interval
		if err := rows.Scan(&iv.From, &iv.To); err != nil {
			return nil, err
		}
		iv.From, iv.To = iv.From.UTC(), iv.To.UTC()
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTx inserts a reservation within tx and populates its ID and the
// server-assigned created timestamp.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rv *model.Reservation) error {
	const q = "INSERT INTO reservations (room_id, author_id, datetime_from, datetime_to) VALUES (?, ?, ?, ?)"
	res, err := tx.ExecContext(ctx, q, rv.RoomID, rv.AuthorID, rv.DatetimeFrom.UTC(), rv.DatetimeTo.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	if err := tx.QueryRowContext(ctx, "SELECT created FROM reservations WHERE id = ?", rv.ID).Scan(&rv.Created); err != nil {
		return err
	}
	rv.Created = rv.Created.UTC()
	return nil
}

// UpdateTx writes the room and interval of rv within tx.  The created
// timestamp and author are never changed.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sql.Tx, rv *model.Reservation) error {
	const q = "UPDATE reservations SET room_id = ?, datetime_from = ?, datetime_to = ? WHERE id = ?"
	// RowsAffected is not checked: MySQL reports 0 for an unchanged row.
	_, err := tx.ExecContext(ctx, q, rv.RoomID, rv.DatetimeFrom.UTC(), rv.DatetimeTo.UTC(), rv.ID)
	return err
}

// Delete removes a reservation.  It returns ErrReservationNotFound when no
// row was deleted.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}
