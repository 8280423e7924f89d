package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
)

// ErrRoomNotFound is returned when a room cannot be found in the DB.
var ErrRoomNotFound = errors.New("room not found")

const roomColumns = "id, name, slug, description, building_id, created_at, updated_at"

// RoomRepo encapsulates all database queries related to rooms.  Listings
// follow the registry's default order: building, then room name.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(s rowScanner) (*model.Room, error) {
	var rm model.Room
	if err := s.Scan(&rm.ID, &rm.Name, &rm.Slug, &rm.Description, &rm.BuildingID, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	return &rm, nil
}

// Create inserts a room.  A missing building is reported as
// ErrBuildingNotFound and a name or slug collision as ErrDuplicate.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	var exists uint64
	if err := r.db.QueryRowContext(ctx, "SELECT id FROM buildings WHERE id = ?", rm.BuildingID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBuildingNotFound
		}
		return err
	}
	const q = "INSERT INTO rooms (name, slug, description, building_id) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, rm.Name, rm.Slug, rm.Description, rm.BuildingID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rm = *got
	return nil
}

// GetByID fetches a room by id or returns ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// GetBySlug fetches a room by its slug or returns ErrRoomNotFound.
func (r *RoomRepo) GetBySlug(ctx context.Context, slug string) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE slug = ?", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// List returns every room ordered by building and name.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	return r.query(ctx, "SELECT "+roomColumns+" FROM rooms ORDER BY building_id, name")
}

// ListAvailable returns the rooms that have no reservation lying wholly
// inside w, ordered by building and name.  Reservations crossing a window
// boundary do not make a room unavailable.
func (r *RoomRepo) ListAvailable(ctx context.Context, w booking.Window) ([]model.Room, error) {
	const q = "SELECT " + roomColumns + ` FROM rooms
	           WHERE id NOT IN (
	               SELECT room_id FROM reservations
	               WHERE datetime_from >= ? AND datetime_to <= ?)
	           ORDER BY building_id, name`
	return r.query(ctx, q, w.From, w.To)
}

func (r *RoomRepo) query(ctx context.Context, q string, args ...any) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes name, slug, description and building of rm.  It returns
// ErrRoomNotFound, ErrBuildingNotFound or ErrDuplicate as appropriate.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	if _, err := r.GetByID(ctx, rm.ID); err != nil {
		return err
	}
	var exists uint64
	if err := r.db.QueryRowContext(ctx, "SELECT id FROM buildings WHERE id = ?", rm.BuildingID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBuildingNotFound
		}
		return err
	}
	const q = `UPDATE rooms
	           SET name = ?, slug = ?, description = ?, building_id = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, rm.Name, rm.Slug, rm.Description, rm.BuildingID, rm.ID); err != nil {
		return translate(err)
	}
	got, err := r.GetByID(ctx, rm.ID)
	if err != nil {
		return err
	}
	*rm = *got
	return nil
}

// Delete removes a room and its reservations inside one transaction.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = r.LockTx(ctx, tx, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM reservations WHERE room_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id); err != nil {
		return err
	}
	return nil
}

// LockTx takes an exclusive row lock on the room for the lifetime of tx.
// Reservation writers lock the room before reading its reservations, so
// two writers on the same room run one after the other.  It returns
// ErrRoomNotFound when the room does not exist.
func (r *RoomRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx, "SELECT id FROM rooms WHERE id = ? FOR UPDATE", id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoomNotFound
	}
	return err
}
