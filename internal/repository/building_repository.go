package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ErrBuildingNotFound is returned when a building cannot be found in the DB.
var ErrBuildingNotFound = errors.New("building not found")

// BuildingRepo encapsulates all database queries related to buildings.
type BuildingRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewBuildingRepo constructs a BuildingRepo with the provided DB handle.
func NewBuildingRepo(db *sql.DB) *BuildingRepo {
	return &BuildingRepo{db: db}
}

// Create inserts a new building.  On success the ID and timestamp fields
// are populated from the stored row.  A name collision yields ErrDuplicate.
func (r *BuildingRepo) Create(ctx context.Context, b *model.Building) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO buildings (name) VALUES (?)", b.Name)
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
	*b = *got
	return nil
}

// GetByID fetches a building by its ID.  It returns ErrBuildingNotFound if
// no row is found.
func (r *BuildingRepo) GetByID(ctx context.Context, id uint64) (*model.Building, error) {
	const q = "SELECT id, name, created_at, updated_at FROM buildings WHERE id = ?"
	var b model.Building
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns all buildings ordered by name.
func (r *BuildingRepo) List(ctx context.Context) ([]model.Building, error) {
	const q = "SELECT id, name, created_at, updated_at FROM buildings ORDER BY name, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Building{}
	for rows.Next() {
		var b model.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateName renames a building.  It returns ErrBuildingNotFound when the
// building does not exist.
func (r *BuildingRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	const q = "UPDATE buildings SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, q, name, id); err != nil {
		return translate(err)
	}
	return nil
}

// Delete removes a building together with its rooms and their reservations
// inside one transaction.  It returns ErrBuildingNotFound when the building
// does not exist.
func (r *BuildingRepo) Delete(ctx context.Context, id uint64) (err error) {
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

	var found uint64
	if err = tx.QueryRowContext(ctx, "SELECT id FROM buildings WHERE id = ? FOR UPDATE", id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBuildingNotFound
		}
		return err
	}
	// Reservations of every room in the building
	if _, err = tx.ExecContext(ctx,
		`DELETE rv FROM reservations rv
		 JOIN rooms rm ON rm.id = rv.room_id
		 WHERE rm.building_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM rooms WHERE building_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM buildings WHERE id = ?", id); err != nil {
		return err
	}
	return nil
}
