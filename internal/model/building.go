package model

import "time"

// Building groups rooms physically.  Deleting a building deletes its rooms
// and, through them, their reservations.
//
// Fields:
//  ID        - primary key identifier.
//  Name      - unique display name.
//  CreatedAt - creation timestamp.
//  UpdatedAt - last update timestamp.
type Building struct {
	ID        uint64    `json:"id"`         // buildings.id
	Name      string    `json:"name"`       // buildings.name
	CreatedAt time.Time `json:"created_at"` // buildings.created_at
	UpdatedAt time.Time `json:"updated_at"` // buildings.updated_at
}

// Room is a bookable space inside a building.  Name and slug are unique
// across all buildings; the (name, building) pair is unique as well.
//
// Fields:
//  ID          - primary key identifier.
//  Name        - unique room name.
//  Slug        - unique URL-safe identifier used by the HTML pages.
//  Description - free text, at most 400 characters.
//  BuildingID  - owning building.
//  CreatedAt   - creation timestamp.
//  UpdatedAt   - last update timestamp.
type Room struct {
	ID          uint64    `json:"id"`          // rooms.id
	Name        string    `json:"name"`        // rooms.name
	Slug        string    `json:"slug"`        // rooms.slug
	Description string    `json:"description"` // rooms.description
	BuildingID  uint64    `json:"building"`    // rooms.building_id
	CreatedAt   time.Time `json:"created_at"`  // rooms.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // rooms.updated_at
}
