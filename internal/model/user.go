package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Role is either USER or ADMIN; only ADMIN may manage rooms and
// buildings.  PasswordHash is never serialized.
//
// Fields:
//  ID           - primary key identifier of the user.
//  Username     - unique login and public profile name.
//  Email        - unique email address.
//  PasswordHash - bcrypt hashed password.
//  Role         - USER or ADMIN.
//  IsActive     - whether the account may log in.
//  CreatedAt    - timestamp of creation.
//  UpdatedAt    - timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Username     string    `json:"username"`   // users.username
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash
	Role         string    `json:"role"`       // users.role
	IsActive     bool      `json:"is_active"`  // users.is_active
	CreatedAt    time.Time `json:"created_at"` // users.created_at
	UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}
