package middleware

// identity.go defines the context keys the auth middleware fills and the
// helpers handlers and other middleware use to read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/utils"
)

// Context keys set by JWTAuth and OptionalJWT.
const (
	KeyUserID   = "user_id"  // uint64
	KeyUsername = "username" // string
	KeyRole     = "role"     // string
)

func setIdentity(c echo.Context, id utils.Identity) {
	c.Set(KeyUserID, id.UserID)
	c.Set(KeyUsername, id.Username)
	c.Set(KeyRole, id.Role)
}

// Actor returns the caller as seen by the policy package.  Requests without
// a verified token yield the anonymous actor.
func Actor(c echo.Context) policy.Actor {
	uid, _ := c.Get(KeyUserID).(uint64)
	role, _ := c.Get(KeyRole).(string)
	return policy.Actor{UserID: uid, Role: role}
}

// Username returns the authenticated username or "".
func Username(c echo.Context) string {
	u, _ := c.Get(KeyUsername).(string)
	return u
}

// userID returns the caller id as a string for cache and rate-limit keys,
// or "anon" when no user is authenticated.
func userID(c echo.Context) string {
	if uid, ok := c.Get(KeyUserID).(uint64); ok && uid != 0 {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}
