package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	anon := Actor{}
	alice := Actor{UserID: 1, Role: RoleUser}
	bob := Actor{UserID: 2, Role: RoleUser}
	admin := Actor{UserID: 9, Role: RoleAdmin}
	alicesBooking := Resource{Kind: KindReservation, OwnerID: alice.UserID}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		res    Resource
		want   error
	}{
		{"anyone lists rooms", anon, ActionList, Resource{Kind: KindRoom}, nil},
		{"anyone reads a building", anon, ActionRead, Resource{Kind: KindBuilding}, nil},
		{"anonymous cannot create rooms", anon, ActionCreate, Resource{Kind: KindRoom}, ErrUnauthenticated},
		{"user cannot create rooms", alice, ActionCreate, Resource{Kind: KindRoom}, ErrForbidden},
		{"user cannot delete buildings", alice, ActionDelete, Resource{Kind: KindBuilding}, ErrForbidden},
		{"admin updates rooms", admin, ActionUpdate, Resource{Kind: KindRoom}, nil},
		{"admin deletes buildings", admin, ActionDelete, Resource{Kind: KindBuilding}, nil},

		{"anonymous cannot list reservations", anon, ActionList, Resource{Kind: KindReservation}, ErrUnauthenticated},
		{"user lists reservations", bob, ActionList, Resource{Kind: KindReservation}, nil},
		{"user reads someone else's reservation", bob, ActionRead, alicesBooking, nil},
		{"user creates reservations", bob, ActionCreate, Resource{Kind: KindReservation}, nil},
		{"author updates", alice, ActionUpdate, alicesBooking, nil},
		{"other user cannot update", bob, ActionUpdate, alicesBooking, ErrForbidden},
		{"admin cannot update someone else's reservation", admin, ActionUpdate, alicesBooking, ErrForbidden},
		{"author deletes", alice, ActionDelete, alicesBooking, nil},
		{"admin deletes any reservation", admin, ActionDelete, alicesBooking, nil},
		{"other user cannot delete", bob, ActionDelete, alicesBooking, ErrForbidden},

		{"admin lists users", admin, ActionList, Resource{Kind: KindUser}, nil},
		{"user cannot list users", alice, ActionList, Resource{Kind: KindUser}, ErrForbidden},
		{"unknown kind", admin, ActionRead, Resource{Kind: "seat"}, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.actor, tt.action, tt.res))
		})
	}
}
