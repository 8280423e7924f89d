package service

import (
	"context"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// UserService exposes the user directory to administrators.
type UserService struct {
	Users *repository.UserRepo
}

func NewUserService(u *repository.UserRepo) *UserService { return &UserService{Users: u} }

// List returns every user.  Admin only.
func (s *UserService) List(ctx context.Context, actor policy.Actor) ([]model.User, error) {
	if err := policy.Allow(actor, policy.ActionList, policy.Resource{Kind: policy.KindUser}); err != nil {
		return nil, err
	}
	return s.Users.List(ctx)
}
