package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// RoomInput is a room create or update request.  Nil fields were not
// supplied; on a partial update they keep their stored value.
type RoomInput struct {
	Name        *string
	Slug        *string
	Description *string
	Building    *uint64
}

// RoomService manages the room registry and answers availability queries.
type RoomService struct {
	Rooms *repository.RoomRepo
	Cache CacheInvalidator
}

func NewRoomService(rooms *repository.RoomRepo, cache CacheInvalidator) *RoomService {
	return &RoomService{Rooms: rooms, Cache: cache}
}

// List returns all rooms when w is nil, otherwise the rooms with no
// reservation lying wholly inside w.  Either way rooms are ordered by
// building and name.
func (s *RoomService) List(ctx context.Context, w *booking.Window) ([]model.Room, error) {
	if w == nil {
		return s.Rooms.List(ctx)
	}
	rooms, err := s.Rooms.ListAvailable(ctx, *w)
	if err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, id uint64) (*model.Room, error) {
	return s.Rooms.GetByID(ctx, id)
}

func (s *RoomService) GetBySlug(ctx context.Context, slug string) (*model.Room, error) {
	return s.Rooms.GetBySlug(ctx, slug)
}

// Create adds a room.  Without an explicit slug one is derived from the
// name.
func (s *RoomService) Create(ctx context.Context, actor policy.Actor, in RoomInput) (*model.Room, error) {
	if err := policy.Allow(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindRoom}); err != nil {
		return nil, err
	}
	rm := &model.Room{}
	if err := applyRoomInput(rm, in, false); err != nil {
		return nil, err
	}
	if err := s.Rooms.Create(ctx, rm); err != nil {
		return nil, err
	}
	afterCommit(ctx, "room cache purge", purgeFunc(s.Cache))
	return rm, nil
}

// Update changes a room.  A rename without an explicit slug keeps the
// stored slug.
func (s *RoomService) Update(ctx context.Context, actor policy.Actor, id uint64, in RoomInput, partial bool) (*model.Room, error) {
	if err := policy.Allow(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindRoom}); err != nil {
		return nil, err
	}
	rm, err := s.Rooms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyRoomInput(rm, in, partial); err != nil {
		return nil, err
	}
	if err := s.Rooms.Update(ctx, rm); err != nil {
		return nil, err
	}
	afterCommit(ctx, "room cache purge", purgeFunc(s.Cache))
	return rm, nil
}

// Delete removes a room and its reservations.
func (s *RoomService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Allow(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindRoom}); err != nil {
		return err
	}
	if err := s.Rooms.Delete(ctx, id); err != nil {
		return err
	}
	afterCommit(ctx, "room cache purge", purgeFunc(s.Cache))
	return nil
}

// applyRoomInput merges in onto rm.  Name and building must end up set;
// description is cleared by a full update that omits it.
func applyRoomInput(rm *model.Room, in RoomInput, partial bool) error {
	verr := &booking.ValidationError{}
	if in.Name != nil {
		rm.Name = strings.TrimSpace(*in.Name)
	}
	if rm.Name == "" {
		verr.Add("name", MsgRequired)
	}
	if in.Building != nil {
		rm.BuildingID = *in.Building
	}
	if rm.BuildingID == 0 {
		verr.Add("building", MsgRequired)
	}
	if in.Description != nil {
		rm.Description = *in.Description
	} else if !partial {
		rm.Description = ""
	}
	switch {
	case in.Slug != nil && strings.TrimSpace(*in.Slug) != "":
		rm.Slug = slug.Make(*in.Slug)
	case rm.Slug == "":
		rm.Slug = slug.Make(rm.Name)
	}
	if rm.Slug == "" && rm.Name != "" {
		verr.Add("slug", "Enter a valid slug.")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
