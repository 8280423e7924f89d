package service

import (
	"context"
	"strings"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/policy"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// BuildingService manages buildings.  Deleting a building removes its rooms
// and their reservations.
type BuildingService struct {
	Buildings *repository.BuildingRepo
	Cache     CacheInvalidator
}

func NewBuildingService(b *repository.BuildingRepo, cache CacheInvalidator) *BuildingService {
	return &BuildingService{Buildings: b, Cache: cache}
}

func (s *BuildingService) List(ctx context.Context) ([]model.Building, error) {
	return s.Buildings.List(ctx)
}

func (s *BuildingService) Get(ctx context.Context, id uint64) (*model.Building, error) {
	return s.Buildings.GetByID(ctx, id)
}

func (s *BuildingService) Create(ctx context.Context, actor policy.Actor, name string) (*model.Building, error) {
	if err := policy.Allow(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindBuilding}); err != nil {
		return nil, err
	}
	name, err := buildingName(name)
	if err != nil {
		return nil, err
	}
	b := &model.Building{Name: name}
	if err := s.Buildings.Create(ctx, b); err != nil {
		return nil, err
	}
	afterCommit(ctx, "building cache purge", purgeFunc(s.Cache))
	return b, nil
}

func (s *BuildingService) Rename(ctx context.Context, actor policy.Actor, id uint64, name string) (*model.Building, error) {
	if err := policy.Allow(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindBuilding}); err != nil {
		return nil, err
	}
	name, err := buildingName(name)
	if err != nil {
		return nil, err
	}
	if err := s.Buildings.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	afterCommit(ctx, "building cache purge", purgeFunc(s.Cache))
	return s.Buildings.GetByID(ctx, id)
}

func (s *BuildingService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Allow(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindBuilding}); err != nil {
		return err
	}
	if err := s.Buildings.Delete(ctx, id); err != nil {
		return err
	}
	afterCommit(ctx, "building cache purge", purgeFunc(s.Cache))
	return nil
}

func buildingName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		verr := &booking.ValidationError{}
		verr.Add("name", MsgRequired)
		return "", verr
	}
	return name, nil
}
