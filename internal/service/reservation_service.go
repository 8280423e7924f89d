package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/policy"
	q "github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// FieldRoom is the request field naming the reserved room.
const FieldRoom = "room"

// MsgRequired is reported for a required field that was not supplied.
const MsgRequired = "This field is required."

// ReservationInput is a create or update request.  Nil fields were not
// supplied; on a partial update they keep their stored value.
type ReservationInput struct {
	Room         *uint64
	DatetimeFrom *string
	DatetimeTo   *string
}

// ReservationService is the persistence gateway for reservations.  Every
// write validates the candidate against the room's other reservations
// inside one transaction that holds a row lock on the room, so two
// writers racing for the same room cannot both pass validation.
type ReservationService struct {
	DB           *sql.DB
	Rooms        *repository.RoomRepo
	Reservations *repository.ReservationRepo
	Users        *repository.UserRepo
	Events       EventPublisher
	Cache        CacheInvalidator
	PageSize     int
	Now          func() time.Time
}

// NewReservationService wires a ReservationService over db.  events may be
// nil, meaning no events are published.
func NewReservationService(db *sql.DB, events EventPublisher, cache CacheInvalidator, pageSize int) *ReservationService {
	if events == nil {
		events = NopPublisher{}
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ReservationService{
		DB:           db,
		Rooms:        repository.NewRoomRepo(db),
		Reservations: repository.NewReservationRepo(db),
		Users:        repository.NewUserRepo(db),
		Events:       events,
		Cache:        cache,
		PageSize:     pageSize,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// Get returns one reservation.
func (s *ReservationService) Get(ctx context.Context, actor policy.Actor, id uint64) (*model.Reservation, error) {
	if err := policy.Allow(actor, policy.ActionRead, policy.Resource{Kind: policy.KindReservation}); err != nil {
		return nil, err
	}
	return s.Reservations.GetByID(ctx, id)
}

// List returns one page of all reservations in default order.
func (s *ReservationService) List(ctx context.Context, actor policy.Actor, page int) (Page[model.Reservation], error) {
	if err := policy.Allow(actor, policy.ActionList, policy.Resource{Kind: policy.KindReservation}); err != nil {
		return Page[model.Reservation]{}, err
	}
	page, offset := normalizePage(page, s.PageSize)
	items, total, err := s.Reservations.List(ctx, s.PageSize, offset)
	if err != nil {
		return Page[model.Reservation]{}, fmt.Errorf("list reservations: %w", err)
	}
	return Page[model.Reservation]{Items: items, Number: page, Size: s.PageSize, Total: total}, nil
}

// ListByRoom returns the room and all of its reservations in default order.
func (s *ReservationService) ListByRoom(ctx context.Context, actor policy.Actor, roomID uint64) (*model.Room, []model.Reservation, error) {
	if err := policy.Allow(actor, policy.ActionList, policy.Resource{Kind: policy.KindReservation}); err != nil {
		return nil, nil, err
	}
	room, err := s.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.Reservations.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("list room reservations: %w", err)
	}
	return room, items, nil
}

// ListByAuthor returns the user named username and one page of their
// reservations.
func (s *ReservationService) ListByAuthor(ctx context.Context, actor policy.Actor, username string, page int) (*model.User, Page[model.Reservation], error) {
	if err := policy.Allow(actor, policy.ActionList, policy.Resource{Kind: policy.KindReservation}); err != nil {
		return nil, Page[model.Reservation]{}, err
	}
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Page[model.Reservation]{}, err
	}
	page, offset := normalizePage(page, s.PageSize)
	items, total, err := s.Reservations.ListByAuthor(ctx, u.ID, s.PageSize, offset)
	if err != nil {
		return nil, Page[model.Reservation]{}, fmt.Errorf("list author reservations: %w", err)
	}
	return u, Page[model.Reservation]{Items: items, Number: page, Size: s.PageSize, Total: total}, nil
}

// Create validates and stores a new reservation authored by actor.
func (s *ReservationService) Create(ctx context.Context, actor policy.Actor, in ReservationInput) (*model.Reservation, error) {
	if err := policy.Allow(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindReservation}); err != nil {
		return nil, err
	}
	cand := booking.NewCandidate(deref(in.DatetimeFrom), deref(in.DatetimeTo))
	if err := precheck(in, cand); err != nil {
		return nil, err
	}

	rv := &model.Reservation{RoomID: *in.Room, AuthorID: actor.UserID}
	err := s.inRoomTx(ctx, []uint64{rv.RoomID}, func(tx *sql.Tx) error {
		existing, err := s.Reservations.ListForValidationTx(ctx, tx, rv.RoomID, 0, booking.SearchBounds(cand))
		if err != nil {
			return err
		}
		if err := booking.Validate(cand, existing); err != nil {
			return err
		}
		rv.DatetimeFrom, rv.DatetimeTo = *cand.From, *cand.To
		return s.Reservations.CreateTx(ctx, tx, rv)
	})
	if err != nil {
		return nil, err
	}
	return s.afterWrite(ctx, q.EventCreated, rv), nil
}

// Update changes the room and/or interval of an existing reservation.  Only
// the author may update.  When partial is true absent fields keep their
// stored values; otherwise every field must be supplied.
func (s *ReservationService) Update(ctx context.Context, actor policy.Actor, id uint64, in ReservationInput, partial bool) (*model.Reservation, error) {
	if !actor.Authenticated() {
		return nil, policy.ErrUnauthenticated
	}
	cur, err := s.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Allow(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindReservation, OwnerID: cur.AuthorID}); err != nil {
		return nil, err
	}

	if partial {
		if in.Room == nil {
			in.Room = &cur.RoomID
		}
		if in.DatetimeFrom == nil {
			v := cur.DatetimeFrom.Format(time.RFC3339Nano)
			in.DatetimeFrom = &v
		}
		if in.DatetimeTo == nil {
			v := cur.DatetimeTo.Format(time.RFC3339Nano)
			in.DatetimeTo = &v
		}
	}
	cand := booking.NewCandidate(deref(in.DatetimeFrom), deref(in.DatetimeTo))
	if err := precheck(in, cand); err != nil {
		return nil, err
	}

	rv := *cur
	rv.RoomID = *in.Room
	err = s.inRoomTx(ctx, []uint64{cur.RoomID, rv.RoomID}, func(tx *sql.Tx) error {
		existing, err := s.Reservations.ListForValidationTx(ctx, tx, rv.RoomID, rv.ID, booking.SearchBounds(cand))
		if err != nil {
			return err
		}
		if err := booking.Validate(cand, existing); err != nil {
			return err
		}
		rv.DatetimeFrom, rv.DatetimeTo = *cand.From, *cand.To
		return s.Reservations.UpdateTx(ctx, tx, &rv)
	})
	if err != nil {
		return nil, err
	}
	return s.afterWrite(ctx, q.EventUpdated, &rv), nil
}

// Delete removes a reservation.  The author or an admin may delete.
func (s *ReservationService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if !actor.Authenticated() {
		return policy.ErrUnauthenticated
	}
	cur, err := s.Reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Allow(actor, policy.ActionDelete, policy.Resource{Kind: policy.KindReservation, OwnerID: cur.AuthorID}); err != nil {
		return err
	}
	if err := s.Reservations.Delete(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, q.EventDeleted, cur)
	afterCommit(ctx, "reservation cache purge", purgeFunc(s.Cache))
	return nil
}

// precheck reports missing or unparseable input before any store access.
// Absent or blank fields are required; present ones that fail to parse
// are badly formatted.
func precheck(in ReservationInput, cand booking.Candidate) error {
	verr := &booking.ValidationError{}
	if in.Room == nil {
		verr.Add(FieldRoom, MsgRequired)
	}
	checkBound(verr, booking.FieldFrom, in.DatetimeFrom, cand.From)
	checkBound(verr, booking.FieldTo, in.DatetimeTo, cand.To)
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func checkBound(verr *booking.ValidationError, field string, raw *string, parsed *time.Time) {
	switch {
	case raw == nil || strings.TrimSpace(*raw) == "":
		verr.Add(field, MsgRequired)
	case parsed == nil:
		verr.Add(field, booking.MsgBadFormat)
	}
}

// inRoomTx runs fn in a transaction after locking every listed room in
// ascending id order.  Duplicates are locked once.  A missing room aborts
// with repository.ErrRoomNotFound.
func (s *ReservationService) inRoomTx(ctx context.Context, roomIDs []uint64, fn func(*sql.Tx) error) (err error) {
	ids := append([]uint64(nil), roomIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		if err = s.Rooms.LockTx(ctx, tx, id); err != nil {
			return err
		}
	}
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// afterWrite reloads rv with its joined names, publishes the event and
// purges the response cache.  A failed reload falls back to rv as written.
func (s *ReservationService) afterWrite(ctx context.Context, kind string, rv *model.Reservation) *model.Reservation {
	out := rv
	if full, err := s.Reservations.GetByID(ctx, rv.ID); err == nil {
		out = full
	}
	s.emit(ctx, kind, out)
	afterCommit(ctx, "reservation cache purge", purgeFunc(s.Cache))
	return out
}

func (s *ReservationService) emit(ctx context.Context, kind string, rv *model.Reservation) {
	ev := q.ReservationEvent{
		Type:          kind,
		ReservationID: rv.ID,
		RoomID:        rv.RoomID,
		RoomName:      rv.RoomName,
		AuthorID:      rv.AuthorID,
		Author:        rv.Author,
		DatetimeFrom:  q.FormatTime(rv.DatetimeFrom),
		DatetimeTo:    q.FormatTime(rv.DatetimeTo),
		OccurredAt:    q.FormatTime(s.Now()),
	}
	afterCommit(ctx, "publish "+kind, func(ctx context.Context) error {
		return s.Events.Publish(ctx, ev)
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
