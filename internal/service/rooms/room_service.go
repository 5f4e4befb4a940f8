package rooms

import (
	"context"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"go.uber.org/zap"
)

type RoomUseCase interface {
	List(ctx context.Context) ([]domain.Room, error)
	ListAvailable(ctx context.Context, w domain.DateWindow) ([]domain.Room, error)
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Room, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error)
}

type RoomCache interface {
	GetRooms(ctx context.Context) ([]domain.Room, error)
	SetRooms(ctx context.Context, rooms []domain.Room) error
	InvalidateRooms(ctx context.Context) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.Event)
}

type RoomService struct {
	repo   repository.RoomRepository
	cache  RoomCache
	events EventPublisher
	log    *zap.Logger
}

func NewRoomService(repo repository.RoomRepository, cache RoomCache, events EventPublisher, log *zap.Logger) *RoomService {
	return &RoomService{repo: repo, cache: cache, events: events, log: log.Named("rooms")}
}

func (s *RoomService) List(ctx context.Context) ([]domain.Room, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRooms(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn("room cache read failed", zap.Error(err))
		}
	}

	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRooms(ctx, rooms); err != nil {
			s.log.Warn("room cache write failed", zap.Error(err))
		}
	}
	return rooms, nil
}

func (s *RoomService) ListAvailable(ctx context.Context, w domain.DateWindow) ([]domain.Room, error) {
	return s.repo.ListAvailable(ctx, w)
}

func (s *RoomService) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *RoomService) GetByIDs(ctx context.Context, ids []int64) ([]domain.Room, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *RoomService) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error) {
	room, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateRooms(ctx); err != nil {
			s.log.Warn("room cache invalidate failed", zap.Error(err))
		}
	}
	if s.events != nil {
		s.events.PublishEvent(ctx, domain.Event{
			Type:       domain.EventRoomStatusChanged,
			RoomIDs:    []int64{room.ID},
			Status:     string(room.Status),
			OccurredAt: time.Now().UTC(),
		})
	}
	return room, nil
}

var _ RoomUseCase = (*RoomService)(nil)
