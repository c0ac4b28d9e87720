package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nthoangDev/event-management/internal/models"
	"github.com/nthoangDev/event-management/internal/repository"
)

var ErrInvalidEvent = errors.New("event is missing required fields")

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ApproveEvent(ctx context.Context, id uint) (*models.Event, error)
}

type eventService struct {
	repo      repository.EventRepository
	publisher BookedPublisher
}

func NewEventService(repo repository.EventRepository, publisher BookedPublisher) EventService {
	return &eventService{repo: repo, publisher: publisher}
}

func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.Name == "" || event.OrganizerID == "" || event.EventTime.IsZero() {
		return ErrInvalidEvent
	}
	if event.RegularPrice.IsNegative() || (event.VIPPrice != nil && event.VIPPrice.IsNegative()) {
		return ErrInvalidEvent
	}
	event.Status = models.EventPending

	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("event.created", event)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.repo.FindApproved(ctx)
}

func (s *eventService) ApproveEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrEventNotFound
	}
	if event.Status == models.EventApproved {
		return event, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, models.EventApproved); err != nil {
		return nil, fmt.Errorf("approve event: %w", err)
	}
	event.Status = models.EventApproved
	return event, nil
}
