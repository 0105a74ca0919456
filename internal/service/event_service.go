package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Baaaki/event-manager/internal/lock"
	"github.com/Baaaki/event-manager/internal/media"
	"github.com/Baaaki/event-manager/internal/models"
	"github.com/Baaaki/event-manager/internal/repository"
	"github.com/Baaaki/event-manager/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEventExists    = errors.New("event already exists")
	ErrEventNotFound  = errors.New("event not found")
	ErrInvalidEventID = errors.New("invalid event id")
	ErrNotEventOwner  = errors.New("only the owner or an admin can change this event")
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// EventInput carries the fields of a create or replace request.
type EventInput struct {
	Title       string
	Description string
	Flyer       media.Flyer
}

// EventServiceConfig holds the limits applied to event writes.
type EventServiceConfig struct {
	MaxFlyerSize int64
	LockTTL      time.Duration
}

type EventService struct {
	eventRepo *repository.EventRepository
	uploader  media.Uploader
	locker    lock.Locker
	cfg       EventServiceConfig
}

func NewEventService(
	eventRepo *repository.EventRepository,
	uploader media.Uploader,
	locker lock.Locker,
	cfg EventServiceConfig,
) *EventService {
	if locker == nil {
		locker = lock.NopLocker{}
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &EventService{
		eventRepo: eventRepo,
		uploader:  uploader,
		locker:    locker,
		cfg:       cfg,
	}
}

// ListEvents clamps the page size to [1, MaxListLimit] and the offset to >= 0.
func (s *EventService) ListEvents(ctx context.Context, filter repository.EventFilter) ([]models.Event, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	events, err := s.eventRepo.ListEvents(ctx, filter)
	if err != nil {
		logger.Log.Error("Failed to list events", zap.Error(err))
		return nil, err
	}
	return events, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	eventID, err := parseEventID(id)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		logger.Log.Error("Failed to get event", zap.String("event_id", id), zap.Error(err))
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// CreateEvent stores a new event owned by owner.
//
// The (title, owner) pair is checked under a lock keyed on the pair, then the flyer is
// uploaded, then the row is inserted. No row is written unless the upload succeeded.
// The unique index on (title, owner_id) still rejects a duplicate that slips past the
// lock (lock expiry, no Redis configured).
func (s *EventService) CreateEvent(ctx context.Context, owner *models.User, in EventInput) (*models.Event, error) {
	start := time.Now()
	in.Title = strings.TrimSpace(in.Title)

	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	release, err := s.lockPair(ctx, in.Title, owner.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureUnique(ctx, in.Title, owner.ID, uuid.Nil); err != nil {
		return nil, err
	}

	flyerURL, err := s.upload(ctx, in.Flyer)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       in.Title,
		Description: in.Description,
		FlyerURL:    flyerURL,
		OwnerID:     owner.ID,
	}

	if err := s.eventRepo.CreateEvent(ctx, event); err != nil {
		s.discardFlyer(flyerURL)
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Log.Warn("Duplicate event rejected by store",
				zap.String("title", in.Title),
				zap.String("owner", owner.ID.String()),
			)
			return nil, ErrEventExists
		}
		logger.Log.Error("Failed to create event", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("owner", owner.ID.String()),
		zap.Duration("total_duration", time.Since(start)),
	)

	return event, nil
}

// ReplaceEvent overwrites title, description and flyer of an existing event.
// Only the owner or an admin may replace it; the owner never changes.
func (s *EventService) ReplaceEvent(ctx context.Context, actor *models.User, id string, in EventInput) (*models.Event, error) {
	eventID, err := parseEventID(id)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)

	existing, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		logger.Log.Error("Failed to get event", zap.String("event_id", id), zap.Error(err))
		return nil, err
	}
	if existing == nil {
		return nil, ErrEventNotFound
	}

	if existing.OwnerID != actor.ID && !actor.IsAdmin() {
		logger.Log.Warn("Event replace denied",
			zap.String("event_id", id),
			zap.String("actor", actor.ID.String()),
			zap.String("owner", existing.OwnerID.String()),
		)
		return nil, ErrNotEventOwner
	}

	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	release, err := s.lockPair(ctx, in.Title, existing.OwnerID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureUnique(ctx, in.Title, existing.OwnerID, existing.ID); err != nil {
		return nil, err
	}

	flyerURL, err := s.upload(ctx, in.Flyer)
	if err != nil {
		return nil, err
	}

	replacement := &models.Event{
		ID:          existing.ID,
		Title:       in.Title,
		Description: in.Description,
		FlyerURL:    flyerURL,
		OwnerID:     existing.OwnerID,
	}

	replaced, err := s.eventRepo.ReplaceEvent(ctx, replacement)
	if err != nil {
		s.discardFlyer(flyerURL)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEventExists
		}
		logger.Log.Error("Failed to replace event", zap.String("event_id", id), zap.Error(err))
		return nil, err
	}
	if replaced == 0 {
		// deleted between the lookup and the update
		s.discardFlyer(flyerURL)
		return nil, ErrEventNotFound
	}

	s.discardFlyer(existing.FlyerURL)

	logger.Log.Info("Event replaced",
		zap.String("event_id", id),
		zap.String("actor", actor.ID.String()),
	)

	return replacement, nil
}

// DeleteEvent removes an event. A second delete of the same id is ErrEventNotFound.
func (s *EventService) DeleteEvent(ctx context.Context, actor *models.User, id string) error {
	eventID, err := parseEventID(id)
	if err != nil {
		return err
	}

	existing, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		logger.Log.Error("Failed to get event", zap.String("event_id", id), zap.Error(err))
		return err
	}

	deleted, err := s.eventRepo.DeleteEvent(ctx, eventID)
	if err != nil {
		logger.Log.Error("Failed to delete event", zap.String("event_id", id), zap.Error(err))
		return err
	}
	if deleted == 0 {
		return ErrEventNotFound
	}

	if existing != nil {
		s.discardFlyer(existing.FlyerURL)
	}

	logger.Log.Info("Event deleted",
		zap.String("event_id", id),
		zap.String("actor", actor.ID.String()),
	)

	return nil
}

func (s *EventService) validateInput(in EventInput) error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(in.Title) > 200 {
		return fmt.Errorf("%w: title must be at most 200 characters", ErrInvalidInput)
	}
	if err := in.Flyer.Validate(s.cfg.MaxFlyerSize); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (s *EventService) lockPair(ctx context.Context, title string, owner uuid.UUID) (func(), error) {
	release, err := s.locker.Acquire(ctx, "event:"+owner.String()+":"+title, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			logger.Log.Warn("Concurrent write for the same event",
				zap.String("title", title),
				zap.String("owner", owner.String()),
			)
			return nil, ErrEventExists
		}
		logger.Log.Error("Failed to acquire event lock", zap.Error(err))
		return nil, err
	}
	return release, nil
}

func (s *EventService) ensureUnique(ctx context.Context, title string, owner, exclude uuid.UUID) error {
	count, err := s.eventRepo.CountByTitleAndOwner(ctx, title, owner, exclude)
	if err != nil {
		logger.Log.Error("Failed to check event uniqueness", zap.Error(err))
		return err
	}
	if count > 0 {
		logger.Log.Warn("Event already exists",
			zap.String("title", title),
			zap.String("owner", owner.String()),
		)
		return ErrEventExists
	}
	return nil
}

func (s *EventService) upload(ctx context.Context, flyer media.Flyer) (string, error) {
	url, err := s.uploader.Upload(ctx, flyer)
	if err != nil {
		logger.Log.Error("Flyer upload failed", zap.Error(err))
		if errors.Is(err, media.ErrUploadFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", media.ErrUploadFailed, err)
	}
	return url, nil
}

// discardFlyer removes an object that no row references. Failures only leave an orphan.
func (s *EventService) discardFlyer(url string) {
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.uploader.Remove(ctx, url); err != nil {
		logger.Log.Warn("Failed to remove flyer",
			zap.String("flyer_url", url),
			zap.Error(err),
		)
	}
}

func parseEventID(id string) (uuid.UUID, error) {
	eventID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, ErrInvalidEventID
	}
	return eventID, nil
}
