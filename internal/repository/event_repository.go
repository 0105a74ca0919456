package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Baaaki/event-manager/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventFilter selects events for listing. Empty Title and Description match everything;
// when both are set an event matching either is returned.
type EventFilter struct {
	Title       string
	Description string
	Limit       int
	Skip        int
}

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// CountByTitleAndOwner counts events with exactly this (title, owner) pair,
// ignoring the event with id exclude (uuid.Nil excludes nothing).
func (r *EventRepository) CountByTitleAndOwner(ctx context.Context, title string, owner, exclude uuid.UUID) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("title = ? AND owner_id = ?", title, owner)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Count(&count).Error
	return count, err
}

// CreateEvent inserts event; a duplicate (title, owner) yields ErrDuplicate.
func (r *EventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

// ListEvents returns events newest first
func (r *EventRepository) ListEvents(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	events := []models.Event{}
	q := r.db.WithContext(ctx).Model(&models.Event{})

	var clauses []string
	var args []interface{}
	if filter.Title != "" {
		clauses = append(clauses, `LOWER(title) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Title))
	}
	if filter.Description != "" {
		clauses = append(clauses, `LOWER(description) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Description))
	}
	if len(clauses) > 0 {
		q = q.Where(strings.Join(clauses, " OR "), args...)
	}

	err := q.
		Order("created_at DESC").
		Order("id").
		Limit(filter.Limit).
		Offset(filter.Skip).
		Find(&events).Error

	return events, err
}

// GetEventByID returns nil, nil when no event matches.
func (r *EventRepository) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// ReplaceEvent overwrites the mutable fields of the event with event.ID.
// The owner is never changed. Returns the number of rows replaced.
func (r *EventRepository) ReplaceEvent(ctx context.Context, event *models.Event) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"title":       event.Title,
			"description": event.Description,
			"flyer_url":   event.FlyerURL,
		})
	return result.RowsAffected, translate(result.Error)
}

// DeleteEvent removes the event and reports how many rows were removed
func (r *EventRepository) DeleteEvent(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{})
	return result.RowsAffected, result.Error
}

// likePattern builds a case-insensitive substring pattern with LIKE wildcards escaped.
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
