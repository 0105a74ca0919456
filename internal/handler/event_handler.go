package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/Baaaki/event-manager/internal/media"
	"github.com/Baaaki/event-manager/internal/middleware"
	"github.com/Baaaki/event-manager/internal/repository"
	"github.com/Baaaki/event-manager/internal/service"
	"github.com/Baaaki/event-manager/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventHandler struct {
	eventService *service.EventService
}

func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

type ListEventsQuery struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Limit       int    `form:"limit"`
	Skip        int    `form:"skip"`
}

// ListEvents returns a page of events, optionally filtered by title or description
// GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	var q ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	events, err := h.eventService.ListEvents(c.Request.Context(), repository.EventFilter{
		Title:       q.Title,
		Description: q.Description,
		Limit:       q.Limit,
		Skip:        q.Skip,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": events,
	})
}

// GetEvent returns a single event
// GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": event,
	})
}

// CreateEvent stores a new event owned by the caller
// POST /events (multipart: title, description, flyer)
func (h *EventHandler) CreateEvent(c *gin.Context) {
	owner, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	in, closeFlyer, err := eventInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFlyer()

	logger.Log.Info("Event creation attempt",
		zap.String("owner", owner.ID.String()),
		zap.String("title", in.Title),
	)

	event, err := h.eventService.CreateEvent(c.Request.Context(), owner, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event added successfully",
		"data":    event,
	})
}

// ReplaceEvent overwrites an event the caller owns (admins may replace any)
// PUT /events/:id (multipart: title, description, flyer)
func (h *EventHandler) ReplaceEvent(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	in, closeFlyer, err := eventInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFlyer()

	event, err := h.eventService.ReplaceEvent(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event replaced successfully",
		"data":    event,
	})
}

// DeleteEvent removes an event
// DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event delete successfully!",
	})
}

// eventInput reads title, description and the flyer file from the form.
// A missing flyer yields an empty media.Flyer, which the service rejects.
func eventInput(c *gin.Context) (service.EventInput, func(), error) {
	in := service.EventInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}

	header, err := c.FormFile("flyer")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return in, func() {}, nil
		}
		logger.Log.Warn("Failed to read flyer", zap.Error(err))
		return in, func() {}, service.ErrInvalidInput
	}

	file, err := header.Open()
	if err != nil {
		logger.Log.Error("Failed to open flyer", zap.Error(err))
		return in, func() {}, err
	}

	in.Flyer = flyerFromHeader(header, file)
	return in, func() { _ = file.Close() }, nil
}

func flyerFromHeader(header *multipart.FileHeader, file multipart.File) media.Flyer {
	return media.Flyer{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}
