package handler

import (
	"net/http"
	"time"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/:uuid", h.GetByEventID)
		router.POST("events", h.Create)
		router.PUT("events/:uuid", h.UpdateByEventID)
		router.POST("events/:uuid/open", h.OpenForSale)
		router.GET("events/:uuid/tiers", h.ListTiers)
		router.POST("events/:uuid/tiers", h.AddTier)
	}
}

// CreateTierRequest is one tier of a create-event (or add-tier) payload.
// TotalCapacity is a pointer so an explicit zero (a placeholder tier with no
// sellable inventory yet) passes the required check.
type CreateTierRequest struct {
	Name          string  `json:"name" binding:"required"`
	Price         float64 `json:"price"`
	Benefits      *string `json:"benefits"`
	TotalCapacity *int    `json:"total_capacity" binding:"required"`
}

type CreateEventRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description *string             `json:"description"`
	StartsAt    time.Time           `json:"starts_at" binding:"required"`
	Venue       string              `json:"venue" binding:"required"`
	Tiers       []CreateTierRequest `json:"tiers"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	Venue       *string    `json:"venue"`
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c)
	if err != nil {
		handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByEventID(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "uuid", "Invalid event uuid")
	if !ok {
		return
	}
	event, err := h.service.GetByEventID(c, eventID)
	if err != nil {
		handleError(c, err, "GetByEventID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	event := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		Venue:       req.Venue,
	}
	tiers := make([]*model.Tier, len(req.Tiers))
	for i, t := range req.Tiers {
		tiers[i] = &model.Tier{
			Name:          t.Name,
			Price:         t.Price,
			Benefits:      t.Benefits,
			TotalCapacity: *t.TotalCapacity,
		}
	}

	created, err := h.service.Create(c, event, tiers)
	if err != nil {
		handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) UpdateByEventID(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "uuid", "Invalid event uuid")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.Title == nil && req.Description == nil && req.StartsAt == nil && req.Venue == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of title, description, starts_at or venue is required"})
		return
	}
	params := model.UpdateEventParams{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		Venue:       req.Venue,
	}
	updated, err := h.service.UpdateByEventID(c, eventID, params)
	if err != nil {
		handleError(c, err, "UpdateByEventID")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) OpenForSale(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "uuid", "Invalid event uuid")
	if !ok {
		return
	}
	if err := h.service.OpenForSale(c, eventID); err != nil {
		handleError(c, err, "OpenForSale")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) ListTiers(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "uuid", "Invalid event uuid")
	if !ok {
		return
	}
	tiers, err := h.service.ListTiers(c, eventID)
	if err != nil {
		handleError(c, err, "ListTiers")
		return
	}
	c.JSON(http.StatusOK, tiers)
}

func (h *EventHandler) AddTier(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "uuid", "Invalid event uuid")
	if !ok {
		return
	}
	var req CreateTierRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	tier := &model.Tier{
		Name:          req.Name,
		Price:         req.Price,
		Benefits:      req.Benefits,
		TotalCapacity: *req.TotalCapacity,
	}
	created, err := h.service.AddTier(c, eventID, tier)
	if err != nil {
		handleError(c, err, "AddTier")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func parseUUIDParam(c *gin.Context, name, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return uuid.Nil, false
	}
	return id, true
}
