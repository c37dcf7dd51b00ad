package handler

import (
	"net/http"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

type TierHandler struct {
	service service.TierService
}

func NewTierHandler(service service.TierService) *TierHandler {
	return &TierHandler{service: service}
}

func (h *TierHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("tiers/:uuid", h.GetByTierID)
		router.PUT("tiers/:uuid", h.UpdateByTierID)
		router.PUT("tiers/:uuid/capacity", h.AdjustCapacity)
		router.DELETE("tiers/:uuid", h.DeleteByTierID)
	}
}

type UpdateTierRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Benefits *string  `json:"benefits"`
}

// AdjustCapacityRequest moves total capacity by a signed delta. Absolute
// overwrites are deliberately not offered: they would clobber the sold count.
type AdjustCapacityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *TierHandler) GetByTierID(c *gin.Context) {
	tierID, ok := parseUUIDParam(c, "uuid", "Invalid tier uuid")
	if !ok {
		return
	}
	tier, err := h.service.GetByTierID(c, tierID)
	if err != nil {
		handleError(c, err, "GetByTierID")
		return
	}
	c.JSON(http.StatusOK, tier)
}

func (h *TierHandler) UpdateByTierID(c *gin.Context) {
	tierID, ok := parseUUIDParam(c, "uuid", "Invalid tier uuid")
	if !ok {
		return
	}
	var req UpdateTierRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.Name == nil && req.Price == nil && req.Benefits == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of name, price or benefits is required"})
		return
	}
	params := model.UpdateTierParams{
		Name:     req.Name,
		Price:    req.Price,
		Benefits: req.Benefits,
	}
	updated, err := h.service.UpdateByTierID(c, tierID, params)
	if err != nil {
		handleError(c, err, "UpdateByTierID")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TierHandler) AdjustCapacity(c *gin.Context) {
	tierID, ok := parseUUIDParam(c, "uuid", "Invalid tier uuid")
	if !ok {
		return
	}
	var req AdjustCapacityRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	updated, err := h.service.AdjustCapacityByTierID(c, tierID, req.Delta)
	if err != nil {
		handleError(c, err, "AdjustCapacity")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TierHandler) DeleteByTierID(c *gin.Context) {
	tierID, ok := parseUUIDParam(c, "uuid", "Invalid tier uuid")
	if !ok {
		return
	}
	if err := h.service.DeleteByTierID(c, tierID); err != nil {
		handleError(c, err, "DeleteByTierID")
		return
	}
	c.Status(http.StatusNoContent)
}
