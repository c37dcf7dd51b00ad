package handler

import (
	"net/http"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	service service.LedgerService
}

func NewPurchaseHandler(service service.LedgerService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("purchases", h.PurchaseTickets)
		router.GET("purchases/:key", h.GetPurchase)
	}
}

func (h *PurchaseHandler) PurchaseTickets(c *gin.Context) {
	var req model.PurchaseRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	confirmation, err := h.service.PurchaseTickets(c, req)
	if err != nil {
		handleError(c, err, "PurchaseTickets")
		return
	}

	c.JSON(http.StatusCreated, confirmation)
}

func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	key := c.Param("key")

	confirmation, err := h.service.GetPurchase(c, key)
	if err != nil {
		handleError(c, err, "GetPurchase")
		return
	}

	c.JSON(http.StatusOK, confirmation)
}
