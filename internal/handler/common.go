package handler

import (
	"errors"
	"net/http"

	"go-ticket-ledger/pkg/apperrors"
	"go-ticket-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// handleError maps the ledger error taxonomy onto HTTP statuses. Capacity
// failures carry the offending tier and its remaining count in the body so
// the caller can offer a reduced quantity.
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var capErr *apperrors.CapacityError
	switch {
	case errors.As(err, &capErr):
		log.Warn("Insufficient capacity")
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Insufficient capacity",
			"tier_id":   capErr.TierID,
			"requested": capErr.Requested,
			"remaining": capErr.Remaining,
		})
	case errors.Is(err, apperrors.ErrInsufficientCapacity):
		log.Warn("Insufficient capacity")
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient capacity"})
	case errors.Is(err, apperrors.ErrInvalidRequest):
		log.Warn("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrTierNotFound):
		log.Warn("Tier not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Tier not found"})
	case errors.Is(err, apperrors.ErrReservationNotFound):
		log.Warn("Reservation not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		log.Error("Store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable, retry with the same idempotency key"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
