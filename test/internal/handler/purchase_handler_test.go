package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"go-ticket-ledger/internal/handler"
	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/pkg/apperrors"
	serviceMocks "go-ticket-ledger/test/internal/mocks/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupPurchaseRouter() (*gin.Engine, *serviceMocks.LedgerServiceMock) {
	svc := serviceMocks.NewLedgerServiceMock()
	router := gin.New()
	handler.NewPurchaseHandler(svc).RegisterRoutes(router)
	return router, svc
}

func TestPurchaseHandler_PurchaseTickets(t *testing.T) {
	eventID := uuid.New()
	tierID := uuid.New()

	validBody := gin.H{
		"event_id":        eventID,
		"idempotency_key": "order-abc",
		"items":           []gin.H{{"tier_id": tierID, "quantity": 2}},
	}

	t.Run("Success", func(t *testing.T) {
		router, svc := setupPurchaseRouter()

		confirmation := &model.PurchaseConfirmation{
			EventID: eventID,
			Items: []model.ConfirmationLine{
				{TierID: tierID, Quantity: 2, UnitPrice: 150, Remaining: 48},
			},
			TotalPrice:  300,
			CommittedAt: time.Now().UTC(),
		}
		svc.On("PurchaseTickets", mock.Anything, mock.MatchedBy(func(req model.PurchaseRequest) bool {
			return req.IdempotencyKey == "order-abc" && len(req.Items) == 1
		})).Return(confirmation, nil).Once()

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/purchases", validBody)
		w := serveRequest(router, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, 300.0, body["total_price"])
		svc.AssertExpectations(t)
	})

	t.Run("Failed - malformed JSON", func(t *testing.T) {
		router, svc := setupPurchaseRouter()

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/purchases", InvalidJSON)
		w := serveRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "PurchaseTickets")
	})

	t.Run("Failed - validation rejected", func(t *testing.T) {
		router, svc := setupPurchaseRouter()

		svc.On("PurchaseTickets", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: quantity must be positive for tier %s", apperrors.ErrInvalidRequest, tierID)).Once()

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/purchases", validBody)
		w := serveRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["error"], "quantity must be positive")
	})

	t.Run("Failed - insufficient capacity carries tier detail", func(t *testing.T) {
		router, svc := setupPurchaseRouter()

		svc.On("PurchaseTickets", mock.Anything, mock.Anything).
			Return(nil, &apperrors.CapacityError{TierID: tierID, Requested: 2, Remaining: 1}).Once()

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/purchases", validBody)
		w := serveRequest(router, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Insufficient capacity", body["error"])
		assert.Equal(t, tierID.String(), body["tier_id"])
		assert.Equal(t, 2.0, body["requested"])
		assert.Equal(t, 1.0, body["remaining"])
	})

	t.Run("Failed - event not found", func(t *testing.T) {
		router, svc := setupPurchaseRouter()

		svc.On("PurchaseTickets", mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrEventNotFound).Once()

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/purchases", validBody)
		w := serveRequest(router, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Failed - store unavailable maps to 503", func(t *testing.T) {
		router, svc := setupPurchaseRouter()

		svc.On("PurchaseTickets", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: connection refused", apperrors.ErrStoreUnavailable)).Once()

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/purchases", validBody)
		w := serveRequest(router, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["error"], "idempotency key")
	})
}

func TestPurchaseHandler_GetPurchase(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, svc := setupPurchaseRouter()

		eventID := uuid.New()
		confirmation := &model.PurchaseConfirmation{
			EventID:     eventID,
			Items:       []model.ConfirmationLine{{TierID: uuid.New(), Quantity: 1, UnitPrice: 75, Remaining: 9}},
			TotalPrice:  75,
			CommittedAt: time.Now().UTC(),
		}
		svc.On("GetPurchase", mock.Anything, "order-abc").Return(confirmation, nil).Once()

		req := createJSONHTTPRequest(t, http.MethodGet, "/api/v1/purchases/order-abc", nil)
		w := serveRequest(router, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, eventID.String(), body["event_id"])
		assert.Equal(t, 75.0, body["total_price"])
		svc.AssertExpectations(t)
	})

	t.Run("Failed - unknown key", func(t *testing.T) {
		router, svc := setupPurchaseRouter()

		svc.On("GetPurchase", mock.Anything, "missing").
			Return(nil, apperrors.ErrReservationNotFound).Once()

		req := createJSONHTTPRequest(t, http.MethodGet, "/api/v1/purchases/missing", nil)
		w := serveRequest(router, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Reservation not found", body["error"])
	})
}
