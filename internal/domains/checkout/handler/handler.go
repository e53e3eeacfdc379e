package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freshbasket-backend/internal/domains/address"
	"freshbasket-backend/internal/domains/address/model"
	"freshbasket-backend/internal/domains/checkout"
	"freshbasket-backend/internal/shared/middleware"
	"freshbasket-backend/internal/shared/response"
)

type CheckoutHandler struct {
	sessions *checkout.SessionRegistry
}

func NewCheckoutHandler(sessions *checkout.SessionRegistry) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
	}
}

// =====================================================
// STATE RESPONSE
// =====================================================
type stateResponse struct {
	Phase    string                 `json:"phase"`
	Form     checkout.AddressForm   `json:"form"`
	Chosen   *model.AddressResponse `json:"chosen,omitempty"`
	OrderID  *uuid.UUID             `json:"order_id,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
}

func sessionState(session *checkout.Session) stateResponse {
	state := stateResponse{
		Phase:    session.Phase().String(),
		Form:     session.Form(),
		Warnings: session.Notifier.DrainWarnings(),
	}
	if chosen := session.Chosen(); chosen != nil {
		resp := chosen.ToResponse(false)
		state.Chosen = &resp
	}
	if orderID := session.OrderID(); orderID != uuid.Nil {
		state.OrderID = &orderID
	}
	return state
}

func (h *CheckoutHandler) session(c *gin.Context) (*checkout.Session, bool) {
	subscriberID, ok := middleware.SubscriberID(c)
	if !ok {
		response.Unauthorized(c, "missing subscriber identity")
		return nil, false
	}

	session, ok := h.sessions.Get(subscriberID)
	if !ok {
		response.NotFound(c, "no checkout session; start one first")
		return nil, false
	}
	return session, true
}

// checkoutError maps domain errors onto the response envelope. Favorite
// lookups can surface address-book errors, so that taxonomy is tried first.
func checkoutError(c *gin.Context, err error) {
	var addrErr *address.AddressError
	if errors.As(err, &addrErr) {
		statusCode, message, code := address.MapErrorToHTTP(err)
		response.ErrorResponse(c, statusCode, code, message)
		return
	}

	statusCode, message, code := checkout.MapErrorToHTTP(err)
	response.ErrorResponse(c, statusCode, code, message)
}

// StartCheckout handles POST /checkout
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	subscriberID, ok := middleware.SubscriberID(c)
	if !ok {
		response.Unauthorized(c, "missing subscriber identity")
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), subscriberID)
	if err != nil {
		checkoutError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, sessionState(session))
}

// GetCheckout handles GET /checkout
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, sessionState(session))
}

// =====================================================
// ADDRESS STEP
// =====================================================
type addressStepRequest struct {
	FavoriteID     *uuid.UUID            `json:"favorite_id,omitempty"`
	Address        *checkout.AddressForm `json:"address,omitempty"`
	SaveAsFavorite bool                  `json:"save_as_favorite"`
}

// SubmitAddress handles POST /checkout/address. The body carries either a
// favorite id to reuse or a freshly entered address form; a blank
// mandatory field fails on the first one in fixed order.
func (h *CheckoutHandler) SubmitAddress(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req addressStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	switch {
	case req.FavoriteID != nil:
		if err := session.UseFavorite(*req.FavoriteID); err != nil {
			checkoutError(c, err)
			return
		}
	case req.Address != nil:
		if err := session.EnterAddress(*req.Address, req.SaveAsFavorite); err != nil {
			checkoutError(c, err)
			return
		}
	default:
		response.BadRequest(c, "either favorite_id or address is required")
		return
	}

	if err := session.ConfirmAddress(c.Request.Context()); err != nil {
		checkoutError(c, err)
		return
	}

	response.Success(c, http.StatusOK, sessionState(session))
}

// EditAddress handles POST /checkout/edit
func (h *CheckoutHandler) EditAddress(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Edit(); err != nil {
		checkoutError(c, err)
		return
	}

	response.Success(c, http.StatusOK, sessionState(session))
}

// =====================================================
// ORDER CONFIRMATION
// =====================================================
type confirmRequest struct {
	Confirmed      bool  `json:"confirmed"`
	SaveAsFavorite *bool `json:"save_as_favorite,omitempty"`
}

// ConfirmOrder handles POST /checkout/confirm. The app renders the
// blocking confirmation prompt; the explicit accept travels in the body
// and feeds the workflow's confirmation gate.
func (h *CheckoutHandler) ConfirmOrder(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	if req.SaveAsFavorite != nil {
		session.SetSaveAsFavorite(*req.SaveAsFavorite)
	}

	gate := checkout.ConfirmerFunc(func(ctx context.Context, summary checkout.OrderSummary) bool {
		return req.Confirmed
	})

	if err := session.Confirm(c.Request.Context(), gate); err != nil {
		checkoutError(c, err)
		return
	}

	response.Success(c, http.StatusOK, sessionState(session))
}

// AbandonCheckout handles DELETE /checkout
func (h *CheckoutHandler) AbandonCheckout(c *gin.Context) {
	subscriberID, ok := middleware.SubscriberID(c)
	if !ok {
		response.Unauthorized(c, "missing subscriber identity")
		return
	}

	h.sessions.End(subscriberID)
	response.Success(c, http.StatusOK, gin.H{"abandoned": true})
}
