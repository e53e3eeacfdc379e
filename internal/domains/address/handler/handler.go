package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freshbasket-backend/internal/domains/address"
	"freshbasket-backend/internal/domains/address/model"
	"freshbasket-backend/internal/shared/middleware"
	"freshbasket-backend/internal/shared/response"
)

type AddressHandler struct {
	books *address.Registry
}

func NewAddressHandler(books *address.Registry) *AddressHandler {
	return &AddressHandler{
		books: books,
	}
}

func (h *AddressHandler) book(c *gin.Context) (*address.Book, bool) {
	subscriberID, ok := middleware.SubscriberID(c)
	if !ok {
		response.Unauthorized(c, "missing subscriber identity")
		return nil, false
	}

	book, err := h.books.Book(c.Request.Context(), subscriberID)
	if err != nil {
		statusCode, message, code := address.MapErrorToHTTP(err)
		response.ErrorResponse(c, statusCode, code, message)
		return nil, false
	}
	return book, true
}

func addressID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid address id")
		return uuid.Nil, false
	}
	return id, true
}

func toResponses(book *address.Book, addresses []model.DeliveryAddress) []model.AddressResponse {
	selected := book.SelectedID()
	responses := make([]model.AddressResponse, len(addresses))
	for i, addr := range addresses {
		responses[i] = addr.ToResponse(addr.ID == selected)
	}
	return responses
}

// ListAddresses handles GET /addresses
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	book, ok := h.book(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, toResponses(book, book.All()))
}

// ListFavorites handles GET /addresses/favorites
func (h *AddressHandler) ListFavorites(c *gin.Context) {
	book, ok := h.book(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, toResponses(book, book.Favorites()))
}

// CreateAddress handles POST /addresses
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	book, ok := h.book(c)
	if !ok {
		return
	}

	var req model.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid address fields", err.Error())
		return
	}

	created, err := book.Add(c.Request.Context(), req.ToInput())
	if err != nil {
		statusCode, message, code := address.MapErrorToHTTP(err)
		response.ErrorResponse(c, statusCode, code, message)
		return
	}

	response.Success(c, http.StatusCreated, created.ToResponse(false))
}

// UpdateAddress handles PATCH /addresses/:id
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	book, ok := h.book(c)
	if !ok {
		return
	}
	id, ok := addressID(c)
	if !ok {
		return
	}

	var req model.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid address fields", err.Error())
		return
	}

	updated, err := book.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		statusCode, message, code := address.MapErrorToHTTP(err)
		response.ErrorResponse(c, statusCode, code, message)
		return
	}

	response.Success(c, http.StatusOK, updated.ToResponse(book.SelectedID() == id))
}

// DeleteAddress handles DELETE /addresses/:id. Deleting an unknown id
// succeeds: the operation is idempotent.
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	book, ok := h.book(c)
	if !ok {
		return
	}
	id, ok := addressID(c)
	if !ok {
		return
	}

	if err := book.Delete(c.Request.Context(), id); err != nil {
		statusCode, message, code := address.MapErrorToHTTP(err)
		response.ErrorResponse(c, statusCode, code, message)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SetFavorite handles PUT /addresses/:id/favorite
func (h *AddressHandler) SetFavorite(c *gin.Context) {
	book, ok := h.book(c)
	if !ok {
		return
	}
	id, ok := addressID(c)
	if !ok {
		return
	}

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	updated, err := book.SetFavorite(c.Request.Context(), id, req.Favorite)
	if err != nil {
		statusCode, message, code := address.MapErrorToHTTP(err)
		response.ErrorResponse(c, statusCode, code, message)
		return
	}

	response.Success(c, http.StatusOK, updated.ToResponse(book.SelectedID() == id))
}

// SelectAddress handles PUT /addresses/:id/select
func (h *AddressHandler) SelectAddress(c *gin.Context) {
	book, ok := h.book(c)
	if !ok {
		return
	}
	id, ok := addressID(c)
	if !ok {
		return
	}

	if err := book.Select(id); err != nil {
		statusCode, message, code := address.MapErrorToHTTP(err)
		response.ErrorResponse(c, statusCode, code, message)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"selected": id})
}

// ClearSelection handles DELETE /addresses/select
func (h *AddressHandler) ClearSelection(c *gin.Context) {
	book, ok := h.book(c)
	if !ok {
		return
	}

	_ = book.Select(uuid.Nil)
	response.Success(c, http.StatusOK, gin.H{"selected": nil})
}
