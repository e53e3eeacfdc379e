package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// =====================================================
// CREATE ADDRESS REQUEST
// =====================================================
type CreateAddressRequest struct {
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Neighborhood string  `json:"neighborhood"`
	PostalCode   string  `json:"postal_code"`
	City         string  `json:"city"`
	Region       string  `json:"region"`
	Phone        string  `json:"phone"`
	Reference    *string `json:"reference,omitempty"`
	IsFavorite   bool    `json:"is_favorite"`
}

// Validate applies format caps only. Presence of mandatory fields is the
// domain's concern (fail-fast, first blank field wins), so Required rules
// do not live here.
func (req CreateAddressRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Street, validation.Length(1, 160)),
		validation.Field(&req.Number, validation.Length(1, 20)),
		validation.Field(&req.Neighborhood, validation.Length(1, 120)),
		validation.Field(&req.PostalCode, validation.Length(1, 16)),
		validation.Field(&req.City, validation.Length(1, 120)),
		validation.Field(&req.Region, validation.Length(1, 60)),
		validation.Field(&req.Phone, validation.Length(1, 32)),
		validation.Field(&req.Reference, validation.Length(0, 500)),
	)
}

// ToInput converts the request into the domain input.
func (req CreateAddressRequest) ToInput() AddressInput {
	return AddressInput{
		Street:       req.Street,
		Number:       req.Number,
		Neighborhood: req.Neighborhood,
		PostalCode:   req.PostalCode,
		City:         req.City,
		Region:       req.Region,
		Phone:        req.Phone,
		Reference:    req.Reference,
		IsFavorite:   req.IsFavorite,
	}
}

// =====================================================
// UPDATE ADDRESS REQUEST
// =====================================================
type UpdateAddressRequest struct {
	Street       *string `json:"street,omitempty"`
	Number       *string `json:"number,omitempty"`
	Neighborhood *string `json:"neighborhood,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	City         *string `json:"city,omitempty"`
	Region       *string `json:"region,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Reference    *string `json:"reference,omitempty"`
	IsFavorite   *bool   `json:"is_favorite,omitempty"`
}

func (req UpdateAddressRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Street, validation.Length(1, 160)),
		validation.Field(&req.Number, validation.Length(1, 20)),
		validation.Field(&req.Neighborhood, validation.Length(1, 120)),
		validation.Field(&req.PostalCode, validation.Length(1, 16)),
		validation.Field(&req.City, validation.Length(1, 120)),
		validation.Field(&req.Region, validation.Length(1, 60)),
		validation.Field(&req.Phone, validation.Length(1, 32)),
		validation.Field(&req.Reference, validation.Length(0, 500)),
	)
}

func (req UpdateAddressRequest) ToPatch() AddressPatch {
	return AddressPatch{
		Street:       req.Street,
		Number:       req.Number,
		Neighborhood: req.Neighborhood,
		PostalCode:   req.PostalCode,
		City:         req.City,
		Region:       req.Region,
		Phone:        req.Phone,
		Reference:    req.Reference,
		IsFavorite:   req.IsFavorite,
	}
}

// =====================================================
// ADDRESS RESPONSE
// =====================================================
type AddressResponse struct {
	ID           uuid.UUID `json:"id"`
	Street       string    `json:"street"`
	Number       string    `json:"number"`
	Neighborhood string    `json:"neighborhood"`
	PostalCode   string    `json:"postal_code"`
	City         string    `json:"city"`
	Region       string    `json:"region"`
	Phone        string    `json:"phone"`
	Reference    *string   `json:"reference,omitempty"`
	IsFavorite   bool      `json:"is_favorite"`
	IsSelected   bool      `json:"is_selected"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a DeliveryAddress) ToResponse(selected bool) AddressResponse {
	return AddressResponse{
		ID:           a.ID,
		Street:       a.Street,
		Number:       a.Number,
		Neighborhood: a.Neighborhood,
		PostalCode:   a.PostalCode,
		City:         a.City,
		Region:       a.Region,
		Phone:        a.Phone,
		Reference:    a.Reference,
		IsFavorite:   a.IsFavorite,
		IsSelected:   selected,
		CreatedAt:    a.CreatedAt,
	}
}
