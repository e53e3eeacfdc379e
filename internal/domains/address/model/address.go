package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeliveryAddress is one entry of a subscriber's address book.
// ID and CreatedAt are assigned exactly once, when the address is
// first persisted, and never change afterwards.
type DeliveryAddress struct {
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
	CreatedAt    time.Time `json:"created_at"`
}

// FormatOneLine flattens the address into the single display string sent
// to the fulfillment service. The flattening is one-way; structured fields
// are not recoverable from an order afterwards.
func (a DeliveryAddress) FormatOneLine() string {
	return fmt.Sprintf("%s %s, %s, %s, %s, %s",
		a.Street, a.Number, a.Neighborhood, a.PostalCode, a.City, a.Region)
}

// AddressInput carries the fields of a new address before it has an
// identity. All fields except Reference are mandatory.
type AddressInput struct {
	Street       string
	Number       string
	Neighborhood string
	PostalCode   string
	City         string
	Region       string
	Phone        string
	Reference    *string
	IsFavorite   bool
}

// Field names used in validation errors, in validation order.
const (
	FieldStreet       = "street"
	FieldNumber       = "number"
	FieldNeighborhood = "neighborhood"
	FieldPostalCode   = "postal_code"
	FieldCity         = "city"
	FieldRegion       = "region"
	FieldPhone        = "phone"
)

// Normalize trims whitespace on every text field.
func (in AddressInput) Normalize() AddressInput {
	in.Street = strings.TrimSpace(in.Street)
	in.Number = strings.TrimSpace(in.Number)
	in.Neighborhood = strings.TrimSpace(in.Neighborhood)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.City = strings.TrimSpace(in.City)
	in.Region = strings.TrimSpace(in.Region)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Reference != nil {
		ref := strings.TrimSpace(*in.Reference)
		if ref == "" {
			in.Reference = nil
		} else {
			in.Reference = &ref
		}
	}
	return in
}

// FirstBlankField returns the name of the first mandatory field that is
// blank after trimming, in the fixed left-to-right validation order.
// Validation stops at the first failure; it never aggregates.
func (in AddressInput) FirstBlankField() (string, bool) {
	checks := []struct {
		field string
		value string
	}{
		{FieldStreet, in.Street},
		{FieldNumber, in.Number},
		{FieldNeighborhood, in.Neighborhood},
		{FieldPostalCode, in.PostalCode},
		{FieldCity, in.City},
		{FieldRegion, in.Region},
		{FieldPhone, in.Phone},
	}

	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return c.field, true
		}
	}
	return "", false
}

// AddressPatch carries a partial update; nil fields are left untouched.
type AddressPatch struct {
	Street       *string
	Number       *string
	Neighborhood *string
	PostalCode   *string
	City         *string
	Region       *string
	Phone        *string
	Reference    *string
	IsFavorite   *bool
}

// Apply merges the patch into an existing address. Identity fields are
// never touched.
func (p AddressPatch) Apply(addr DeliveryAddress) DeliveryAddress {
	if p.Street != nil {
		addr.Street = strings.TrimSpace(*p.Street)
	}
	if p.Number != nil {
		addr.Number = strings.TrimSpace(*p.Number)
	}
	if p.Neighborhood != nil {
		addr.Neighborhood = strings.TrimSpace(*p.Neighborhood)
	}
	if p.PostalCode != nil {
		addr.PostalCode = strings.TrimSpace(*p.PostalCode)
	}
	if p.City != nil {
		addr.City = strings.TrimSpace(*p.City)
	}
	if p.Region != nil {
		addr.Region = strings.TrimSpace(*p.Region)
	}
	if p.Phone != nil {
		addr.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Reference != nil {
		ref := strings.TrimSpace(*p.Reference)
		if ref == "" {
			addr.Reference = nil
		} else {
			addr.Reference = &ref
		}
	}
	if p.IsFavorite != nil {
		addr.IsFavorite = *p.IsFavorite
	}
	return addr
}
