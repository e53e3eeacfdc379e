package checkout

import (
	"freshbasket-backend/internal/domains/address/model"
)

// AddressForm holds the in-progress delivery address field values while
// the workflow is in AwaitingAddress.
type AddressForm struct {
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Neighborhood string  `json:"neighborhood"`
	PostalCode   string  `json:"postal_code"`
	City         string  `json:"city"`
	Region       string  `json:"region"`
	Phone        string  `json:"phone"`
	Reference    *string `json:"reference,omitempty"`
}

// Input converts the form into the address domain input.
func (f AddressForm) Input() model.AddressInput {
	return model.AddressInput{
		Street:       f.Street,
		Number:       f.Number,
		Neighborhood: f.Neighborhood,
		PostalCode:   f.PostalCode,
		City:         f.City,
		Region:       f.Region,
		Phone:        f.Phone,
		Reference:    f.Reference,
	}
}

// Validate applies the mandatory-field check in the fixed left-to-right
// order. The first blank field produces the single validation error;
// later blanks are not reported.
func (f AddressForm) Validate() error {
	if field, blank := f.Input().Normalize().FirstBlankField(); blank {
		return NewValidationError(field)
	}
	return nil
}

// Address materializes the validated form into an unsaved delivery
// address value (no identity until the book persists it).
func (f AddressForm) Address() model.DeliveryAddress {
	in := f.Input().Normalize()
	return model.DeliveryAddress{
		Street:       in.Street,
		Number:       in.Number,
		Neighborhood: in.Neighborhood,
		PostalCode:   in.PostalCode,
		City:         in.City,
		Region:       in.Region,
		Phone:        in.Phone,
		Reference:    in.Reference,
	}
}
