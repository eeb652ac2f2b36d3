package models

// Address types accepted by the backend.
const (
	AddressTypeHome   = "home"
	AddressTypeOffice = "office"
	AddressTypeOther  = "other"
)

// Regions is the fixed list of shippable states. Order matters only for
// display; membership is what validation checks.
var Regions = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Delhi", "Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand",
	"Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra", "Manipur",
	"Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab", "Rajasthan",
	"Sikkim", "Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh",
	"Uttarakhand", "West Bengal",
}

// ValidRegion reports whether state is on the shippable list.
func ValidRegion(state string) bool {
	for _, r := range Regions {
		if r == state {
			return true
		}
	}
	return false
}

// Address is a saved shipping address. Owned by the backend; the client keeps
// a cached copy. At most one address per account carries IsDefault (the
// backend enforces this, the client treats it as given).
type Address struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"is_default"`
}

// AddressFields is the mutable part of an address, sent on create/update and
// validated client-side before any call leaves the process.
type AddressFields struct {
	Type      string `json:"type" validate:"required,oneof=home office other"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required,inphone"`
	Street    string `json:"street" validate:"required"`
	Apartment string `json:"apartment,omitempty" validate:"omitempty"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required,region"`
	Pincode   string `json:"pincode" validate:"required,pincode"`
	IsDefault bool   `json:"is_default"`
}

// Fields returns the mutable view of a stored address, used to prefill the
// checkout form from the current selection.
func (a Address) Fields() AddressFields {
	return AddressFields{
		Type:      a.Type,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Phone:     a.Phone,
		Street:    a.Street,
		Apartment: a.Apartment,
		City:      a.City,
		State:     a.State,
		Pincode:   a.Pincode,
		IsDefault: a.IsDefault,
	}
}
