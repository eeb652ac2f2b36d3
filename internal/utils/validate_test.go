package utils

import (
	"errors"
	"testing"

	"github.com/example/storefront/internal/models"
)

func validFields() models.AddressFields {
	return models.AddressFields{
		Type:      models.AddressTypeHome,
		FirstName: "Asha",
		LastName:  "Verma",
		Phone:     "9876543210",
		Street:    "12 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560001",
	}
}

func TestValidateStructAcceptsValidAddress(t *testing.T) {
	if err := ValidateStruct(validFields()); err != nil {
		t.Fatalf("expected valid address, got %v", err)
	}
}

func TestValidateStructRejectsBadPhone(t *testing.T) {
	cases := []string{"1234567890", "98765", "98765432101", "abcdefghij", ""}
	for _, phone := range cases {
		fields := validFields()
		fields.Phone = phone

		err := ValidateStruct(fields)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("phone %q: expected ValidationError, got %v", phone, err)
		}
		if _, ok := vErr.Fields["Phone"]; !ok {
			t.Fatalf("phone %q: expected Phone field error, got %v", phone, vErr.Fields)
		}
	}
}

func TestValidateStructRejectsBadPincode(t *testing.T) {
	for _, pincode := range []string{"5600", "56000a", "5600011"} {
		fields := validFields()
		fields.Pincode = pincode

		err := ValidateStruct(fields)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("pincode %q: expected ValidationError, got %v", pincode, err)
		}
		if _, ok := vErr.Fields["Pincode"]; !ok {
			t.Fatalf("pincode %q: expected Pincode field error, got %v", pincode, vErr.Fields)
		}
	}
}

func TestValidateStructRejectsUnknownRegion(t *testing.T) {
	fields := validFields()
	fields.State = "Atlantis"

	err := ValidateStruct(fields)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["State"]; !ok {
		t.Fatalf("expected State field error, got %v", vErr.Fields)
	}
}

func TestValidateStructCollectsAllFailures(t *testing.T) {
	fields := validFields()
	fields.FirstName = ""
	fields.Phone = "123"
	fields.Pincode = "xx"

	err := ValidateStruct(fields)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"FirstName", "Phone", "Pincode"} {
		if _, ok := vErr.Fields[field]; !ok {
			t.Fatalf("expected %s error, got %v", field, vErr.Fields)
		}
	}
}

func TestValidateCustomerInfoEmailOptional(t *testing.T) {
	info := models.CustomerInfo{FirstName: "Asha", LastName: "Verma", Phone: "9876543210"}
	if err := ValidateStruct(info); err != nil {
		t.Fatalf("email must be optional, got %v", err)
	}

	info.Email = "not-an-email"
	err := ValidateStruct(info)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for malformed email, got %v", err)
	}
}
