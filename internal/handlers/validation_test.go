package handlers

import (
	"testing"

	"github.com/md-rashed-zaman/courtbook/internal/availability"
)

func TestValidateRegister(t *testing.T) {
	if errs := validateRegister(registerRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"}); len(errs) != 0 {
		t.Fatalf("valid request produced errors: %+v", errs)
	}

	errs := validateRegister(registerRequest{Email: "not-an-email", Password: "123"})
	paths := map[string]bool{}
	for _, e := range errs {
		paths[e.Path] = true
	}
	for _, want := range []string{"name", "email", "password"} {
		if !paths[want] {
			t.Fatalf("missing error for %q in %+v", want, errs)
		}
	}
}

func TestValidateFacility(t *testing.T) {
	price := 500.0
	valid := facilityRequest{
		Name:         "Tennis Court Premium",
		Description:  "Indoor court",
		PricePerHour: &price,
		Location:     "Gulshan",
	}
	if errs := validateFacility(valid); len(errs) != 0 {
		t.Fatalf("valid request produced errors: %+v", errs)
	}

	if errs := validateFacility(facilityRequest{}); len(errs) != 4 {
		t.Fatalf("empty request: got %d errors, want 4", len(errs))
	}

	negative := -10.0
	valid.PricePerHour = &negative
	errs := validateFacility(valid)
	if len(errs) != 1 || errs[0].Path != "pricePerHour" {
		t.Fatalf("negative price: %+v", errs)
	}
}

func TestValidateBookingShape(t *testing.T) {
	valid := createBookingRequest{
		Facility:  "fac-1",
		Date:      "2025-06-15",
		StartTime: "09:00",
		EndTime:   "11:00",
	}
	if errs := validateBookingShape(valid); len(errs) != 0 {
		t.Fatalf("valid request produced errors: %+v", errs)
	}

	bad := createBookingRequest{Date: "15-06-2025", StartTime: "9am", EndTime: "25:00"}
	errs := validateBookingShape(bad)
	paths := map[string]bool{}
	for _, e := range errs {
		paths[e.Path] = true
	}
	for _, want := range []string{"facility", "date", "startTime", "endTime"} {
		if !paths[want] {
			t.Fatalf("missing error for %q in %+v", want, errs)
		}
	}
}

func TestPayableAmount(t *testing.T) {
	requested, err := availability.ParseInterval("10:00", "12:00")
	if err != nil {
		t.Fatalf("ParseInterval: %v", err)
	}
	if got := requested.DurationHours() * 500; got != 1000 {
		t.Fatalf("2h at 500/hr = %v, want 1000", got)
	}
}

func TestValidateContact(t *testing.T) {
	valid := contactRequest{
		Name:    "Bob",
		Email:   "bob@example.com",
		Subject: "Court lighting",
		Message: "The lights on court 2 flicker.",
	}
	if errs := validateContact(valid); len(errs) != 0 {
		t.Fatalf("valid request produced errors: %+v", errs)
	}

	valid.Email = "no-at-sign"
	errs := validateContact(valid)
	if len(errs) != 1 || errs[0].Path != "email" {
		t.Fatalf("bad email: %+v", errs)
	}
}
