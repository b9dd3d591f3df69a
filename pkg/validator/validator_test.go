package validator

import "testing"

type bookingForm struct {
	Reason string `json:"reason_for_visit" validate:"required,min=3,max=500"`
	Phone  string `json:"contact_phone" validate:"omitempty,max=20,phone"`
	Start  string `json:"start_time" validate:"required,timeofday"`
	Date   string `json:"date" validate:"required,date"`
	Kind   string `json:"priority" validate:"required,oneof=low medium high urgent"`
}

func TestValidatorAcceptsWellFormedForm(t *testing.T) {
	v := NewValidator()
	form := bookingForm{
		Reason: "Persistent cough",
		Phone:  "+62 (21) 555-0101",
		Start:  "09:30:00",
		Date:   "2025-06-02",
		Kind:   "high",
	}
	if err := v.Validate(&form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatorReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()
	form := bookingForm{
		Reason: "no",
		Phone:  "call me",
		Start:  "9am",
		Date:   "02/06/2025",
		Kind:   "whenever",
	}

	err := v.Validate(&form)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	fields := v.FormatValidationErrors(err)
	for _, name := range []string{"reason_for_visit", "contact_phone", "start_time", "date", "priority"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("missing error for %s in %v", name, fields)
		}
	}
}
