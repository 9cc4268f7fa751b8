package validator

import "testing"

type bookingForm struct {
	Date         string `validate:"required,dateonly"`
	Time         string `validate:"required,timeslot"`
	LocationType string `validate:"required,locationtype"`
	AgeGroup     string `validate:"omitempty,agegroup"`
}

func TestCustomValidations(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		form    bookingForm
		wantErr bool
	}{
		{
			name: "valid resource center form",
			form: bookingForm{Date: "2026-09-01", Time: "09:00", LocationType: "RESOURCE_CENTER"},
		},
		{
			name: "valid with age group",
			form: bookingForm{Date: "2026-09-01", Time: "09:00", LocationType: "RESOURCE_CENTER", AgeGroup: "under15"},
		},
		{
			name:    "bad date format",
			form:    bookingForm{Date: "01/09/2026", Time: "09:00", LocationType: "RESOURCE_CENTER"},
			wantErr: true,
		},
		{
			name:    "bad time format",
			form:    bookingForm{Date: "2026-09-01", Time: "9am", LocationType: "RESOURCE_CENTER"},
			wantErr: true,
		},
		{
			name:    "unknown location type",
			form:    bookingForm{Date: "2026-09-01", Time: "09:00", LocationType: "HOME"},
			wantErr: true,
		},
		{
			name:    "unknown age group",
			form:    bookingForm{Date: "2026-09-01", Time: "09:00", LocationType: "OUTREACH", AgeGroup: "adult"},
			wantErr: true,
		},
		{
			name:    "missing required fields",
			form:    bookingForm{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.form)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&bookingForm{Date: "bad", Time: "09:00", LocationType: "RESOURCE_CENTER"})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	formatted := v.FormatValidationErrors(err)
	msg, ok := formatted["Date"]
	if !ok {
		t.Fatalf("expected an error for Date, got %v", formatted)
	}
	if msg != "Date must be a date in YYYY-MM-DD format" {
		t.Errorf("unexpected message: %q", msg)
	}
}
