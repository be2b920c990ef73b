package validation

import (
	"context"
	"errors"
	"testing"
)

type sampleRequest struct {
	StayDate string  `json:"stay_date" validate:"required,ddmmyy"`
	Start    string  `json:"start_date,omitempty" validate:"omitempty,isodate"`
	Rooms    int     `json:"rooms" default:"100" validate:"gt=0"`
	Level    string  `json:"level" default:"none" validate:"oneof=none minor major"`
	Occ      float64 `json:"occ" validate:"gte=0,lte=100"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name       string
		req        sampleRequest
		wantFields []string
	}{
		{"valid with defaults", sampleRequest{StayDate: "150226", Occ: 40}, nil},
		{"bad date", sampleRequest{StayDate: "300226", Occ: 40}, []string{"stay_date"}},
		{"bad iso", sampleRequest{StayDate: "150226", Start: "15-02-2026"}, []string{"start_date"}},
		{"several", sampleRequest{Level: "huge", Occ: 101}, []string{"stay_date", "level", "occ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := Struct(context.Background(), &req)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if req.Rooms != 100 || req.Level != "none" {
					t.Errorf("expected defaults to be applied, got %+v", req)
				}
				return
			}

			var fes Errors
			if !errors.As(err, &fes) {
				t.Fatalf("expected Errors, got %v", err)
			}
			got := fes.Fields()
			if len(got) != len(tt.wantFields) {
				t.Fatalf("expected fields %v, got %v", tt.wantFields, got)
			}
			for i := range got {
				if got[i] != tt.wantFields[i] {
					t.Errorf("expected fields %v, got %v", tt.wantFields, got)
				}
			}
			if !Is(err) {
				t.Error("expected Is to recognise validation errors")
			}
		})
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf("sensitivity_factor", "ERR_ONEOF", "sensitivity_factor must be one of %v", []float64{0.3, 0.5, 0.8})
	if err.Field != "sensitivity_factor" || err.Error() != "sensitivity_factor must be one of [0.3 0.5 0.8]" {
		t.Errorf("unexpected error: %+v", err)
	}
	if Errors(nil).OrNil() != nil {
		t.Error("expected nil for empty Errors")
	}
}
