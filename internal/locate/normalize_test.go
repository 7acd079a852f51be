package locate

import (
	"errors"
	"testing"

	"github.com/wxgate/wxgate/internal/wxerr"
)

func TestNormalizeCoord(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"float rounds to 2 places", 35.595, "35.6"},
		{"negative float", -82.554, "-82.55"},
		{"float with no fraction", 35.0, "35"},
		{"half-cent value", 1.005, "1"},
		{"two decimal float", 1.01, "1.01"},
		{"int", 35, "35"},
		{"int64", int64(-82), "-82"},
		{"string passes through", "-82.554", "-82.554"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCoord(tt.in)
			if err != nil {
				t.Fatalf("NormalizeCoord(%v) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeCoord(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCoord_Idempotent(t *testing.T) {
	inputs := []any{35.595, -82.554, 1.005, 35, "raw"}
	for _, in := range inputs {
		once, err := NormalizeCoord(in)
		if err != nil {
			t.Fatalf("NormalizeCoord(%v): %v", in, err)
		}
		twice, err := NormalizeCoord(once)
		if err != nil {
			t.Fatalf("NormalizeCoord(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent: %v -> %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeCoord_InvalidType(t *testing.T) {
	_, err := NormalizeCoord([]string{"35"})
	var ie *wxerr.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InputError, got %v", err)
	}

	_, err = NormalizeCoord(nil)
	if !errors.As(err, &ie) {
		t.Fatalf("expected InputError for nil, got %v", err)
	}
}

func TestNormalizePair(t *testing.T) {
	coord, err := NormalizePair(35.595, -82.554)
	if err != nil {
		t.Fatalf("NormalizePair: %v", err)
	}
	if coord.Lat != "35.6" || coord.Lon != "-82.55" {
		t.Errorf("NormalizePair = %v, want {35.6 -82.55}", coord)
	}
}
