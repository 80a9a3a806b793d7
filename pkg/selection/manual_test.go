package selection

import (
	"errors"
	"math"
	"testing"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		expect  Point
		wantErr bool
	}{
		{name: "plain", input: "0.5,0.4", expect: Point{X: 0.5, Y: 0.4}},
		{name: "whitespace", input: " 0.25 , 0.75 ", expect: Point{X: 0.25, Y: 0.75}},
		{name: "corners", input: "0,1", expect: Point{X: 0, Y: 1}},
		{name: "out of range", input: "1.5,0.5", wantErr: true},
		{name: "negative", input: "0.5,-0.1", wantErr: true},
		{name: "not numbers", input: "a,b", wantErr: true},
		{name: "single value", input: "0.5", wantErr: true},
		{name: "three values", input: "0.1,0.2,0.3", wantErr: true},
		{name: "nan", input: "NaN,0.5", wantErr: true},
		{name: "inf", input: "0.5,Inf", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePoint(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidManualCoordinates) {
					t.Errorf("ParsePoint(%q): got err %v, want ErrInvalidManualCoordinates", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePoint(%q): %v", tc.input, err)
			}
			if got != tc.expect {
				t.Errorf("ParsePoint(%q): got %v, want %v", tc.input, got, tc.expect)
			}
		})
	}
}

func TestValidatePoint(t *testing.T) {
	bad := []Point{
		{X: math.NaN(), Y: 0.5},
		{X: 0.5, Y: math.Inf(1)},
		{X: 1.0001, Y: 0},
		{X: -0.0001, Y: 0},
	}
	for _, p := range bad {
		if err := ValidatePoint(p); !errors.Is(err, ErrInvalidManualCoordinates) {
			t.Errorf("ValidatePoint(%v): got %v", p, err)
		}
	}
	if err := ValidatePoint(Point{X: 1, Y: 0}); err != nil {
		t.Errorf("ValidatePoint(1,0): %v", err)
	}
}
