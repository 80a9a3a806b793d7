package selection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsePoint parses "x,y" (whitespace allowed) into a validated point.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: want \"x,y\", got %q", ErrInvalidManualCoordinates, s)
	}

	var vals [2]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Point{}, fmt.Errorf("%w: %q is not a number", ErrInvalidManualCoordinates, strings.TrimSpace(part))
		}
		vals[i] = v
	}

	p := Point{X: vals[0], Y: vals[1]}
	if err := ValidatePoint(p); err != nil {
		return Point{}, err
	}
	return p, nil
}

// ValidatePoint rejects points outside the unit square or non-finite values.
func ValidatePoint(p Point) error {
	for _, v := range []float64{p.X, p.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) || !inUnit(v) {
			return fmt.Errorf("%w: (%v, %v) outside [0,1]x[0,1]", ErrInvalidManualCoordinates, p.X, p.Y)
		}
	}
	return nil
}
