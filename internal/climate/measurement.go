package climate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidMeasurement is returned for a cell that is neither a number nor a missing marker
var ErrInvalidMeasurement = errors.New("invalid number")

// ParseMeasurement converts a raw text cell to a measurement. Blank cells and
// the markers NA, NaN and null (any case) are missing and become NaN.
func ParseMeasurement(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidMeasurement, s)
	}
	return v, nil
}
