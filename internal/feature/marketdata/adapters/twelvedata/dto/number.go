// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

import (
	"fmt"
	"strconv"
	"strings"
)

// Number decodes values that Twelve Data sends either as JSON numbers or as
// quoted strings. Empty strings and null decode to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*n = Number(f)
	return nil
}

// Float returns n as float64.
func (n Number) Float() float64 { return float64(n) }

// Int returns n truncated to int64.
func (n Number) Int() int64 { return int64(n) }
