package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// The API serializes most numeric fields as JSON strings ("id": "42",
// "total_paid": "1499.990000"). FlexInt and FlexFloat accept both forms.

// FlexInt is an int that unmarshals from either a JSON number or string.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parse int %q: %w", s, err)
	}
	*f = FlexInt(n)
	return nil
}

// FlexFloat is a float64 that unmarshals from either a JSON number or string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	*f = FlexFloat(n)
	return nil
}

// String formats the value as a two-decimal price string.
func (f FlexFloat) String() string {
	return strconv.FormatFloat(float64(f), 'f', 2, 64)
}

var _ json.Unmarshaler = (*FlexInt)(nil)
var _ json.Unmarshaler = (*FlexFloat)(nil)
