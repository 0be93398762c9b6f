package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FlexInt is an integer that accepts both JSON numbers and numeric strings
// ("12", "2030") on the wire. Clients routinely submit expiry fields as
// strings; the coerced integer is what gets validated and persisted.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("cannot parse %s as an integer", string(data))
	}
	*f = FlexInt(n)
	return nil
}

// MarshalJSON always emits a plain number, never a string.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(f))), nil
}

// Int returns the coerced value.
func (f FlexInt) Int() int { return int(f) }
