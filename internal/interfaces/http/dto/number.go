package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexNumber holds a request field that clients send either as a JSON number or as a
// string. Parsing is deferred to Int or Decimal. null and "" are treated as absent.
type FlexNumber struct {
	raw string
	set bool
}

// NewFlexNumber builds a present value from its text form
func NewFlexNumber(raw string) FlexNumber {
	raw = strings.TrimSpace(raw)
	return FlexNumber{raw: raw, set: raw != ""}
}

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*n = FlexNumber{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NewFlexNumber(s)
		return nil
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*n = NewFlexNumber(string(b))
		return nil
	default:
		return fmt.Errorf("expected a number or a string, got %s", b)
	}
}

// MarshalJSON implements json.Marshaler
func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

// IsSet reports whether the field was sent with a value
func (n FlexNumber) IsSet() bool {
	return n.set
}

// String returns the value as sent, "" when absent
func (n FlexNumber) String() string {
	return n.raw
}

// Decimal parses the value; nil when absent
func (n FlexNumber) Decimal() (*decimal.Decimal, error) {
	if !n.set {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", n.raw)
	}
	return &d, nil
}

// Int parses the value as a whole number; nil when absent
func (n FlexNumber) Int() (*int, error) {
	d, err := n.Decimal()
	if err != nil || d == nil {
		return nil, err
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("%q is not a whole number", n.raw)
	}
	b := d.BigInt()
	if !b.IsInt64() || b.Int64() > math.MaxInt || b.Int64() < math.MinInt {
		return nil, fmt.Errorf("%q is out of range", n.raw)
	}
	v := int(b.Int64())
	return &v, nil
}

// IntOrZero parses the value leniently: anything unparsable counts as 0
func (n FlexNumber) IntOrZero() int {
	v, err := n.Int()
	if err != nil || v == nil {
		return 0
	}
	return *v
}
