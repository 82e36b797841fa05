package ecommerce

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidRemoteID indicates a remote ID that is not a positive integer
var ErrInvalidRemoteID = errors.New("ecommerce: invalid remote ID format")

// validateNumericID validates that a string is a valid numeric ID
func validateNumericID(id string) error {
	_, err := parseNumericID(id)
	return err
}

// parseNumericID parses a positive integer ID
func parseNumericID(id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, ErrInvalidRemoteID
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRemoteID, id)
	}
	return n, nil
}

// ParseDecimal parses a decimal string, returning zero for empty or malformed input
func ParseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
