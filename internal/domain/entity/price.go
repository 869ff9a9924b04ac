package entity

import (
	"bytes"
	"errors"

	"github.com/shopspring/decimal"
)

// Price mirrors a NUMERIC(5,2) column: at most 2 decimal places and 3 integer digits.
type Price struct {
	decimal.Decimal
}

var maxPrice = decimal.RequireFromString("999.99")

var (
	errPriceScale  = errors.New("ensure that there are no more than 2 decimal places")
	errPriceRange  = errors.New("ensure that there are no more than 5 digits in total")
	errPriceNumber = errors.New("a valid number is required")
	errPriceSign   = errors.New("ensure this value is greater than or equal to 0")
)

// ParsePrice parses a decimal string such as "50.25".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, errPriceNumber
	}
	p := Price{d}
	if err := p.Check(); err != nil {
		return Price{}, err
	}
	return p, nil
}

func MustPrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Check reports whether the price fits the column definition.
func (p Price) Check() error {
	if p.IsNegative() {
		return errPriceSign
	}
	if !p.Equal(p.Round(2)) {
		return errPriceScale
	}
	if p.GreaterThan(maxPrice) {
		return errPriceRange
	}
	return nil
}

func (p Price) String() string {
	return p.StringFixed(2)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON accepts both "5.23" and 5.23.
func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	parsed, err := ParsePrice(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// IsPriceError reports whether err came from parsing or checking a Price.
func IsPriceError(err error) bool {
	for _, target := range []error{errPriceScale, errPriceRange, errPriceNumber, errPriceSign} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
