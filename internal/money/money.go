// Package money provides an exact, non-negative integer amount type for
// on-chain base units.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

var (
	ErrOverflow      = errors.New("amount overflow")
	ErrNegative      = errors.New("amount would be negative")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Money is an amount in the smallest currency unit (wei, lamports, ...).
// The zero value is a valid zero amount.
type Money struct {
	v uint256.Int
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{}
}

// New returns an amount of n base units.
func New(n uint64) Money {
	var m Money
	m.v.SetUint64(n)
	return m
}

// Parse reads a base-10 amount. Signs, decimals and exponents are rejected.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return Money{v: *v}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) (Money, error) {
	var out Money
	if _, overflow := out.v.AddOverflow(&m.v, &o.v); overflow {
		return Money{}, ErrOverflow
	}
	return out, nil
}

// Sub returns m - o. It fails instead of clamping when o > m.
func (m Money) Sub(o Money) (Money, error) {
	var out Money
	if _, underflow := out.v.SubOverflow(&m.v, &o.v); underflow {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrNegative, m, o)
	}
	return out, nil
}

// DivMod splits m into n equal parts and returns the part and the remainder.
func (m Money) DivMod(n uint64) (Money, uint64) {
	if n == 0 {
		panic("money: division by zero")
	}
	var q, r Money
	d := uint256.NewInt(n)
	q.v.Div(&m.v, d)
	r.v.Mod(&m.v, d)
	return q, r.v.Uint64()
}

// Cmp returns -1, 0 or +1 depending on whether m is less than, equal to or greater than o.
func (m Money) Cmp(o Money) int {
	return m.v.Cmp(&o.v)
}

func (m Money) Equal(o Money) bool {
	return m.v.Eq(&o.v)
}

func (m Money) IsZero() bool {
	return m.v.IsZero()
}

// String returns the decimal representation.
func (m Money) String() string {
	return m.v.Dec()
}

// Sum adds all amounts.
func Sum(amounts ...Money) (Money, error) {
	total := Zero()
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// MarshalJSON encodes the amount as a quoted decimal string so that values
// beyond 2^53 survive JavaScript clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON integer.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*m = Money{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as decimal text.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan reads decimal text written by Value.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*m = parsed
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*m = parsed
	case int64:
		if v < 0 {
			return fmt.Errorf("%w: %d", ErrNegative, v)
		}
		*m = New(uint64(v))
	case nil:
		*m = Money{}
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, src)
	}
	return nil
}
