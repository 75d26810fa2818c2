package token

import (
	"math/big"

	"github.com/iov-one/custody/errors"
	"github.com/shopspring/decimal"
)

// Format returns the decimal representation of an amount given in the
// smallest unit, for example 1500000000 with 9 decimals is "1.5".
func Format(amount uint64, decimals uint32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}

// Parse converts a decimal representation into an amount in the smallest
// unit. Values with more fractional digits than decimals are rejected.
func Parse(value string, decimals uint32) (uint64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "amount %q", value)
	}
	if d.IsNegative() {
		return 0, errors.Wrapf(errors.ErrInput, "negative amount %q", value)
	}
	d = d.Shift(int32(decimals))
	if !d.IsInteger() {
		return 0, errors.Wrapf(errors.ErrInput, "amount %q exceeds %d decimals", value, decimals)
	}
	n := d.BigInt()
	if !n.IsUint64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "amount %q", value)
	}
	return n.Uint64(), nil
}
