package loan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point scale of every amount in the ledger.
const Decimals = 18

var reDecimal = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// IsDecimalAmount reports whether s is a plain non-negative decimal string
// ("150", "0.5", "12."). Exponents and signs are rejected.
func IsDecimalAmount(s string) bool { return reDecimal.MatchString(strings.TrimSpace(s)) }

// ParseAmount converts a human decimal string into smallest units.
// Digits beyond the 18th decimal place are truncated (rounded down).
func ParseAmount(raw string) (*uint256.Int, error) {
	s := strings.TrimSpace(raw)
	if !reDecimal.MatchString(s) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrParse, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrParse, raw, err)
	}
	units := d.Shift(Decimals).Truncate(0).BigInt()
	v, overflow := uint256.FromBig(units)
	if overflow {
		return nil, fmt.Errorf("%w: %q overflows 256 bits", ErrParse, raw)
	}
	return v, nil
}

// FormatAmount renders smallest units as a decimal string without trailing
// zeros, e.g. 1500000000000000000 -> "1.5".
func FormatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -Decimals).String()
}

// MustUnits is ParseAmount for constants.
func MustUnits(s string) *uint256.Int {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

// RequiredCollateral is loanAmount * CollateralRatio / 100, floored.
func RequiredCollateral(loanAmount *uint256.Int) *uint256.Int {
	out := new(uint256.Int).Mul(loanAmount, uint256.NewInt(CollateralRatio))
	return out.Div(out, uint256.NewInt(100))
}

// Sum adds the loan amounts of loans.
func Sum(loans []Loan) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, l := range loans {
		if l.LoanAmount == nil {
			continue
		}
		if _, overflow := total.AddOverflow(total, l.LoanAmount); overflow {
			return nil, fmt.Errorf("loan total overflows 256 bits at loan %d", l.ID)
		}
	}
	return total, nil
}
