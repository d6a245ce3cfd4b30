package units

import (
	"math/big"
	"strings"

	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
)

// Rounding selects what happens to fraction digits beyond the unit's precision.
type Rounding int

const (
	// Truncate drops excess digits.
	Truncate Rounding = iota
	// HalfUp rounds on the first dropped digit.
	HalfUp
)

// ParseUnits converts a non-negative decimal string into base units:
// integer × 10^decimals + fraction, with the fraction padded or cut to
// exactly decimals digits. Negative, empty or non-numeric input fails with
// ErrInvalidAmount.
func ParseUnits(s string, decimals uint8, mode Rounding) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, wtypes.InvalidAmount("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, wtypes.InvalidAmount("negative amount %q", s)
	}

	intStr, fracStr, hasDot := strings.Cut(s, ".")
	if hasDot && strings.Contains(fracStr, ".") {
		return nil, wtypes.InvalidAmount("malformed amount %q", s)
	}
	if intStr == "" && fracStr == "" {
		return nil, wtypes.InvalidAmount("malformed amount %q", s)
	}
	if !allDigits(intStr) || !allDigits(fracStr) {
		return nil, wtypes.InvalidAmount("non-numeric amount %q", s)
	}
	if intStr == "" {
		intStr = "0"
	}

	roundUp := false
	d := int(decimals)
	if len(fracStr) > d {
		roundUp = mode == HalfUp && fracStr[d] >= '5'
		fracStr = fracStr[:d]
	} else {
		fracStr += strings.Repeat("0", d-len(fracStr))
	}

	out, ok := new(big.Int).SetString(intStr+fracStr, 10)
	if !ok {
		return nil, wtypes.InvalidAmount("non-numeric amount %q", s)
	}
	if roundUp {
		out.Add(out, big.NewInt(1))
	}
	return out, nil
}

// ParseEther converts an ether amount into wei, rounding half up beyond 18
// fraction digits.
func ParseEther(s string) (*big.Int, error) {
	return ParseUnits(s, constants.EtherDecimals, HalfUp)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
