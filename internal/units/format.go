// Package units converts between integer base units and decimal strings
// without floating point.
package units

import (
	"math/big"
	"strings"

	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
)

// FormatUnits renders amount / 10^decimals with full precision. Trailing
// zeros of the fraction are stripped and a zero fraction is omitted.
//
// Examples:
//
//	amount=1234567890, decimals=6   -> "1234.56789"
//	amount=1000000000000000000, 18  -> "1"
//	amount=1, decimals=18           -> "0.000000000000000001"
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Set(amount)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	base := pow10(decimals)
	intPart, fracPart := new(big.Int).QuoRem(abs, base, new(big.Int))

	if fracPart.Sign() == 0 {
		return sign + intPart.String()
	}

	// Left-pad fractional part to `decimals`
	fracStr := fracPart.String()
	if len(fracStr) < int(decimals) {
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
	}

	return sign + intPart.String() + "." + strings.TrimRight(fracStr, "0")
}

// FormatEther renders a wei amount as ether.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, constants.EtherDecimals)
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
