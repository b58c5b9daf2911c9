package types

import (
	"fmt"
	"math/big"
	"strings"
)

// etherDecimals is the number of decimal places of the chain's base unit.
// Both the native asset and the vault receipt token use 18 decimals.
const etherDecimals = 18

// weiPerEther is 10^18, the number of wei in one whole token.
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(etherDecimals), nil)

// ParseEther converts a decimal token amount (e.g. "1.5") into its wei
// representation. It rejects empty, malformed and negative inputs, and
// inputs with more than 18 fractional digits.
func ParseEther(amount string) (*big.Int, error) {
	// The sign must be rejected before splitting: "-0.5" would otherwise
	// split into "-0" (sign lost on parse) and a positive fraction.
	if strings.Contains(amount, "-") {
		return nil, fmt.Errorf("invalid decimal amount: %q", amount)
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid decimal amount: %q", amount)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > etherDecimals {
		return nil, fmt.Errorf("amount %q exceeds %d decimal places", amount, etherDecimals)
	}

	wholeWei, ok := new(big.Int).SetString(whole, 10)
	if !ok || wholeWei.Sign() < 0 {
		return nil, fmt.Errorf("invalid decimal amount: %q", amount)
	}
	wholeWei.Mul(wholeWei, weiPerEther)

	if frac == "" {
		return wholeWei, nil
	}

	// Right-pad the fractional part to 18 digits before parsing.
	fracWei, ok := new(big.Int).SetString(frac+strings.Repeat("0", etherDecimals-len(frac)), 10)
	if !ok || fracWei.Sign() < 0 {
		return nil, fmt.Errorf("invalid decimal amount: %q", amount)
	}

	return wholeWei.Add(wholeWei, fracWei), nil
}

// FormatEther converts a wei quantity into a decimal token amount string,
// trimming trailing zeros from the fractional part ("1.5", "10", "0.000001").
// Nil is formatted as "0".
func FormatEther(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}

	whole, frac := new(big.Int).QuoRem(wei, weiPerEther, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}

	fracStr := strings.TrimRight(fmt.Sprintf("%018s", frac.String()), "0")
	return whole.String() + "." + fracStr
}
