package common

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	NEARDecimals = 24 // 1 NEAR = 10^24 yoctoNEAR
)

// YoctoToNEAR converts a yoctoNEAR amount to a NEAR decimal string without float precision loss.
// Trailing fractional zeros are trimmed: 1500000000000000000000000 -> "1.5"
func YoctoToNEAR(yocto *big.Int) string {
	if yocto == nil {
		return "0"
	}
	s := formatWithDecimals(yocto, NEARDecimals)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// NEARToYocto converts a NEAR decimal string to yoctoNEAR without float precision loss
func NEARToYocto(near string) (*big.Int, error) {
	return parseWithDecimals(near, NEARDecimals)
}

// ParseYocto parses a base-10 yoctoNEAR string as returned by contract views.
func ParseYocto(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid yocto amount '%s'", s)
	}
	return v, nil
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value *big.Int, decimals int) string {
	s := value.String()

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("0.024981836", 9) = 24981836
func parseWithDecimals(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty string")
	}

	whole, frac, hasPoint := strings.Cut(s, ".")
	if hasPoint && strings.Contains(frac, ".") {
		return nil, fmt.Errorf("invalid decimal format")
	}
	if whole == "" {
		whole = "0"
	}

	// Fractional digits beyond the precision would be silently lost
	if len(frac) > decimals {
		if strings.Trim(frac[decimals:], "0") != "" {
			return nil, fmt.Errorf("more than %d decimal places", decimals)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	combined := whole + frac
	for _, r := range combined {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("invalid character %q in amount", r)
		}
	}

	v, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount '%s'", s)
	}
	return v, nil
}

// CompareNEARAmounts compares two NEAR decimal string amounts without float precision loss.
// Returns: -1 if a < b, 0 if a == b, 1 if a > b, and error if parsing fails
func CompareNEARAmounts(a, b string) (int, error) {
	aVal, err := NEARToYocto(a)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", a, err)
	}

	bVal, err := NEARToYocto(b)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", b, err)
	}

	return aVal.Cmp(bVal), nil
}
