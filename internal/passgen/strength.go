package passgen

import (
	"encoding/json"
	"math"
	"unicode/utf8"
)

// Strength is an ordered password strength tier.
type Strength int

// Strength tiers, weakest first.
const (
	Weak Strength = iota
	Fair
	Good
	Strong
)

// Entropy thresholds in bits. A password is rated at the highest tier whose
// threshold its entropy reaches.
const (
	fairThreshold   = 28.0
	goodThreshold   = 36.0
	strongThreshold = 60.0
)

// Class pool sizes used for entropy estimation. Any character outside the
// three alphanumeric classes counts toward the symbol class.
const (
	lowercasePool = 26
	uppercasePool = 26
	numberPool    = 10
	symbolPool    = 32
)

func (s Strength) String() string {
	switch s {
	case Weak:
		return "weak"
	case Fair:
		return "fair"
	case Good:
		return "good"
	case Strong:
		return "strong"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the tier as its string form.
func (s Strength) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CalculateEntropy estimates password entropy in bits as
// length × log2(poolSize), where poolSize sums the sizes of the character
// classes observed in the password. An empty password has zero entropy.
func CalculateEntropy(password string) float64 {
	if password == "" {
		return 0
	}

	var hasLower, hasUpper, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}

	poolSize := 0
	if hasLower {
		poolSize += lowercasePool
	}
	if hasUpper {
		poolSize += uppercasePool
	}
	if hasNumber {
		poolSize += numberPool
	}
	if hasSymbol {
		poolSize += symbolPool
	}
	if poolSize == 0 {
		// Unreachable for non-empty input; guards the log domain.
		poolSize = 1
	}

	return float64(utf8.RuneCountInString(password)) * math.Log2(float64(poolSize))
}

// EstimateStrength maps a password to its strength tier via its estimated
// entropy. Pure function, no side effects.
func EstimateStrength(password string) Strength {
	return StrengthFromEntropy(CalculateEntropy(password))
}

// StrengthFromEntropy maps an entropy value in bits to a strength tier.
func StrengthFromEntropy(bits float64) Strength {
	switch {
	case bits < fairThreshold:
		return Weak
	case bits < goodThreshold:
		return Fair
	case bits < strongThreshold:
		return Good
	default:
		return Strong
	}
}
