package passgen_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywarden/keywarden/internal/passgen"
)

func TestCalculateEntropy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		expected float64
	}{
		{"empty", "", 0},
		{"lowercase only", "aaaa", 4 * math.Log2(26)},
		{"uppercase only", "ZZZZ", 4 * math.Log2(26)},
		{"digits only", "1234", 4 * math.Log2(10)},
		{"symbols only", "!!!!", 4 * math.Log2(32)},
		{"all four classes", "Aa1!", 4 * math.Log2(94)},
		{"mixed case", "aAaA", 4 * math.Log2(52)},
		{"lower and digits", "abc123", 6 * math.Log2(36)},
		{"eight lowercase", "password", 8 * math.Log2(26)},
		{"sixteen all classes", "Aa1!Aa1!Aa1!Aa1!", 16 * math.Log2(94)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := passgen.CalculateEntropy(tt.password)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestCalculateEntropy_NonASCIICountsAsSymbol(t *testing.T) {
	t.Parallel()

	// Characters outside [a-zA-Z0-9] belong to the 32-wide symbol class,
	// and length counts runes, not bytes.
	got := passgen.CalculateEntropy("ééé")
	assert.InDelta(t, 3*math.Log2(32), got, 1e-9)
}

func TestStrengthFromEntropy_Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bits     float64
		expected passgen.Strength
	}{
		{"zero", 0, passgen.Weak},
		{"just below fair", 27.99, passgen.Weak},
		{"exactly fair", 28.0, passgen.Fair},
		{"just below good", 35.99, passgen.Fair},
		{"exactly good", 36.0, passgen.Good},
		{"just below strong", 59.99, passgen.Good},
		{"exactly strong", 60.0, passgen.Strong},
		{"eighty bits", 80.0, passgen.Strong},
		{"very high", 104.87, passgen.Strong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, passgen.StrengthFromEntropy(tt.bits))
		})
	}
}

func TestEstimateStrength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		expected passgen.Strength
	}{
		{"empty", "", passgen.Weak},
		{"short lowercase", "abc", passgen.Weak},
		{"four all classes", "Aa1!", passgen.Weak},
		{"six lowercase", "abcdef", passgen.Fair},
		{"eight lowercase", "password", passgen.Good},
		{"eight all classes", "Aa1!Bb2@", passgen.Good},
		{"sixteen lowercase", "abcdefghijklmnop", passgen.Strong},
		{"sixteen all classes", "Aa1!Bb2@Cc3#Dd4$", passgen.Strong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, passgen.EstimateStrength(tt.password))
		})
	}
}

func TestStrength_Ordering(t *testing.T) {
	t.Parallel()

	// Tiers are ordered so callers can compare them directly.
	assert.Less(t, passgen.Weak, passgen.Fair)
	assert.Less(t, passgen.Fair, passgen.Good)
	assert.Less(t, passgen.Good, passgen.Strong)
}

func TestStrength_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strength passgen.Strength
		expected string
	}{
		{passgen.Weak, "weak"},
		{passgen.Fair, "fair"},
		{passgen.Good, "good"},
		{passgen.Strong, "strong"},
		{passgen.Strength(99), "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.strength.String())
		})
	}
}

func TestStrength_MarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(passgen.Strong)
	require.NoError(t, err)
	assert.JSONEq(t, `"strong"`, string(data))
}

func TestGeneratedPasswordStrength(t *testing.T) {
	t.Parallel()

	// A 16-character password over the full 94-character pool carries
	// about 104.9 bits of entropy and must rate strong.
	opts := passgen.DefaultOptions()

	password, err := passgen.Generate(opts)
	require.NoError(t, err)
	require.Len(t, password, 16)

	entropy := passgen.CalculateEntropy(password)
	assert.InDelta(t, 16*math.Log2(94), entropy, 1e-9)
	assert.Equal(t, passgen.Strong, passgen.EstimateStrength(password))
}
