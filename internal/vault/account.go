// Package vault provides account storage with passphrase-protected
// encryption at rest.
package vault

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/mrz1836/go-sanitize"

	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// Category classifies what kind of credential an account holds.
type Category string

// Supported account categories.
const (
	CategoryLogin   Category = "login"
	CategoryFinance Category = "finance"
	CategoryEmail   Category = "email"
	CategorySocial  Category = "social"
	CategoryWork    Category = "work"
	CategoryOther   Category = "other"
)

// MaxCategoryTypoDistance is the maximum Levenshtein distance to consider
// a category suggestion. Inputs further away get no suggestion.
const MaxCategoryTypoDistance = 2

var (
	// ErrAccountNotFound indicates the account does not exist.
	ErrAccountNotFound = wardenerr.ErrAccountNotFound

	// ErrAccountExists indicates an account with that name already exists.
	ErrAccountExists = wardenerr.ErrAccountExists

	// ErrInvalidCategory indicates the category is not recognized.
	ErrInvalidCategory = wardenerr.ErrInvalidCategory

	// ErrInvalidAccountName indicates the account name is invalid.
	ErrInvalidAccountName = wardenerr.WithSuggestion(wardenerr.ErrInvalidInput,
		"account name must be 1-64 alphanumeric characters, dots, underscores, or hyphens")

	// accountNameRegex validates account names: alphanumeric + dot + underscore + hyphen, 1-64 chars.
	accountNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)
)

// String returns the category identifier string.
func (c Category) String() string {
	return string(c)
}

// IsValid returns true if the category is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryLogin, CategoryFinance, CategoryEmail, CategorySocial, CategoryWork, CategoryOther:
		return true
	default:
		return false
	}
}

// AllCategories returns all known categories.
func AllCategories() []Category {
	return []Category{
		CategoryLogin, CategoryFinance, CategoryEmail,
		CategorySocial, CategoryWork, CategoryOther,
	}
}

// ParseCategory parses a string into a Category. Input is lowercased and
// trimmed first. Unknown values produce ErrInvalidCategory, with a
// closest-match suggestion attached when one is near enough.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.IsValid() {
		return c, nil
	}

	if suggestion := SuggestCategory(string(c)); suggestion != "" {
		return "", wardenerr.WithSuggestion(ErrInvalidCategory,
			"did you mean '"+suggestion+"'?")
	}

	return "", wardenerr.WithDetails(ErrInvalidCategory, map[string]string{
		"input": s,
	})
}

// SuggestCategory finds the closest category name to the input using
// Levenshtein distance. Returns empty string if no category is close enough.
func SuggestCategory(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string

	for _, c := range AllCategories() {
		dist := levenshtein.ComputeDistance(input, c.String())
		if dist < minDist {
			minDist = dist
			suggestion = c.String()
		}
		// Early exit for exact match
		if dist == 0 {
			return c.String()
		}
	}

	if minDist <= MaxCategoryTypoDistance {
		return suggestion
	}
	return ""
}

// Account represents a stored credential.
type Account struct {
	// ID is a stable unique identifier, assigned at creation.
	ID string `json:"id"`

	// Name is the unique human-facing identifier for this account.
	Name string `json:"name"`

	// Username is the login identity, such as an email or handle.
	Username string `json:"username"`

	// Password is the stored secret.
	Password string `json:"password"`

	// Website is the site or service this credential belongs to.
	Website string `json:"website,omitempty"`

	// Category classifies the credential.
	Category Category `json:"category"`

	// Icon is an optional display icon identifier.
	Icon string `json:"icon,omitempty"`

	// Notes holds free-form text attached to the account.
	Notes string `json:"notes,omitempty"`

	// CreatedAt is the account creation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the last modification timestamp.
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateAccountName checks if an account name is valid.
func ValidateAccountName(name string) error {
	if !accountNameRegex.MatchString(name) {
		return ErrInvalidAccountName
	}
	return nil
}

// SuggestAccountName provides a sanitized version of an invalid account name.
// It uses sanitize.PathName to clean the input, keeping only ASCII
// alphanumeric characters, hyphens, and underscores. The result is truncated
// to 64 characters. Returns empty string if the input cannot be sanitized
// to a valid name.
func SuggestAccountName(name string) string {
	suggested := sanitize.PathName(name)
	if suggested == "" {
		return ""
	}
	if len(suggested) > 64 {
		suggested = suggested[:64]
	}
	return suggested
}

// NewAccount creates an account with a fresh ID and creation timestamp.
// The category defaults to CategoryOther when empty.
func NewAccount(name, username, password string, category Category) (*Account, error) {
	if err := ValidateAccountName(name); err != nil {
		return nil, err
	}

	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return nil, wardenerr.WithDetails(ErrInvalidCategory, map[string]string{
			"input": string(category),
		})
	}

	now := time.Now().UTC()

	return &Account{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  sanitize.SingleLine(strings.TrimSpace(username)),
		Password:  password,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetWebsite normalizes and stores the account website.
func (a *Account) SetWebsite(rawURL string) {
	a.Website = sanitize.URL(strings.TrimSpace(rawURL))
}

// Validate checks the account record for required fields.
func (a *Account) Validate() error {
	if err := ValidateAccountName(a.Name); err != nil {
		return err
	}

	if strings.TrimSpace(a.Username) == "" {
		return wardenerr.WithSuggestion(wardenerr.ErrInvalidInput, "username must not be empty")
	}

	if a.Password == "" {
		return wardenerr.WithSuggestion(wardenerr.ErrInvalidInput, "password must not be empty")
	}

	if !a.Category.IsValid() {
		return wardenerr.WithDetails(ErrInvalidCategory, map[string]string{
			"input": string(a.Category),
		})
	}

	return nil
}

// Touch updates the modification timestamp.
func (a *Account) Touch() {
	a.UpdatedAt = time.Now().UTC()
}

// Redacted returns a copy of the account with the password masked.
// Used for listing output where the secret must not appear.
func (a *Account) Redacted() Account {
	redacted := *a
	if redacted.Password != "" {
		redacted.Password = "********"
	}
	return redacted
}

// SortAccounts orders accounts by name, case-insensitively. Ties fall back
// to the raw name so the order is deterministic.
func SortAccounts(accounts []Account) {
	sort.Slice(accounts, func(i, j int) bool {
		ni, nj := strings.ToLower(accounts[i].Name), strings.ToLower(accounts[j].Name)
		if ni != nj {
			return ni < nj
		}
		return accounts[i].Name < accounts[j].Name
	})
}

// FindByName returns the index of the account with the given name, or -1.
// Matching is case-insensitive.
func FindByName(accounts []Account, name string) int {
	for i := range accounts {
		if strings.EqualFold(accounts[i].Name, name) {
			return i
		}
	}
	return -1
}

// ClosestName finds the account name closest to the input using Levenshtein
// distance, for use in not-found suggestions. Returns empty string if no
// name is within MaxCategoryTypoDistance+1 edits.
func ClosestName(accounts []Account, input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string

	for i := range accounts {
		dist := levenshtein.ComputeDistance(input, strings.ToLower(accounts[i].Name))
		if dist < minDist {
			minDist = dist
			suggestion = accounts[i].Name
		}
		if dist == 0 {
			return accounts[i].Name
		}
	}

	if minDist <= MaxCategoryTypoDistance+1 {
		return suggestion
	}
	return ""
}
