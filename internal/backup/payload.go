package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keywarden/keywarden/internal/vault"
)

// PayloadVersion is the current payload format version. It tracks the
// shape of the decrypted content, independent of the envelope version.
const PayloadVersion = "1.0"

// Payload is the plaintext content of a backup: a snapshot of vault
// accounts with enough metadata to sanity-check it after decryption.
type Payload struct {
	// Version is the payload format version.
	Version string `json:"version"`

	// CreatedAt is when the backup was taken.
	CreatedAt time.Time `json:"createdAt"`

	// Count is the number of accounts, recorded redundantly so a
	// truncated or corrupted payload is detectable.
	Count int `json:"count"`

	// Accounts is the full account snapshot.
	Accounts []vault.Account `json:"accounts"`
}

// NewPayload builds a payload from an account snapshot, stamping the
// current time and count.
func NewPayload(accounts []vault.Account) *Payload {
	return &Payload{
		Version:   PayloadVersion,
		CreatedAt: time.Now().UTC(),
		Count:     len(accounts),
		Accounts:  accounts,
	}
}

// Validate checks internal consistency of a decoded payload.
func (p *Payload) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("%w: missing version field", ErrMalformedPayload)
	}

	if p.Count != len(p.Accounts) {
		return fmt.Errorf("%w: count is %d but payload holds %d accounts",
			ErrMalformedPayload, p.Count, len(p.Accounts))
	}

	return nil
}

// ParsePayload decodes a payload from its JSON form and validates it.
func ParsePayload(data []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}

	return &payload, nil
}

// Marshal serializes the payload to JSON.
func (p *Payload) Marshal() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return data, nil
}
