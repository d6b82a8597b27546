// Package backup implements encrypted vault backups.
//
// A backup is a JSON envelope wrapping an encrypted payload. Two envelope
// versions exist: version 1.0 uses PBKDF2-derived AES-256-CBC and carries
// hex-encoded IV and salt fields, while version 2.0 uses an age scrypt
// recipient and leaves those fields empty. Decryption failures are reported
// uniformly so the error never reveals which stage rejected the input.
package backup

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// Envelope versions understood by this package.
const (
	// VersionLegacy marks envelopes encrypted with PBKDF2 and AES-256-CBC.
	VersionLegacy = "1.0"

	// VersionAEAD marks envelopes encrypted with the age scrypt recipient.
	VersionAEAD = "2.0"
)

// Sizes of the random values in a legacy envelope, in raw bytes.
// Hex encoding doubles these on the wire.
const (
	saltSize = 16
	ivSize   = 16
)

// Error variables for backup operations
var (
	// ErrDecryptionFailed is returned when decryption fails for any reason
	ErrDecryptionFailed = wardenerr.ErrDecryptionFailed

	// ErrMalformedEnvelope is returned when an envelope fails validation
	ErrMalformedEnvelope = wardenerr.ErrMalformedEnvelope

	// ErrUnsupportedVersion is returned when an envelope version is unknown
	ErrUnsupportedVersion = wardenerr.ErrUnsupportedVersion

	// ErrMalformedPayload is returned when a decrypted payload is invalid
	ErrMalformedPayload = wardenerr.ErrMalformedPayload
)

// EncryptedEnvelope is the serialized form of an encrypted backup.
//
// Data always holds base64-encoded ciphertext. IV and Salt are hex encoded
// for legacy envelopes and empty for AEAD envelopes, where the age format
// carries its own header.
type EncryptedEnvelope struct {
	// Version identifies the encryption scheme ("1.0" or "2.0")
	Version string `json:"version"`

	// Data is the base64-encoded ciphertext
	Data string `json:"data"`

	// IV is the hex-encoded initialization vector (legacy only)
	IV string `json:"iv"`

	// Salt is the hex-encoded key derivation salt (legacy only)
	Salt string `json:"salt"`
}

// Validate checks the envelope for structural problems before any
// cryptographic work is attempted. It fails fast on the first problem found.
func (e *EncryptedEnvelope) Validate() error {
	switch e.Version {
	case VersionLegacy:
		if e.Data == "" {
			return fmt.Errorf("%w: empty data field", ErrMalformedEnvelope)
		}

		if err := validateHexField("iv", e.IV, ivSize); err != nil {
			return err
		}

		if err := validateHexField("salt", e.Salt, saltSize); err != nil {
			return err
		}
	case VersionAEAD:
		if e.Data == "" {
			return fmt.Errorf("%w: empty data field", ErrMalformedEnvelope)
		}
	case "":
		return fmt.Errorf("%w: missing version field", ErrMalformedEnvelope)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, e.Version)
	}

	return nil
}

// validateHexField checks that a field holds exactly rawLen bytes of hex.
func validateHexField(name, value string, rawLen int) error {
	if value == "" {
		return fmt.Errorf("%w: empty %s field", ErrMalformedEnvelope, name)
	}

	decoded, err := hex.DecodeString(value)
	if err != nil {
		return fmt.Errorf("%w: %s field is not valid hex", ErrMalformedEnvelope, name)
	}

	if len(decoded) != rawLen {
		return fmt.Errorf("%w: %s field has %d bytes, expected %d",
			ErrMalformedEnvelope, name, len(decoded), rawLen)
	}

	return nil
}

// ParseEnvelope decodes an envelope from its JSON form and validates it.
func ParseEnvelope(data []byte) (*EncryptedEnvelope, error) {
	var envelope EncryptedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedEnvelope, err.Error())
	}

	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	return &envelope, nil
}

// Marshal serializes the envelope to JSON.
func (e *EncryptedEnvelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return data, nil
}
