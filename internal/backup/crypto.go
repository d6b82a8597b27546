package backup

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" // #nosec G505 -- PBKDF2-SHA1 is required for legacy envelope compatibility
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	"github.com/keywarden/keywarden/internal/wardencrypto"
)

// Key derivation parameters for legacy envelopes. These are fixed by the
// version 1.0 format and must not change, or existing backups become
// unreadable.
const (
	legacyIterations = 10000
	legacyKeySize    = 32
)

// errInvalidPadding is internal only. Callers always see ErrDecryptionFailed
// so a wrong passphrase and tampered padding are indistinguishable.
var errInvalidPadding = errors.New("invalid padding")

// Encrypt encrypts plaintext with the given passphrase and returns a
// version 2.0 envelope. The age scrypt recipient handles key derivation,
// nonce generation, and authentication.
func Encrypt(plaintext []byte, passphrase string) (*EncryptedEnvelope, error) {
	ciphertext, err := wardencrypto.Encrypt(plaintext, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt backup: %w", err)
	}

	return &EncryptedEnvelope{
		Version: VersionAEAD,
		Data:    base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// EncryptLegacy encrypts plaintext into a version 1.0 envelope using
// PBKDF2-SHA1 key derivation and AES-256-CBC. New backups should prefer
// Encrypt; this exists so older tooling can still read the output.
func EncryptLegacy(plaintext []byte, passphrase string) (*EncryptedEnvelope, error) {
	salt, err := wardencrypto.RandomBytes(saltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	iv, err := wardencrypto.RandomBytes(ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	key := legacyKey(passphrase, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return &EncryptedEnvelope{
		Version: VersionLegacy,
		Data:    base64.StdEncoding.EncodeToString(ciphertext),
		IV:      hex.EncodeToString(iv),
		Salt:    hex.EncodeToString(salt),
	}, nil
}

// Decrypt decrypts an envelope with the given passphrase, dispatching on
// the envelope version. Any failure after validation is reported as
// ErrDecryptionFailed without further detail.
func Decrypt(envelope *EncryptedEnvelope, passphrase string) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data field is not valid base64", ErrMalformedEnvelope)
	}

	switch envelope.Version {
	case VersionLegacy:
		return decryptLegacy(envelope, ciphertext, passphrase)
	case VersionAEAD:
		plaintext, err := wardencrypto.Decrypt(ciphertext, passphrase)
		if err != nil {
			return nil, ErrDecryptionFailed
		}

		return plaintext, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, envelope.Version)
	}
}

// decryptLegacy handles version 1.0 envelopes. CBC mode carries no
// authenticator, so PKCS#7 padding plus a UTF-8 check on the result are the
// only integrity signals available. All failures collapse into
// ErrDecryptionFailed.
func decryptLegacy(envelope *EncryptedEnvelope, ciphertext []byte, passphrase string) ([]byte, error) {
	iv, err := hex.DecodeString(envelope.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv field is not valid hex", ErrMalformedEnvelope)
	}

	salt, err := hex.DecodeString(envelope.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: salt field is not valid hex", ErrMalformedEnvelope)
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	key := legacyKey(passphrase, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	if len(unpadded) == 0 || !utf8.Valid(unpadded) {
		return nil, ErrDecryptionFailed
	}

	return unpadded, nil
}

// ValidatePassword reports whether the passphrase decrypts the envelope.
// It never returns an error: any failure means false. The recovered
// plaintext is zeroed before returning.
func ValidatePassword(envelope *EncryptedEnvelope, passphrase string) bool {
	plaintext, err := Decrypt(envelope, passphrase)
	if err != nil {
		return false
	}

	for i := range plaintext {
		plaintext[i] = 0
	}

	return true
}

// legacyKey derives the AES key for a version 1.0 envelope.
func legacyKey(passphrase string, salt []byte) []byte {
	// #nosec G401 -- PBKDF2-SHA1 is required for legacy envelope compatibility
	return pbkdf2.Key([]byte(passphrase), salt, legacyIterations, legacyKeySize, sha1.New)
}

// pkcs7Pad appends PKCS#7 padding to reach a multiple of blockSize.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

// pkcs7Unpad strips PKCS#7 padding, verifying every padding byte.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errInvalidPadding
	}

	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, errInvalidPadding
	}

	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errInvalidPadding
		}
	}

	return data[:len(data)-padding], nil
}
