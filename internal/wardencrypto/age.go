package wardencrypto

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// scryptWorkFactor is the log2(N) cost passed to age's scrypt recipient.
// 18 matches age's own default.
//
//nolint:gochecknoglobals // Tunable so the test suite can run with a cheap KDF
var scryptWorkFactor = 18

// SetScryptWorkFactor overrides the scrypt work factor (log2 N) used when
// encrypting. Values outside [1, 30] are ignored. Intended for tests;
// production callers should leave the default.
func SetScryptWorkFactor(logN int) {
	if logN < 1 || logN > 30 {
		return
	}
	scryptWorkFactor = logN
}

// Encrypt encrypts plaintext using age with a passphrase-based recipient.
// The output is an authenticated (AEAD) ciphertext; tampering is detected
// at decrypt time.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(scryptWorkFactor)

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Decrypt decrypts ciphertext using age with a passphrase-based identity.
func Decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("initializing decryption: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted data: %w", err)
	}

	return plaintext, nil
}

// EncryptSecure encrypts SecureBytes using age with a passphrase-based recipient.
func EncryptSecure(sb *SecureBytes, passphrase string) ([]byte, error) {
	data := sb.Bytes()
	if data == nil {
		return nil, nil
	}
	return Encrypt(data, passphrase)
}

// DecryptSecure decrypts ciphertext into SecureBytes.
func DecryptSecure(ciphertext []byte, passphrase string) (*SecureBytes, error) {
	plaintext, err := Decrypt(ciphertext, passphrase)
	if err != nil {
		return nil, err
	}

	// Ensure plaintext is zeroed on all paths including errors
	defer func() {
		for i := range plaintext {
			plaintext[i] = 0
		}
	}()

	sb, err := SecureBytesFromSlice(plaintext)
	if err != nil {
		return nil, err
	}

	return sb, nil
}
