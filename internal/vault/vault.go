package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/keywarden/keywarden/internal/metrics"
	"github.com/keywarden/keywarden/internal/store"
	"github.com/keywarden/keywarden/internal/wardencrypto"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// Store keys the vault persists under. The canary is a small encrypted
// value used to check a passphrase without touching account data.
const (
	keyMeta     = "vault_meta"
	keyCanary   = "vault_canary"
	keyAccounts = "vault_accounts"
)

// vaultVersion is the current vault metadata version.
const vaultVersion = 1

// canarySize is the size of the random canary plaintext in bytes.
const canarySize = 16

var (
	// ErrVaultNotFound indicates no vault has been initialized.
	ErrVaultNotFound = wardenerr.ErrVaultNotFound

	// ErrVaultExists indicates a vault is already initialized.
	ErrVaultExists = wardenerr.ErrVaultExists

	// ErrWrongPassphrase indicates the passphrase does not unlock the vault.
	ErrWrongPassphrase = wardenerr.WithSuggestion(wardenerr.ErrAuthentication,
		"check your passphrase and try again")
)

// Meta is the plaintext vault metadata, readable without the passphrase.
type Meta struct {
	// Version is the vault format version.
	Version int `json:"version"`

	// CreatedAt is when the vault was initialized.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the vault was last written.
	UpdatedAt time.Time `json:"updated_at"`

	// Count is the number of stored accounts.
	Count int `json:"count"`
}

// Vault is a passphrase-locked account collection over a KV store.
// Account data is age-encrypted as a single blob; only metadata and the
// canary are stored alongside it.
type Vault struct {
	kv store.KV
}

// New creates a vault over the given store.
func New(kv store.KV) *Vault {
	return &Vault{kv: kv}
}

// Exists reports whether a vault has been initialized in the store.
func (v *Vault) Exists() (bool, error) {
	_, ok, err := v.kv.Get(keyMeta)
	if err != nil {
		return false, fmt.Errorf("checking vault existence: %w", err)
	}
	return ok, nil
}

// Init creates an empty vault locked with the given passphrase.
// Fails with ErrVaultExists if one is already present.
func (v *Vault) Init(passphrase string) error {
	err := v.doInit(passphrase)
	metrics.Global.RecordVaultOp(err)
	return err
}

func (v *Vault) doInit(passphrase string) error {
	exists, err := v.Exists()
	if err != nil {
		return err
	}
	if exists {
		return ErrVaultExists
	}

	if err := v.writeCanary(passphrase); err != nil {
		return err
	}

	if err := v.writeAccounts(nil, passphrase); err != nil {
		return err
	}

	now := time.Now().UTC()
	return v.writeMeta(Meta{
		Version:   vaultVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Count:     0,
	})
}

// Load decrypts and returns the account collection.
func (v *Vault) Load(passphrase string) ([]Account, error) {
	accounts, err := v.doLoad(passphrase)
	metrics.Global.RecordVaultOp(err)
	return accounts, err
}

func (v *Vault) doLoad(passphrase string) ([]Account, error) {
	exists, err := v.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrVaultNotFound
	}

	encoded, ok, err := v.kv.Get(keyAccounts)
	if err != nil {
		return nil, fmt.Errorf("reading vault accounts: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: vault accounts entry missing", wardenerr.ErrStorageFailure)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: vault accounts entry not valid base64", wardenerr.ErrStorageFailure)
	}

	plaintext, err := wardencrypto.Decrypt(ciphertext, passphrase)
	if err != nil {
		return nil, ErrWrongPassphrase
	}

	var accounts []Account
	if err := json.Unmarshal(plaintext, &accounts); err != nil {
		return nil, fmt.Errorf("%w: parsing vault accounts: %s", wardenerr.ErrStorageFailure, err.Error())
	}

	return accounts, nil
}

// Save encrypts and stores the account collection, replacing the previous
// one. The passphrase is verified against the canary first so account data
// can never end up encrypted under a different passphrase than the vault.
func (v *Vault) Save(accounts []Account, passphrase string) error {
	err := v.doSave(accounts, passphrase)
	metrics.Global.RecordVaultOp(err)
	return err
}

func (v *Vault) doSave(accounts []Account, passphrase string) error {
	exists, err := v.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return ErrVaultNotFound
	}

	if !v.CheckPassphrase(passphrase) {
		return ErrWrongPassphrase
	}

	SortAccounts(accounts)

	if err := v.writeAccounts(accounts, passphrase); err != nil {
		return err
	}

	meta, err := v.Meta()
	if err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	meta.Count = len(accounts)
	return v.writeMeta(*meta)
}

// CheckPassphrase reports whether the passphrase unlocks the vault.
// Any failure means false.
func (v *Vault) CheckPassphrase(passphrase string) bool {
	encoded, ok, err := v.kv.Get(keyCanary)
	if err != nil || !ok {
		return false
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	plaintext, err := wardencrypto.Decrypt(ciphertext, passphrase)
	if err != nil {
		return false
	}

	for i := range plaintext {
		plaintext[i] = 0
	}

	return true
}

// Meta returns the plaintext vault metadata.
func (v *Vault) Meta() (*Meta, error) {
	encoded, ok, err := v.kv.Get(keyMeta)
	if err != nil {
		return nil, fmt.Errorf("reading vault metadata: %w", err)
	}
	if !ok {
		return nil, ErrVaultNotFound
	}

	var meta Meta
	if err := json.Unmarshal([]byte(encoded), &meta); err != nil {
		return nil, fmt.Errorf("%w: parsing vault metadata: %s", wardenerr.ErrStorageFailure, err.Error())
	}

	return &meta, nil
}

// ChangePassphrase re-encrypts the vault under a new passphrase.
// Account data is rewritten before the canary; the two writes are not
// atomic, so a crash between them leaves the canary answering for the old
// passphrase while the data needs the new one.
func (v *Vault) ChangePassphrase(oldPassphrase, newPassphrase string) error {
	accounts, err := v.Load(oldPassphrase)
	if err != nil {
		return err
	}

	if err := v.writeAccounts(accounts, newPassphrase); err != nil {
		return err
	}

	if err := v.writeCanary(newPassphrase); err != nil {
		return err
	}

	meta, err := v.Meta()
	if err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	return v.writeMeta(*meta)
}

// AddAccount inserts a new account into the vault.
func (v *Vault) AddAccount(passphrase string, account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	accounts, err := v.Load(passphrase)
	if err != nil {
		return err
	}

	if FindByName(accounts, account.Name) >= 0 {
		return wardenerr.WithDetails(ErrAccountExists, map[string]string{
			"name": account.Name,
		})
	}

	accounts = append(accounts, *account)
	return v.Save(accounts, passphrase)
}

// GetAccount returns the account with the given name. A miss carries a
// closest-match suggestion when one is near enough.
func (v *Vault) GetAccount(passphrase, name string) (*Account, error) {
	accounts, err := v.Load(passphrase)
	if err != nil {
		return nil, err
	}

	idx := FindByName(accounts, name)
	if idx < 0 {
		return nil, notFoundError(accounts, name)
	}

	account := accounts[idx]
	return &account, nil
}

// UpdateAccount replaces the stored account with the same name. The
// original ID and creation time are preserved.
func (v *Vault) UpdateAccount(passphrase string, account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	accounts, err := v.Load(passphrase)
	if err != nil {
		return err
	}

	idx := FindByName(accounts, account.Name)
	if idx < 0 {
		return notFoundError(accounts, account.Name)
	}

	account.ID = accounts[idx].ID
	account.CreatedAt = accounts[idx].CreatedAt
	account.Touch()
	accounts[idx] = *account

	return v.Save(accounts, passphrase)
}

// RemoveAccount deletes the account with the given name.
func (v *Vault) RemoveAccount(passphrase, name string) error {
	accounts, err := v.Load(passphrase)
	if err != nil {
		return err
	}

	idx := FindByName(accounts, name)
	if idx < 0 {
		return notFoundError(accounts, name)
	}

	accounts = append(accounts[:idx], accounts[idx+1:]...)
	return v.Save(accounts, passphrase)
}

// notFoundError builds an ErrAccountNotFound, attaching a did-you-mean
// suggestion when a stored name is close to the requested one.
func notFoundError(accounts []Account, name string) error {
	if closest := ClosestName(accounts, name); closest != "" {
		return wardenerr.WithSuggestion(ErrAccountNotFound,
			"did you mean '"+closest+"'?")
	}
	return wardenerr.WithDetails(ErrAccountNotFound, map[string]string{
		"name": name,
	})
}

// writeCanary encrypts a fresh random canary under the passphrase.
//
//nolint:funcorder // Keeping helper methods together
func (v *Vault) writeCanary(passphrase string) error {
	plaintext, err := wardencrypto.RandomBytes(canarySize)
	if err != nil {
		return fmt.Errorf("generating canary: %w", err)
	}

	ciphertext, err := wardencrypto.Encrypt(plaintext, passphrase)
	if err != nil {
		return fmt.Errorf("encrypting canary: %w", err)
	}

	if err := v.kv.Set(keyCanary, base64.StdEncoding.EncodeToString(ciphertext)); err != nil {
		return fmt.Errorf("storing canary: %w", err)
	}

	return nil
}

// writeAccounts encrypts and stores the account collection.
//
//nolint:funcorder // Keeping helper methods together
func (v *Vault) writeAccounts(accounts []Account, passphrase string) error {
	if accounts == nil {
		accounts = []Account{}
	}

	plaintext, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("marshaling accounts: %w", err)
	}

	ciphertext, err := wardencrypto.Encrypt(plaintext, passphrase)
	if err != nil {
		return fmt.Errorf("encrypting accounts: %w", err)
	}

	if err := v.kv.Set(keyAccounts, base64.StdEncoding.EncodeToString(ciphertext)); err != nil {
		return fmt.Errorf("storing accounts: %w", err)
	}

	return nil
}

// writeMeta stores the plaintext metadata.
//
//nolint:funcorder // Keeping helper methods together
func (v *Vault) writeMeta(meta Meta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling vault metadata: %w", err)
	}

	if err := v.kv.Set(keyMeta, string(data)); err != nil {
		return fmt.Errorf("storing vault metadata: %w", err)
	}

	return nil
}
