package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/keywarden/keywarden/internal/fileutil"
	"github.com/keywarden/keywarden/internal/metrics"
	"github.com/keywarden/keywarden/internal/vault"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

const (
	// Extension is the file extension for backups.
	Extension = ".warden"

	// DirPermissions is the permission mode for the backup directory.
	DirPermissions = 0o750

	// FilePermissions is the permission mode for backup files.
	FilePermissions = 0o600

	// filenamePrefix starts every generated backup filename.
	filenamePrefix = "vault-"

	// filenameTimeLayout is the timestamp layout in generated filenames.
	filenameTimeLayout = "2006-01-02-150405"
)

// ErrBackupNotFound indicates the backup file does not exist.
var ErrBackupNotFound = wardenerr.ErrBackupNotFound

// Service provides backup file operations over the envelope crypto.
type Service struct {
	backupDir string
}

// NewService creates a new backup service rooted at backupDir.
func NewService(backupDir string) *Service {
	return &Service{backupDir: backupDir}
}

// CreateOptions controls how a backup is written.
type CreateOptions struct {
	// Legacy selects the version 1.0 envelope format for compatibility
	// with older importers. New backups should leave this false.
	Legacy bool

	// Path overrides the generated output path when non-empty.
	Path string
}

// Create encrypts an account snapshot and writes it to a backup file.
// Returns the path of the written file.
func (s *Service) Create(accounts []vault.Account, passphrase string, opts CreateOptions) (string, error) {
	payload := NewPayload(accounts)

	data, err := payload.Marshal()
	if err != nil {
		return "", err
	}

	start := time.Now()

	var envelope *EncryptedEnvelope
	if opts.Legacy {
		envelope, err = EncryptLegacy(data, passphrase)
	} else {
		envelope, err = Encrypt(data, passphrase)
	}

	metrics.Global.RecordEncrypt(time.Since(start), err)

	if err != nil {
		return "", err
	}

	return s.writeEnvelope(envelope, opts.Path)
}

// Restore reads a backup file, decrypts it, and returns the payload.
func (s *Service) Restore(path, passphrase string) (*Payload, error) {
	envelope, err := s.readEnvelope(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	plaintext, err := Decrypt(envelope, passphrase)
	metrics.Global.RecordDecrypt(time.Since(start), err)

	if err != nil {
		return nil, err
	}

	payload, err := ParsePayload(plaintext)
	if err != nil {
		return nil, err
	}

	return payload, nil
}

// Verify checks that a backup file is structurally valid without
// decrypting it. Returns the parsed envelope on success.
func (s *Service) Verify(path string) (*EncryptedEnvelope, error) {
	return s.readEnvelope(path)
}

// VerifyWithPassphrase verifies a backup file and tests that the
// passphrase decrypts it.
func (s *Service) VerifyWithPassphrase(path, passphrase string) (*EncryptedEnvelope, error) {
	envelope, err := s.readEnvelope(path)
	if err != nil {
		return nil, err
	}

	if !ValidatePassword(envelope, passphrase) {
		return nil, ErrDecryptionFailed
	}

	return envelope, nil
}

// Info describes a backup file found in the backup directory.
type Info struct {
	// Name is the bare filename.
	Name string `json:"name"`

	// Path is the full path to the file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is the file modification time.
	ModTime time.Time `json:"mod_time"`
}

// List returns all backup files in the backup directory, newest first.
func (s *Service) List() ([]Info, error) {
	if err := os.MkdirAll(s.backupDir, DirPermissions); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	backups := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != Extension {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			Name:    entry.Name(),
			Path:    filepath.Join(s.backupDir, entry.Name()),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.After(backups[j].ModTime)
		}
		return backups[i].Name > backups[j].Name
	})

	return backups, nil
}

// BackupPath returns the path a bare backup filename resolves to.
// Paths that already contain a separator are returned unchanged.
func (s *Service) BackupPath(filename string) string {
	if strings.ContainsRune(filename, os.PathSeparator) {
		return filename
	}
	return filepath.Join(s.backupDir, filename)
}

// writeEnvelope serializes an envelope and writes it atomically.
//
//nolint:funcorder // Keeping helper methods together
func (s *Service) writeEnvelope(envelope *EncryptedEnvelope, pathOverride string) (string, error) {
	backupPath := pathOverride
	if backupPath == "" {
		if err := os.MkdirAll(s.backupDir, DirPermissions); err != nil {
			return "", fmt.Errorf("creating backup directory: %w", err)
		}

		timestamp := time.Now().Format(filenameTimeLayout)
		backupPath = filepath.Join(s.backupDir, filenamePrefix+timestamp+Extension)
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing backup: %w", err)
	}

	if err := fileutil.WriteAtomic(backupPath, data, FilePermissions); err != nil {
		return "", fmt.Errorf("writing backup file: %w", err)
	}

	return backupPath, nil
}

// readEnvelope reads and parses an envelope from a file.
//
//nolint:funcorder // Keeping helper methods together
func (s *Service) readEnvelope(path string) (*EncryptedEnvelope, error) {
	// #nosec G304 -- path is from user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, fmt.Errorf("reading backup file: %w", err)
	}

	return ParseEnvelope(data)
}
