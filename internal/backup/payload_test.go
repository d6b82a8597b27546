package backup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywarden/keywarden/internal/backup"
	"github.com/keywarden/keywarden/internal/vault"
)

// testAccounts builds a small account snapshot for payload and service tests.
func testAccounts(t *testing.T) []vault.Account {
	t.Helper()

	github, err := vault.NewAccount("github", "octocat", "s3cret-pass!", vault.CategoryWork) // gitleaks:allow
	require.NoError(t, err)

	bank, err := vault.NewAccount("bank", "jdoe", "an0ther-pass!", vault.CategoryFinance) // gitleaks:allow
	require.NoError(t, err)

	return []vault.Account{*github, *bank}
}

func TestNewPayload(t *testing.T) {
	t.Parallel()

	accounts := testAccounts(t)

	before := time.Now().UTC()
	payload := backup.NewPayload(accounts)
	after := time.Now().UTC()

	assert.Equal(t, backup.PayloadVersion, payload.Version)
	assert.Equal(t, len(accounts), payload.Count)
	assert.Equal(t, accounts, payload.Accounts)
	assert.True(t, payload.CreatedAt.Equal(payload.CreatedAt.UTC()), "CreatedAt should be UTC")
	assert.True(t, !payload.CreatedAt.Before(before) && !payload.CreatedAt.After(after),
		"CreatedAt should be between before and after")
}

func TestNewPayload_Empty(t *testing.T) {
	t.Parallel()

	payload := backup.NewPayload(nil)
	assert.Equal(t, 0, payload.Count)
	assert.Empty(t, payload.Accounts)
	assert.NoError(t, payload.Validate())
}

func TestPayload_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid payload passes", func(t *testing.T) {
		t.Parallel()
		payload := backup.NewPayload(testAccounts(t))
		assert.NoError(t, payload.Validate())
	})

	t.Run("count mismatch fails", func(t *testing.T) {
		t.Parallel()
		payload := backup.NewPayload(testAccounts(t))
		payload.Count = 99
		err := payload.Validate()
		require.ErrorIs(t, err, backup.ErrMalformedPayload)
		assert.Contains(t, err.Error(), "count is 99")
	})

	t.Run("missing version fails", func(t *testing.T) {
		t.Parallel()
		payload := backup.NewPayload(testAccounts(t))
		payload.Version = ""
		err := payload.Validate()
		require.ErrorIs(t, err, backup.ErrMalformedPayload)
		assert.Contains(t, err.Error(), "version")
	})
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	t.Run("valid payload round trips", func(t *testing.T) {
		t.Parallel()

		payload := backup.NewPayload(testAccounts(t))
		data, err := payload.Marshal()
		require.NoError(t, err)

		parsed, err := backup.ParsePayload(data)
		require.NoError(t, err)
		assert.Equal(t, payload.Count, parsed.Count)
		require.Len(t, parsed.Accounts, 2)
		assert.Equal(t, "github", parsed.Accounts[0].Name)
		assert.Equal(t, vault.CategoryFinance, parsed.Accounts[1].Category)
	})

	t.Run("invalid JSON fails", func(t *testing.T) {
		t.Parallel()

		_, err := backup.ParsePayload([]byte("{truncated"))
		assert.ErrorIs(t, err, backup.ErrMalformedPayload)
	})

	t.Run("tampered count fails", func(t *testing.T) {
		t.Parallel()

		_, err := backup.ParsePayload([]byte(`{"version":"1.0","createdAt":"2024-01-01T00:00:00Z","count":5,"accounts":[]}`))
		assert.ErrorIs(t, err, backup.ErrMalformedPayload)
	})
}
