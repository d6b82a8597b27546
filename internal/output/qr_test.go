package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rsc.io/qr"
)

func TestDefaultQRConfig(t *testing.T) {
	cfg := DefaultQRConfig()

	assert.Equal(t, qr.M, cfg.Level, "default level should be M (medium)")
	assert.Equal(t, 1, cfg.QuietZone, "default quiet zone should be 1")
	assert.True(t, cfg.HalfBlocks, "half blocks should be enabled by default")
}

func TestCanRenderQR_Buffer(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, CanRenderQR(&buf), "bytes.Buffer should not be a terminal")
}

func TestCanRenderQR_Nil(t *testing.T) {
	assert.False(t, CanRenderQR(nil), "nil writer should not be a terminal")
}

func TestRenderQR_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultQRConfig()

	err := RenderQR(&buf, "Tr0ub4dor&3-horse-battery", cfg)

	require.NoError(t, err, "RenderQR should not error for non-terminal")
	assert.Empty(t, buf.String(), "no output should be produced for non-terminal")
}

func TestRenderQR_ValidPayloads(t *testing.T) {
	// This test verifies that RenderQR doesn't panic or error with valid input.
	// We can't test actual output without a real terminal.
	var buf bytes.Buffer
	cfg := DefaultQRConfig()

	payloads := []string{
		"kV9$mQ2x!pLw8@Rn",                  // generated password
		"correct-horse-battery-staple-echo", // passphrase
	}

	for _, payload := range payloads {
		err := RenderQR(&buf, payload, cfg)
		require.NoError(t, err, "RenderQR should not error for payload: %s", payload)
	}
}
