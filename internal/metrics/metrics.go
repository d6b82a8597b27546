// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Generator metrics
	generateTotal  atomic.Int64
	generateErrors atomic.Int64

	// Backup crypto metrics; latency is dominated by key derivation
	encryptTotal       atomic.Int64
	encryptErrors      atomic.Int64
	decryptTotal       atomic.Int64
	decryptErrors      atomic.Int64
	cryptoLatencyNanos atomic.Int64

	// Vault operation metrics
	vaultOpsTotal  atomic.Int64
	vaultOpsErrors atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordGenerate records a password or passphrase generation.
func (m *Metrics) RecordGenerate(err error) {
	m.generateTotal.Add(1)
	if err != nil {
		m.generateErrors.Add(1)
	}
}

// RecordEncrypt records a backup encryption with its duration.
func (m *Metrics) RecordEncrypt(duration time.Duration, err error) {
	m.encryptTotal.Add(1)
	m.cryptoLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.encryptErrors.Add(1)
	}
}

// RecordDecrypt records a backup decryption with its duration.
func (m *Metrics) RecordDecrypt(duration time.Duration, err error) {
	m.decryptTotal.Add(1)
	m.cryptoLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.decryptErrors.Add(1)
	}
}

// RecordVaultOp records a vault storage operation.
func (m *Metrics) RecordVaultOp(err error) {
	m.vaultOpsTotal.Add(1)
	if err != nil {
		m.vaultOpsErrors.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	GenerateTotal      int64
	GenerateErrors     int64
	EncryptTotal       int64
	EncryptErrors      int64
	DecryptTotal       int64
	DecryptErrors      int64
	CryptoLatencyNanos int64
	VaultOpsTotal      int64
	VaultOpsErrors     int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		GenerateTotal:      m.generateTotal.Load(),
		GenerateErrors:     m.generateErrors.Load(),
		EncryptTotal:       m.encryptTotal.Load(),
		EncryptErrors:      m.encryptErrors.Load(),
		DecryptTotal:       m.decryptTotal.Load(),
		DecryptErrors:      m.decryptErrors.Load(),
		CryptoLatencyNanos: m.cryptoLatencyNanos.Load(),
		VaultOpsTotal:      m.vaultOpsTotal.Load(),
		VaultOpsErrors:     m.vaultOpsErrors.Load(),
	}
}

// CryptoOpsTotal returns the total number of encrypt and decrypt operations.
func (m *Metrics) CryptoOpsTotal() int64 {
	return m.encryptTotal.Load() + m.decryptTotal.Load()
}

// CryptoLatencyAvgMs returns the average encrypt/decrypt latency in
// milliseconds. Returns 0 if no operations have occurred.
func (m *Metrics) CryptoLatencyAvgMs() float64 {
	ops := m.CryptoOpsTotal()
	if ops == 0 {
		return 0
	}
	nanos := m.cryptoLatencyNanos.Load()
	return float64(nanos) / float64(ops) / 1e6
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.generateTotal.Store(0)
	m.generateErrors.Store(0)
	m.encryptTotal.Store(0)
	m.encryptErrors.Store(0)
	m.decryptTotal.Store(0)
	m.decryptErrors.Store(0)
	m.cryptoLatencyNanos.Store(0)
	m.vaultOpsTotal.Store(0)
	m.vaultOpsErrors.Store(0)
}
