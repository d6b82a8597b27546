package wardencrypto

import (
	"testing"
)

func BenchmarkEncrypt(b *testing.B) {
	data := make([]byte, 1024)
	passphrase := "testpassphrase123"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Encrypt(data, passphrase)
	}
}

func BenchmarkDecrypt(b *testing.B) {
	data := make([]byte, 1024)
	passphrase := "testpassphrase123"
	encrypted, _ := Encrypt(data, passphrase)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Decrypt(encrypted, passphrase)
	}
}

func BenchmarkRandomBytes16(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = RandomBytes(16)
	}
}

func BenchmarkRandomBytes32(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = RandomBytes(32)
	}
}

func BenchmarkRandomIndex(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = RandomIndex(94)
	}
}

func BenchmarkSecureBytesCreate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		sb, _ := NewSecureBytes(64)
		sb.Destroy()
	}
}

func BenchmarkSecureBytesFromSlice(b *testing.B) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sb, _ := SecureBytesFromSlice(data)
		sb.Destroy()
	}
}
