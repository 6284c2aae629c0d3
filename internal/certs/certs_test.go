package certs

import (
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GeneratesAndReuses(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	store := NewStore(dir)

	first, err := store.Certificate()
	require.NoError(t, err)
	require.NotEmpty(t, first.Certificate)

	certFile, keyFile := store.Paths()
	assert.FileExists(t, certFile)
	assert.FileExists(t, keyFile)

	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := store.Certificate()
	require.NoError(t, err)
	assert.Equal(t, first.Certificate[0], second.Certificate[0])

	leaf, err := x509.ParseCertificate(second.Certificate[0])
	require.NoError(t, err)
	assert.NoError(t, leaf.VerifyHostname("localhost"))
	assert.NoError(t, leaf.VerifyHostname("127.0.0.1"))
}

func TestStore_RegeneratesExpired(t *testing.T) {
	store := NewStore(t.TempDir())
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }

	first, err := store.Certificate()
	require.NoError(t, err)

	store.now = func() time.Time { return start.Add(Validity + time.Hour) }
	second, err := store.Certificate()
	require.NoError(t, err)
	assert.NotEqual(t, first.Certificate[0], second.Certificate[0])
}

func TestStore_RegeneratesCorrupt(t *testing.T) {
	store := NewStore(t.TempDir())
	certFile, keyFile := store.Paths()
	require.NoError(t, os.WriteFile(certFile, []byte("not a cert"), 0o600))
	require.NoError(t, os.WriteFile(keyFile, []byte("not a key"), 0o600))

	cert, err := store.Certificate()
	require.NoError(t, err)
	assert.NotEmpty(t, cert.Certificate)
}

func TestStore_TLSConfig(t *testing.T) {
	cfg, err := NewStore(t.TempDir()).TLSConfig()
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.NotZero(t, cfg.MinVersion)
}
