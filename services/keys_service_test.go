package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webpush-backend/utils"
)

func TestNewServerKeysService_generateThenLoad(t *testing.T) {
	dir := t.TempDir()
	publicPath := filepath.Join(dir, "keys", "server-public.der")
	privatePath := filepath.Join(dir, "keys", "server-private.der")

	generated, err := NewServerKeysService(publicPath, privatePath, zap.NewNop())
	require.NoError(t, err)
	assert.FileExists(t, publicPath)
	assert.FileExists(t, privatePath)

	pub := generated.PublicKeyUncompressed()
	assert.Len(t, pub, utils.UncompressedKeyLength)
	assert.Equal(t, byte(0x04), pub[0])

	loaded, err := NewServerKeysService(publicPath, privatePath, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, pub, loaded.PublicKeyUncompressed())
	assert.Equal(t, generated.PublicKeyBase64(), loaded.PublicKeyBase64())

	generatedPriv, err := generated.PrivateKeyBase64()
	require.NoError(t, err)
	loadedPriv, err := loaded.PrivateKeyBase64()
	require.NoError(t, err)
	assert.Equal(t, generatedPriv, loadedPriv)

	scalar, err := utils.DecodeBase64URL(loadedPriv)
	require.NoError(t, err)
	assert.Len(t, scalar, 32)
}

func TestNewServerKeysService_publicKeyIsCopied(t *testing.T) {
	dir := t.TempDir()
	keys, err := NewServerKeysService(filepath.Join(dir, "pub.der"), filepath.Join(dir, "priv.der"), zap.NewNop())
	require.NoError(t, err)

	pub := keys.PublicKeyUncompressed()
	pub[0] = 0xff
	assert.Equal(t, byte(0x04), keys.PublicKeyUncompressed()[0])
}

func TestNewServerKeysService_corruptedPrivateKey(t *testing.T) {
	dir := t.TempDir()
	publicPath := filepath.Join(dir, "pub.der")
	privatePath := filepath.Join(dir, "priv.der")
	require.NoError(t, os.WriteFile(publicPath, []byte("pas une clé"), 0o644))
	require.NoError(t, os.WriteFile(privatePath, []byte("pas une clé"), 0o600))

	_, err := NewServerKeysService(publicPath, privatePath, zap.NewNop())
	assert.Error(t, err)
}

func TestNewServerKeysService_mismatchedPair(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	_, err := NewServerKeysService(filepath.Join(dirA, "pub.der"), filepath.Join(dirA, "priv.der"), zap.NewNop())
	require.NoError(t, err)
	_, err = NewServerKeysService(filepath.Join(dirB, "pub.der"), filepath.Join(dirB, "priv.der"), zap.NewNop())
	require.NoError(t, err)

	_, err = NewServerKeysService(filepath.Join(dirA, "pub.der"), filepath.Join(dirB, "priv.der"), zap.NewNop())
	assert.EqualError(t, err, "la clé publique ne correspond pas à la clé privée")
}
