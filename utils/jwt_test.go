package utils

import (
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signVAPID(t *testing.T, key *ecdsa.PrivateKey, aud string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"aud": aud,
		"exp": exp.Unix(),
		"sub": "mailto:example@example.com",
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestParseVAPIDAuthorization(t *testing.T) {
	token, key, err := ParseVAPIDAuthorization("vapid t=abc.def.ghi, k=BPUBKEY")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
	assert.Equal(t, "BPUBKEY", key)

	for _, header := range []string{"", "Bearer abc", "vapid t=abc", "vapid k=abc"} {
		_, _, err := ParseVAPIDAuthorization(header)
		assert.Error(t, err, header)
	}
}

func TestAudience(t *testing.T) {
	aud, err := Audience("http://127.0.0.1:8091/push/123")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8091", aud)

	_, err = Audience("pas-une-url")
	assert.Error(t, err)
}

func TestValidateVAPIDToken(t *testing.T) {
	key, err := GenerateVAPIDKeys()
	require.NoError(t, err)
	pub, err := UncompressedPublicKey(&key.PublicKey)
	require.NoError(t, err)

	const aud = "https://push.example.com"
	token := signVAPID(t, key, aud, time.Now().Add(time.Hour))

	claims, err := ValidateVAPIDToken(token, pub, aud)
	require.NoError(t, err)
	assert.Equal(t, "mailto:example@example.com", claims.Subject)
}

func TestValidateVAPIDTokenMauvaiseAudience(t *testing.T) {
	key, _ := GenerateVAPIDKeys()
	pub, _ := UncompressedPublicKey(&key.PublicKey)
	token := signVAPID(t, key, "https://a.example.com", time.Now().Add(time.Hour))

	_, err := ValidateVAPIDToken(token, pub, "https://b.example.com")
	assert.Error(t, err)
}

func TestValidateVAPIDTokenExpire(t *testing.T) {
	key, _ := GenerateVAPIDKeys()
	pub, _ := UncompressedPublicKey(&key.PublicKey)
	token := signVAPID(t, key, "https://a.example.com", time.Now().Add(-time.Hour))

	_, err := ValidateVAPIDToken(token, pub, "https://a.example.com")
	assert.Error(t, err)
}

func TestValidateVAPIDTokenMauvaiseCle(t *testing.T) {
	key, _ := GenerateVAPIDKeys()
	other, _ := GenerateVAPIDKeys()
	otherPub, _ := UncompressedPublicKey(&other.PublicKey)
	token := signVAPID(t, key, "https://a.example.com", time.Now().Add(time.Hour))

	_, err := ValidateVAPIDToken(token, otherPub, "https://a.example.com")
	assert.Error(t, err)
}
