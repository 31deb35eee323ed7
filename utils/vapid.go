package utils

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// UncompressedKeyLength est la taille d'un point P-256 non compressé (0x04 || X || Y)
const UncompressedKeyLength = 65

// GenerateVAPIDKeys génère une paire de clés ECDSA P-256
func GenerateVAPIDKeys() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la génération de la clé: %w", err)
	}
	return key, nil
}

// UncompressedPublicKey encode la clé publique au format non compressé (65 octets)
func UncompressedPublicKey(pub *ecdsa.PublicKey) ([]byte, error) {
	key, err := pub.ECDH()
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la conversion de la clé publique: %w", err)
	}
	return key.Bytes(), nil
}

// PrivateKeyScalar retourne le scalaire privé sur 32 octets
func PrivateKeyScalar(priv *ecdsa.PrivateKey) ([]byte, error) {
	key, err := priv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la conversion de la clé privée: %w", err)
	}
	return key.Bytes(), nil
}

// ParseUncompressedPublicKey décode un point P-256 non compressé en clé ECDSA
func ParseUncompressedPublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	if len(raw) != UncompressedKeyLength || raw[0] != 0x04 {
		return nil, fmt.Errorf("clé publique non compressée invalide (%d octets)", len(raw))
	}
	// Valide que le point est sur la courbe
	if _, err := ecdh.P256().NewPublicKey(raw); err != nil {
		return nil, fmt.Errorf("point hors de la courbe P-256: %w", err)
	}
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(raw[1:33]),
		Y:     new(big.Int).SetBytes(raw[33:]),
	}, nil
}

// EncodeBase64URL encode en base64url sans padding
func EncodeBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64URL décode une chaîne base64url avec ou sans padding
func DecodeBase64URL(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		// Certains navigateurs envoient du base64 standard
		decoded, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("erreur lors du décodage base64: %w", err)
		}
	}
	return decoded, nil
}
