package services

import (
	"crypto/ecdsa"
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"webpush-backend/utils"
)

// ServerKeysService détient la paire de clés P-256 du serveur d'application
type ServerKeysService struct {
	privateKey   *ecdsa.PrivateKey
	uncompressed []byte
}

// NewServerKeysService charge la paire de clés depuis les fichiers DER,
// ou la génère et l'enregistre si l'un des deux fichiers est absent
func NewServerKeysService(publicKeyPath, privateKeyPath string, log *zap.Logger) (*ServerKeysService, error) {
	var (
		key *ecdsa.PrivateKey
		err error
	)

	if fileExists(publicKeyPath) && fileExists(privateKeyPath) {
		key, err = loadKeyPair(publicKeyPath, privateKeyPath)
		if err != nil {
			return nil, err
		}
		log.Info("🔐 Clés du serveur chargées", zap.String("public", publicKeyPath), zap.String("private", privateKeyPath))
	} else {
		key, err = utils.GenerateVAPIDKeys()
		if err != nil {
			return nil, err
		}
		if err := saveKeyPair(key, publicKeyPath, privateKeyPath); err != nil {
			return nil, err
		}
		log.Info("🔐 Nouvelles clés du serveur générées", zap.String("public", publicKeyPath), zap.String("private", privateKeyPath))
	}

	uncompressed, err := utils.UncompressedPublicKey(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	return &ServerKeysService{privateKey: key, uncompressed: uncompressed}, nil
}

// PrivateKey retourne la clé privée ECDSA
func (s *ServerKeysService) PrivateKey() *ecdsa.PrivateKey {
	return s.privateKey
}

// PublicKeyUncompressed retourne une copie du point public non compressé (65 octets)
func (s *ServerKeysService) PublicKeyUncompressed() []byte {
	out := make([]byte, len(s.uncompressed))
	copy(out, s.uncompressed)
	return out
}

// PublicKeyBase64 retourne la clé publique en base64url sans padding
func (s *ServerKeysService) PublicKeyBase64() string {
	return utils.EncodeBase64URL(s.uncompressed)
}

// PrivateKeyBase64 retourne le scalaire privé en base64url sans padding
func (s *ServerKeysService) PrivateKeyBase64() (string, error) {
	scalar, err := utils.PrivateKeyScalar(s.privateKey)
	if err != nil {
		return "", err
	}
	return utils.EncodeBase64URL(scalar), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func loadKeyPair(publicKeyPath, privateKeyPath string) (*ecdsa.PrivateKey, error) {
	privateDER, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la lecture de la clé privée: %w", err)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(privateDER)
	if err != nil {
		return nil, fmt.Errorf("clé privée PKCS#8 invalide: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("la clé privée n'est pas une clé ECDSA")
	}

	publicDER, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la lecture de la clé publique: %w", err)
	}
	parsedPublic, err := x509.ParsePKIXPublicKey(publicDER)
	if err != nil {
		return nil, fmt.Errorf("clé publique X.509 invalide: %w", err)
	}
	pub, ok := parsedPublic.(*ecdsa.PublicKey)
	if !ok || !pub.Equal(&key.PublicKey) {
		return nil, errors.New("la clé publique ne correspond pas à la clé privée")
	}

	return key, nil
}

func saveKeyPair(key *ecdsa.PrivateKey, publicKeyPath, privateKeyPath string) error {
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("erreur lors de l'encodage de la clé publique: %w", err)
	}
	privateDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("erreur lors de l'encodage de la clé privée: %w", err)
	}

	for _, path := range []string{publicKeyPath, privateKeyPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("erreur lors de la création du dossier %s: %w", dir, err)
			}
		}
	}

	if err := os.WriteFile(publicKeyPath, publicDER, fs.FileMode(0o644)); err != nil {
		return fmt.Errorf("erreur lors de l'écriture de la clé publique: %w", err)
	}
	if err := os.WriteFile(privateKeyPath, privateDER, fs.FileMode(0o600)); err != nil {
		return fmt.Errorf("erreur lors de l'écriture de la clé privée: %w", err)
	}
	return nil
}
