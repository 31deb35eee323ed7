package useragent

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// En-tête aes128gcm : salt (16) | rs (4) | idlen (1) | keyid (idlen)
const (
	saltLength   = 16
	headerLength = saltLength + 4 + 1
	tagLength    = 16
	minRecord    = tagLength + 2
)

var (
	webPushInfo = []byte("WebPush: info\x00")
	cekInfo     = []byte("Content-Encoding: aes128gcm\x00")
	nonceInfo   = []byte("Content-Encoding: nonce\x00")
)

var errInvalidPadding = errors.New("délimiteur de padding invalide")

func hkdfExpand(secret, salt, info []byte, length int) ([]byte, error) {
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, err
	}
	return out, nil
}

// decryptAES128GCM déchiffre un message push chiffré pour la clé privée et le secret
// d'authentification de l'abonnement.
func decryptAES128GCM(body []byte, priv *ecdh.PrivateKey, authSecret []byte) ([]byte, error) {
	if len(body) < headerLength {
		return nil, fmt.Errorf("en-tête aes128gcm tronqué (%d octets)", len(body))
	}
	salt := body[:saltLength]
	rs := int(binary.BigEndian.Uint32(body[saltLength : saltLength+4]))
	idLen := int(body[saltLength+4])
	if rs < minRecord {
		return nil, fmt.Errorf("taille d'enregistrement invalide: %d", rs)
	}
	if len(body) < headerLength+idLen {
		return nil, fmt.Errorf("keyid tronqué")
	}
	keyID := body[headerLength : headerLength+idLen]
	payload := body[headerLength+idLen:]
	if len(payload) == 0 {
		return nil, fmt.Errorf("aucun enregistrement chiffré")
	}

	senderKey, err := ecdh.P256().NewPublicKey(keyID)
	if err != nil {
		return nil, fmt.Errorf("clé de l'expéditeur invalide: %w", err)
	}
	shared, err := priv.ECDH(senderKey)
	if err != nil {
		return nil, fmt.Errorf("erreur ECDH: %w", err)
	}

	info := make([]byte, 0, len(webPushInfo)+2*len(keyID))
	info = append(info, webPushInfo...)
	info = append(info, priv.PublicKey().Bytes()...)
	info = append(info, keyID...)

	ikm, err := hkdfExpand(shared, authSecret, info, 32)
	if err != nil {
		return nil, err
	}
	cek, err := hkdfExpand(ikm, salt, cekInfo, 16)
	if err != nil {
		return nil, err
	}
	baseNonce, err := hkdfExpand(ikm, salt, nonceInfo, 12)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	var plaintext []byte
	for seq := 0; len(payload) > 0; seq++ {
		n := min(rs, len(payload))
		record := payload[:n]
		payload = payload[n:]
		last := len(payload) == 0

		nonce := append([]byte(nil), baseNonce...)
		var counter [8]byte
		binary.BigEndian.PutUint64(counter[:], uint64(seq))
		for i := range counter {
			nonce[4+i] ^= counter[i]
		}

		opened, err := gcm.Open(nil, nonce, record, nil)
		if err != nil {
			return nil, fmt.Errorf("enregistrement %d: %w", seq, err)
		}
		data, err := unpad(opened, last)
		if err != nil {
			return nil, fmt.Errorf("enregistrement %d: %w", seq, err)
		}
		plaintext = append(plaintext, data...)
	}
	return plaintext, nil
}

// unpad retire les zéros finaux et le délimiteur (0x02 pour le dernier enregistrement, 0x01 sinon)
func unpad(record []byte, last bool) ([]byte, error) {
	i := len(record) - 1
	for i >= 0 && record[i] == 0 {
		i--
	}
	if i < 0 {
		return nil, errInvalidPadding
	}
	want := byte(0x01)
	if last {
		want = 0x02
	}
	if record[i] != want {
		return nil, errInvalidPadding
	}
	return record[:i], nil
}
