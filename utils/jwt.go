package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// VAPIDClaims représente les revendications d'un jeton VAPID (RFC 8292)
type VAPIDClaims struct {
	jwt.RegisteredClaims
}

// ParseVAPIDAuthorization extrait le jeton et la clé d'un en-tête "vapid t=<jwt>, k=<clé>"
func ParseVAPIDAuthorization(header string) (token string, key string, err error) {
	scheme, params, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "vapid") {
		return "", "", fmt.Errorf("schéma d'autorisation invalide")
	}

	for _, part := range strings.Split(params, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(name) {
		case "t":
			token = strings.TrimSpace(value)
		case "k":
			key = strings.TrimSpace(value)
		}
	}

	if token == "" || key == "" {
		return "", "", fmt.Errorf("paramètres t et k requis")
	}
	return token, key, nil
}

// Audience retourne l'origine (schéma://hôte) d'un endpoint, utilisée comme "aud" VAPID
func Audience(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint invalide: %s", endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}

// ValidateVAPIDToken valide un jeton ES256 signé par la clé publique non compressée fournie
func ValidateVAPIDToken(tokenString string, publicKey []byte, audience string) (*VAPIDClaims, error) {
	pub, err := ParseUncompressedPublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &VAPIDClaims{}, func(token *jwt.Token) (interface{}, error) {
		return pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("erreur lors du parsing du token: %w", err)
	}

	claims, ok := token.Claims.(*VAPIDClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token invalide")
	}
	return claims, nil
}
