package useragent

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webpush-backend/client"
	"webpush-backend/models"
	"webpush-backend/utils"
)

const authSecretLength = 16

// ErrKeyMismatch : un abonnement existe déjà avec une autre clé de serveur
var ErrKeyMismatch = errors.New("un abonnement existe déjà avec une autre applicationServerKey")

// pushManager implémente client.PushManager
type pushManager registration

func (pm *pushManager) GetSubscription(ctx context.Context) (client.PushSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := (*registration)(pm)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subscription == nil {
		return nil, nil
	}
	return r.subscription, nil
}

// Subscribe crée l'abonnement push. La permission est demandée si nécessaire.
func (pm *pushManager) Subscribe(ctx context.Context, opts client.SubscribeOptions) (client.PushSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := (*registration)(pm)
	b := r.browser

	if b.requestPermission() != client.PermissionGranted {
		return nil, fmt.Errorf("pushManager.subscribe: %w", client.ErrPermissionDenied)
	}
	if !opts.UserVisibleOnly {
		return nil, fmt.Errorf("pushManager.subscribe: userVisibleOnly est requis")
	}
	if _, err := utils.ParseUncompressedPublicKey(opts.ApplicationServerKey); err != nil {
		return nil, fmt.Errorf("pushManager.subscribe: applicationServerKey invalide: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.subscription; existing != nil {
		if !bytes.Equal(existing.serverKey, opts.ApplicationServerKey) {
			return nil, ErrKeyMismatch
		}
		return existing, nil
	}

	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la génération de la clé de l'abonnement: %w", err)
	}
	auth := make([]byte, authSecretLength)
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("erreur lors de la génération du secret: %w", err)
	}

	id := uuid.New().String()
	sub := &Subscription{
		registration: r,
		id:           id,
		endpoint:     b.pushBase + "/push/" + id,
		serverKey:    append([]byte(nil), opts.ApplicationServerKey...),
		priv:         priv,
		auth:         auth,
	}
	r.subscription = sub

	b.log.Info("✓ Abonnement push créé", zap.String("endpoint", sub.endpoint))
	return sub, nil
}

// Subscription est un abonnement push du navigateur virtuel
type Subscription struct {
	registration *registration
	id           string
	endpoint     string
	serverKey    []byte
	priv         *ecdh.PrivateKey
	auth         []byte
}

func (s *Subscription) Endpoint() string {
	return s.endpoint
}

// ToJSON retourne l'abonnement sérialisé, clés en base64url
func (s *Subscription) ToJSON() models.Subscription {
	return models.Subscription{
		Endpoint: s.endpoint,
		Keys: models.SubscriptionKeys{
			P256dh: utils.EncodeBase64URL(s.priv.PublicKey().Bytes()),
			Auth:   utils.EncodeBase64URL(s.auth),
		},
	}
}

// Unsubscribe supprime l'abonnement. Les messages suivants reçoivent 410.
// Retourne false si l'abonnement n'est plus actif.
func (s *Subscription) Unsubscribe(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r := s.registration
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subscription != s {
		return false, nil
	}
	r.subscription = nil
	r.browser.log.Info("✓ Abonnement push supprimé", zap.String("endpoint", s.endpoint))
	return true, nil
}

// lookupSubscription retourne l'abonnement actif d'identifiant id, nil sinon
func (b *Browser) lookupSubscription(id string) *Subscription {
	reg := b.activeRegistration()
	if reg == nil {
		return nil
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.subscription == nil || reg.subscription.id != id {
		return nil
	}
	return reg.subscription
}
