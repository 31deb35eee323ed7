package models

import (
	"time"
)

// SubscriptionKeys contient les clés de chiffrement fournies par le navigateur
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh"`
	Auth   string `json:"auth" bson:"auth"`
}

// Subscription représente un abonnement push tel que sérialisé par PushSubscription.toJSON()
type Subscription struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *int64           `json:"expirationTime"` // Millisecondes depuis l'epoch, null si pas d'expiration
	Keys           SubscriptionKeys `json:"keys"`
}

// SubscriptionEndpoint identifie un abonnement par son endpoint
type SubscriptionEndpoint struct {
	Endpoint string `json:"endpoint"`
}

// PushSubscription représente un abonnement enregistré côté serveur
type PushSubscription struct {
	ID             string           `json:"id" bson:"_id"`
	Endpoint       string           `json:"endpoint" bson:"endpoint"`
	ExpirationTime *int64           `json:"expiration_time,omitempty" bson:"expiration_time"`
	Keys           SubscriptionKeys `json:"keys" bson:"keys"`
	Created        time.Time        `json:"created_at" bson:"created_at"`
}

// NewPushSubscription construit l'enregistrement serveur à partir de l'abonnement reçu
func NewPushSubscription(id string, sub Subscription, now time.Time) *PushSubscription {
	return &PushSubscription{
		ID:             id,
		Endpoint:       sub.Endpoint,
		ExpirationTime: sub.ExpirationTime,
		Keys:           sub.Keys,
		Created:        now,
	}
}

// Expired indique si l'abonnement a dépassé sa date d'expiration
func (s *PushSubscription) Expired(now time.Time) bool {
	return s.ExpirationTime != nil && *s.ExpirationTime < now.UnixMilli()
}

// PushMessage représente le contenu d'une notification (titre et corps)
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
