package client

import (
	"context"

	"webpush-backend/models"
)

// PermissionState est l'état de la permission de notification
type PermissionState string

const (
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// Chemin et portée d'enregistrement de l'agent de notifications
const (
	ServiceWorkerScript = "/sw.js"
	ServiceWorkerScope  = "/"
)

// SubscribeOptions sont les options d'abonnement au service push
type SubscribeOptions struct {
	UserVisibleOnly      bool
	ApplicationServerKey []byte
}

// PushSubscription est un abonnement émis par la plateforme
type PushSubscription interface {
	Endpoint() string
	ToJSON() models.Subscription
	// Unsubscribe retourne false si la plateforme refuse le désabonnement
	Unsubscribe(ctx context.Context) (bool, error)
}

// PushManager gère l'abonnement push d'un enregistrement
type PushManager interface {
	// GetSubscription retourne nil, nil s'il n'y a pas d'abonnement
	GetSubscription(ctx context.Context) (PushSubscription, error)
	Subscribe(ctx context.Context, opts SubscribeOptions) (PushSubscription, error)
}

// ServiceWorkerRegistration est l'enregistrement actif de l'agent
type ServiceWorkerRegistration interface {
	PushManager() PushManager
}

// ServiceWorkerContainer enregistre l'agent et attend son activation
type ServiceWorkerContainer interface {
	Register(ctx context.Context, scriptURL, scope string) (ServiceWorkerRegistration, error)
	// Ready bloque jusqu'à ce qu'un enregistrement soit actif ou que ctx expire
	Ready(ctx context.Context) (ServiceWorkerRegistration, error)
}

// Platform regroupe les API du navigateur utilisées par le contrôleur de page
type Platform interface {
	ServiceWorker() ServiceWorkerContainer
	NotificationPermission() PermissionState
}
