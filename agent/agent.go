// Package agent affiche les notifications push et route les clics vers la page,
// indépendamment de toute page ouverte. Il s'exécute dans le contexte du service worker
// d'un user agent (voir le paquet useragent).
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"webpush-backend/models"
)

// IconPath est l'icône des notifications, relative à la portée de l'agent
const IconPath = "icons8-message-96.png"

// ClientTypeWindow filtre les clients de type fenêtre
const ClientTypeWindow = "window"

// NotificationOptions décrit le contenu d'une notification affichée
type NotificationOptions struct {
	Body string
	Icon string
}

// Notification est une notification affichée par la plateforme
type Notification interface {
	Title() string
	Close()
}

// WindowClient est une page ouverte visible par l'agent
type WindowClient interface {
	URL() string
	Focus(ctx context.Context) error
}

// MatchOptions filtre l'énumération des clients
type MatchOptions struct {
	IncludeUncontrolled bool
	Type                string
}

// Clients donne accès aux pages de l'origine
type Clients interface {
	Claim(ctx context.Context) error
	MatchAll(ctx context.Context, opts MatchOptions) ([]WindowClient, error)
	OpenWindow(ctx context.Context, url string) (WindowClient, error)
}

// Registration affiche les notifications pour l'enregistrement de l'agent
type Registration interface {
	ShowNotification(ctx context.Context, title string, opts NotificationOptions) error
}

// Agent traite les événements de cycle de vie, de push et de notification
type Agent struct {
	clients      Clients
	registration Registration
	indexURL     string
	rootURL      string
	log          *zap.Logger
}

// New crée un agent pour l'origine donnée
func New(origin *url.URL, clients Clients, registration Registration, log *zap.Logger) *Agent {
	return &Agent{
		clients:      clients,
		registration: registration,
		indexURL:     origin.ResolveReference(&url.URL{Path: "/index.html"}).String(),
		rootURL:      origin.ResolveReference(&url.URL{Path: "/"}).String(),
		log:          log,
	}
}

// IndexURL retourne l'URL absolue de la page de démo
func (a *Agent) IndexURL() string {
	return a.indexURL
}

// OnActivate prend immédiatement le contrôle de toutes les pages ouvertes
func (a *Agent) OnActivate(ctx context.Context) error {
	if err := a.clients.Claim(ctx); err != nil {
		return fmt.Errorf("erreur lors de la prise de contrôle des clients: %w", err)
	}
	return nil
}

// OnPush décode le payload {title, body} et affiche une notification.
// Un payload invalide est renvoyé comme erreur.
func (a *Agent) OnPush(ctx context.Context, data []byte) error {
	a.log.Info("📨 Nouveau message reçu")

	var msg models.PushMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("payload push invalide: %w", err)
	}

	return a.registration.ShowNotification(ctx, msg.Title, NotificationOptions{
		Body: msg.Body,
		Icon: IconPath,
	})
}

// OnNotificationClick met au premier plan la page "/" ou "/index.html" si elle est ouverte,
// sinon ouvre "/index.html". La notification est fermée dans tous les cas.
func (a *Agent) OnNotificationClick(ctx context.Context, n Notification) error {
	defer n.Close()

	windows, err := a.clients.MatchAll(ctx, MatchOptions{IncludeUncontrolled: true, Type: ClientTypeWindow})
	if err != nil {
		return fmt.Errorf("erreur lors de l'énumération des clients: %w", err)
	}

	for _, w := range windows {
		if w.URL() == a.indexURL || w.URL() == a.rootURL {
			return w.Focus(ctx)
		}
	}

	if _, err := a.clients.OpenWindow(ctx, a.indexURL); err != nil {
		return fmt.Errorf("erreur lors de l'ouverture de %s: %w", a.indexURL, err)
	}
	return nil
}

// OnNotificationClose journalise la fermeture d'une notification par l'utilisateur
func (a *Agent) OnNotificationClose(n Notification) {
	a.log.Info("notificationclose", zap.String("title", n.Title()))
}
