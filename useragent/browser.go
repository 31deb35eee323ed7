// Package useragent est un navigateur virtuel : il implémente la plateforme push
// utilisée par le contrôleur de page (service worker, push manager, notifications)
// et expose le service push qui reçoit les messages chiffrés du backend.
package useragent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"webpush-backend/agent"
	"webpush-backend/client"
)

// ErrNotRegistered : aucune registration active pour l'agent
var ErrNotRegistered = errors.New("aucun service worker enregistré")

// Options configure le navigateur virtuel
type Options struct {
	// Origin est l'origine de la page, par exemple http://localhost:8090
	Origin string
	// PushBaseURL est l'URL publique du service push, par exemple http://127.0.0.1:8091
	PushBaseURL string
	// Permission initiale. Vide ou "default" : accordée à la première demande.
	Permission client.PermissionState
	HTTPClient *http.Client
	Log        *zap.Logger
}

// Browser implémente client.Platform
type Browser struct {
	origin     *url.URL
	pushBase   string
	httpClient *http.Client
	log        *zap.Logger

	mu             sync.Mutex
	permission     client.PermissionState
	registration   *registration
	ready          chan struct{}
	windows        []*Window
	focused        *Window
	notifications  []*Notification
	onNotification func(*Notification)
	nextID         int
}

// New crée un navigateur pour l'origine donnée
func New(opts Options) (*Browser, error) {
	origin, err := url.Parse(opts.Origin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("origine invalide: %q", opts.Origin)
	}
	pushBase, err := url.Parse(opts.PushBaseURL)
	if err != nil || pushBase.Scheme == "" || pushBase.Host == "" {
		return nil, fmt.Errorf("URL du service push invalide: %q", opts.PushBaseURL)
	}

	permission := opts.Permission
	if permission == "" {
		permission = client.PermissionDefault
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Browser{
		origin:     &url.URL{Scheme: origin.Scheme, Host: origin.Host},
		pushBase:   strings.TrimRight(pushBase.String(), "/"),
		httpClient: httpClient,
		log:        log,
		permission: permission,
		ready:      make(chan struct{}),
	}, nil
}

// Origin retourne l'origine de la page
func (b *Browser) Origin() *url.URL {
	u := *b.origin
	return &u
}

// ServiceWorker retourne le conteneur d'enregistrement de l'agent
func (b *Browser) ServiceWorker() client.ServiceWorkerContainer {
	return (*container)(b)
}

// NotificationPermission retourne l'état de la permission de notification
func (b *Browser) NotificationPermission() client.PermissionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.permission
}

// SetPermission simule un choix de l'utilisateur dans les réglages du navigateur
func (b *Browser) SetPermission(p client.PermissionState) {
	b.mu.Lock()
	b.permission = p
	b.mu.Unlock()
}

// requestPermission accorde la permission si l'utilisateur n'a pas encore choisi
func (b *Browser) requestPermission() client.PermissionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.permission == client.PermissionDefault {
		b.permission = client.PermissionGranted
		b.log.Info("🔔 Permission de notification accordée")
	}
	return b.permission
}

func (b *Browser) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return b.origin.ResolveReference(u), nil
}

func (b *Browser) sameOrigin(u *url.URL) bool {
	return u.Scheme == b.origin.Scheme && u.Host == b.origin.Host
}

func (b *Browser) activeRegistration() *registration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registration
}

// container implémente client.ServiceWorkerContainer
type container Browser

// Register télécharge le script de l'agent, vérifie la portée puis active l'agent.
// Un second appel retourne la registration existante.
func (c *container) Register(ctx context.Context, scriptURL, scope string) (client.ServiceWorkerRegistration, error) {
	b := (*Browser)(c)

	if reg := b.activeRegistration(); reg != nil {
		return reg, nil
	}

	script, err := b.resolve(scriptURL)
	if err != nil || !b.sameOrigin(script) {
		return nil, fmt.Errorf("script %q hors de l'origine %s", scriptURL, b.origin)
	}
	scopeURL, err := b.resolve(scope)
	if err != nil || !b.sameOrigin(scopeURL) {
		return nil, fmt.Errorf("portée %q hors de l'origine %s", scope, b.origin)
	}

	allowed, err := b.fetchScript(ctx, script.String())
	if err != nil {
		return nil, err
	}
	maxScope := path.Dir(script.Path) + "/"
	if allowed != "" {
		maxScope = allowed
	}
	if !strings.HasPrefix(scopeURL.Path, strings.TrimSuffix(maxScope, "/")+"/") && scopeURL.Path != maxScope {
		return nil, fmt.Errorf("portée %s non autorisée pour %s", scopeURL.Path, script.Path)
	}

	reg := &registration{browser: b, scope: scopeURL}
	reg.agent = agent.New(b.origin, (*clients)(b), reg, b.log)

	b.mu.Lock()
	if b.registration != nil {
		existing := b.registration
		b.mu.Unlock()
		return existing, nil
	}
	b.registration = reg
	b.mu.Unlock()

	if err := reg.agent.OnActivate(ctx); err != nil {
		b.mu.Lock()
		b.registration = nil
		b.mu.Unlock()
		return nil, err
	}
	close(b.ready)

	b.log.Info("✓ Service worker activé", zap.String("script", script.String()), zap.String("scope", scopeURL.String()))
	return reg, nil
}

// Ready bloque jusqu'à ce qu'une registration soit active ou que ctx expire
func (c *container) Ready(ctx context.Context) (client.ServiceWorkerRegistration, error) {
	b := (*Browser)(c)
	select {
	case <-b.ready:
		return b.activeRegistration(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetchScript télécharge le script et retourne l'en-tête Service-Worker-Allowed
func (b *Browser) fetchScript(ctx context.Context, scriptURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scriptURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("erreur lors du téléchargement de %s: %w", scriptURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("téléchargement de %s: HTTP %d", scriptURL, resp.StatusCode)
	}
	return resp.Header.Get("Service-Worker-Allowed"), nil
}

// registration implémente client.ServiceWorkerRegistration et agent.Registration
type registration struct {
	browser *Browser
	scope   *url.URL
	agent   *agent.Agent

	mu           sync.Mutex
	subscription *Subscription
}

func (r *registration) PushManager() client.PushManager {
	return (*pushManager)(r)
}

// ShowNotification ajoute une notification au centre de notifications
func (r *registration) ShowNotification(ctx context.Context, title string, opts agent.NotificationOptions) error {
	b := r.browser
	if b.NotificationPermission() != client.PermissionGranted {
		return fmt.Errorf("showNotification: %w", client.ErrPermissionDenied)
	}

	icon := opts.Icon
	if icon != "" {
		if ref, err := url.Parse(icon); err == nil {
			icon = r.scope.ResolveReference(ref).String()
		}
	}

	b.mu.Lock()
	b.nextID++
	n := &Notification{
		browser: b,
		id:      b.nextID,
		title:   title,
		body:    opts.Body,
		icon:    icon,
	}
	b.notifications = append(b.notifications, n)
	fn := b.onNotification
	b.mu.Unlock()

	b.log.Info("🔔 Notification affichée", zap.String("title", title))
	if fn != nil {
		fn(n)
	}
	return nil
}
