// Package client est le contrôleur de page : il réconcilie l'état des contrôles
// avec l'abonnement de la plateforme et relaie abonnement, désabonnement et envoi au backend.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"webpush-backend/models"
	"webpush-backend/utils"
)

// MessageTitle est le titre des messages envoyés depuis la page
const MessageTitle = "Push from webpage"

// compensationTimeout borne l'annulation de l'abonnement plateforme après un échec du backend
const compensationTimeout = 5 * time.Second

// Action est une action déclenchée par l'utilisateur
type Action int

const (
	ActionStart Action = iota
	ActionSubscribe
	ActionUnsubscribe
	ActionSend
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "Initialization"
	case ActionSubscribe:
		return "Subscription"
	case ActionUnsubscribe:
		return "Unsubscription"
	case ActionSend:
		return "Send message"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Controller exécute les actions de la page une par une
type Controller struct {
	platform Platform
	backend  Backend
	log      *zap.Logger

	// actionMu sérialise les actions, stateMu protège state
	actionMu sync.Mutex
	stateMu  sync.RWMutex
	state    AppState
	onChange func(AppState)
}

// NewController crée un contrôleur dans l'état initial
func NewController(platform Platform, backend Backend, log *zap.Logger) *Controller {
	return &Controller{
		platform: platform,
		backend:  backend,
		log:      log,
		state:    InitialState(),
	}
}

// OnChange enregistre une fonction appelée après chaque changement d'état
func (c *Controller) OnChange(fn func(AppState)) {
	c.stateMu.Lock()
	c.onChange = fn
	c.stateMu.Unlock()
}

// State retourne une copie de l'état courant
func (c *Controller) State() AppState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	s := c.state
	s.SigningKey = append([]byte(nil), s.SigningKey...)
	return s
}

func (c *Controller) dispatch(event Event) {
	c.stateMu.Lock()
	c.state = Reduce(c.state, event)
	snapshot := c.state
	fn := c.onChange
	c.stateMu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// Start initialise la page puis vérifie l'abonnement existant
func (c *Controller) Start(ctx context.Context) (bool, error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	if err := c.init(ctx); err != nil {
		return false, err
	}
	return c.checkSubscription(ctx)
}

// Init récupère la clé du serveur et enregistre l'agent en parallèle, puis attend les deux
func (c *Controller) Init(ctx context.Context) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	return c.init(ctx)
}

func (c *Controller) init(ctx context.Context) error {
	var key []byte
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		k, err := c.backend.PublicSigningKey(gctx)
		if err != nil {
			return err
		}
		if _, err := utils.ParseUncompressedPublicKey(k); err != nil {
			return fmt.Errorf("clé du serveur invalide: %w", err)
		}
		key = k
		c.log.Info("🔑 Clé publique du serveur récupérée")
		return nil
	})

	g.Go(func() error {
		sw := c.platform.ServiceWorker()
		if _, err := sw.Register(gctx, ServiceWorkerScript, ServiceWorkerScope); err != nil {
			return fmt.Errorf("enregistrement de %s: %w", ServiceWorkerScript, err)
		}
		if _, err := sw.Ready(gctx); err != nil {
			return err
		}
		c.log.Info("✓ Agent de notifications installé et prêt")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	c.dispatch(KeyFetched{Key: key})
	return nil
}

// CheckSubscription retourne true si la plateforme a un abonnement et que le backend le confirme
func (c *Controller) CheckSubscription(ctx context.Context) (bool, error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	return c.checkSubscription(ctx)
}

func (c *Controller) checkSubscription(ctx context.Context) (bool, error) {
	sub, err := c.currentSubscription(ctx)
	if err != nil {
		return false, err
	}
	c.log.Info("Vérification de l'abonnement...")
	if sub == nil {
		return false, nil
	}

	subscribed, err := c.backend.IsSubscribed(ctx, sub.Endpoint())
	if err != nil {
		return false, err
	}
	if subscribed {
		c.dispatch(SubscriptionConfirmed{})
	}
	return subscribed, nil
}

// Subscribe crée l'abonnement sur la plateforme puis l'enregistre côté backend.
// Si le backend échoue, l'abonnement de la plateforme est annulé et une *SyncError est retournée.
// Si l'annulation échoue aussi, l'interface reste abonnée comme la plateforme.
func (c *Controller) Subscribe(ctx context.Context) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	key := c.State().SigningKey
	if len(key) == 0 {
		return ErrSigningKeyMissing
	}

	registration, err := c.platform.ServiceWorker().Ready(ctx)
	if err != nil {
		return err
	}
	sub, err := registration.PushManager().Subscribe(ctx, SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: key,
	})
	if err != nil {
		return fmt.Errorf("abonnement au service push: %w", err)
	}
	c.log.Info("✓ Abonné au service push", zap.String("endpoint", sub.Endpoint()))

	if err := c.backend.Subscribe(ctx, sub.ToJSON()); err != nil {
		// Le contexte de l'action peut être celui qui vient d'expirer
		undoCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
		defer cancel()
		ok, uerr := sub.Unsubscribe(undoCtx)
		compensated := ok && uerr == nil
		if compensated {
			c.dispatch(SubscriptionRemoved{})
		} else {
			c.log.Warn("⚠️ Abonnement plateforme conservé après l'échec du backend",
				zap.String("endpoint", sub.Endpoint()), zap.Error(uerr))
			c.dispatch(SubscriptionUnsynced{})
		}
		return &SyncError{Op: "subscribe", Endpoint: sub.Endpoint(), Err: err, Compensated: compensated}
	}

	c.log.Info("📤 Abonnement envoyé au serveur")
	c.dispatch(SubscriptionConfirmed{})
	return nil
}

// Unsubscribe désabonne la plateforme puis le backend. Sans abonnement, ne fait rien.
// Si la plateforme refuse, rien n'est envoyé et l'état reste inchangé.
func (c *Controller) Unsubscribe(ctx context.Context) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	sub, err := c.currentSubscription(ctx)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	ok, err := sub.Unsubscribe(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsubscribeRejected, err)
	}
	if !ok {
		return ErrUnsubscribeRejected
	}
	c.log.Info("✓ Désabonnement réussi")

	// La plateforme n'a plus d'abonnement : l'état suit la plateforme même si le backend échoue
	if err := c.backend.Unsubscribe(ctx, sub.Endpoint()); err != nil {
		c.dispatch(SubscriptionRemoved{})
		return &SyncError{Op: "unsubscribe", Endpoint: sub.Endpoint(), Err: err}
	}

	c.log.Info("📤 Désabonnement envoyé au serveur")
	c.dispatch(SubscriptionRemoved{})
	return nil
}

// SendMessage envoie {title: "Push from webpage", body} au backend
func (c *Controller) SendMessage(ctx context.Context, body string) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	msg := models.PushMessage{Title: MessageTitle, Body: body}
	if err := c.backend.Send(ctx, msg); err != nil {
		return err
	}
	c.log.Info("📨 Message envoyé", zap.String("body", body))
	return nil
}

// Handle exécute une action et journalise son échec. Un refus de permission
// est journalisé en avertissement, les autres erreurs en erreur.
func (c *Controller) Handle(ctx context.Context, action Action, input string) error {
	var err error
	switch action {
	case ActionStart:
		_, err = c.Start(ctx)
	case ActionSubscribe:
		err = c.Subscribe(ctx)
	case ActionUnsubscribe:
		err = c.Unsubscribe(ctx)
	case ActionSend:
		err = c.SendMessage(ctx, input)
	default:
		err = fmt.Errorf("action inconnue: %v", action)
	}
	if err == nil {
		return nil
	}

	if action == ActionSubscribe && (errors.Is(err, ErrPermissionDenied) || c.platform.NotificationPermission() == PermissionDenied) {
		c.log.Warn("Permission for notifications was denied")
	} else {
		c.log.Error(action.String()+" error", zap.Error(err))
	}
	return err
}

func (c *Controller) currentSubscription(ctx context.Context) (PushSubscription, error) {
	registration, err := c.platform.ServiceWorker().Ready(ctx)
	if err != nil {
		return nil, err
	}
	return registration.PushManager().GetSubscription(ctx)
}
