package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"webpush-backend/database"
	"webpush-backend/metrics"
	"webpush-backend/models"
)

// SendReport résume un envoi à tous les abonnés
type SendReport struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Removed int `json:"removed"`
}

// MessageService chiffre et envoie les messages push à tous les abonnés
type MessageService struct {
	store      database.SubscriptionStore
	keys       *ServerKeysService
	subject    string
	ttl        int
	httpClient *http.Client
	log        *zap.Logger
}

// NewMessageService crée une nouvelle instance de MessageService.
// httpClient nil donne un client avec un délai de 10 secondes.
func NewMessageService(store database.SubscriptionStore, keys *ServerKeysService, subject string, ttl int, httpClient *http.Client, log *zap.Logger) *MessageService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &MessageService{
		store: store,
		keys:  keys,
		// webpush-go ajoute lui-même le préfixe "mailto:"
		subject:    strings.TrimPrefix(subject, "mailto:"),
		ttl:        ttl,
		httpClient: httpClient,
		log:        log,
	}
}

// SendMessage envoie le message à chaque abonné, puis supprime les abonnements
// que le service push déclare inconnus (404) ou expirés (410)
func (s *MessageService) SendMessage(ctx context.Context, msg models.PushMessage) (SendReport, error) {
	subscriptions, err := s.store.FindAll(ctx)
	if err != nil {
		return SendReport{}, err
	}
	metrics.PushSubscriptions.Set(float64(len(subscriptions)))

	report := SendReport{Total: len(subscriptions)}
	if len(subscriptions) == 0 {
		s.log.Warn("⚠️  Aucun abonné, aucun message envoyé")
		return report, nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return report, fmt.Errorf("erreur lors de la création du payload: %w", err)
	}

	privateKey, err := s.keys.PrivateKeyBase64()
	if err != nil {
		return report, err
	}

	var gone []string
	for _, sub := range subscriptions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		status, err := s.deliver(ctx, payload, sub, privateKey)
		if err != nil {
			s.log.Error("❌ Erreur lors de l'envoi de la notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
			metrics.PushMessagesSent.WithLabelValues("error").Inc()
			report.Failed++
			continue
		}

		switch status {
		case http.StatusCreated, http.StatusOK, http.StatusAccepted:
			s.log.Debug("✓ Notification envoyée", zap.String("endpoint", sub.Endpoint))
			metrics.PushMessagesSent.WithLabelValues("sent").Inc()
			report.Sent++
		case http.StatusNotFound, http.StatusGone:
			s.log.Info("🗑️  Abonnement invalide ou expiré", zap.String("endpoint", sub.Endpoint), zap.Int("status", status))
			metrics.PushMessagesSent.WithLabelValues("gone").Inc()
			gone = append(gone, sub.Endpoint)
			report.Failed++
		case http.StatusTooManyRequests:
			s.log.Warn("⚠️  Trop de requêtes vers le service push", zap.String("endpoint", sub.Endpoint))
			metrics.PushMessagesSent.WithLabelValues("rejected").Inc()
			report.Failed++
		case http.StatusBadRequest:
			s.log.Warn("⚠️  Requête push invalide", zap.String("endpoint", sub.Endpoint))
			metrics.PushMessagesSent.WithLabelValues("rejected").Inc()
			report.Failed++
		case http.StatusRequestEntityTooLarge:
			s.log.Warn("⚠️  Payload trop volumineux", zap.String("endpoint", sub.Endpoint))
			metrics.PushMessagesSent.WithLabelValues("rejected").Inc()
			report.Failed++
		default:
			s.log.Warn("⚠️  Réponse inattendue du service push", zap.String("endpoint", sub.Endpoint), zap.Int("status", status))
			metrics.PushMessagesSent.WithLabelValues("rejected").Inc()
			report.Failed++
		}
	}

	for _, endpoint := range gone {
		if err := s.store.Delete(ctx, endpoint); err != nil {
			s.log.Error("❌ Erreur lors de la suppression de l'abonnement", zap.String("endpoint", endpoint), zap.Error(err))
			continue
		}
		metrics.PushSubscriptionsRemoved.WithLabelValues("gone").Inc()
		report.Removed++
	}

	s.log.Info("📊 Notifications envoyées",
		zap.Int("sent", report.Sent),
		zap.Int("total", report.Total),
		zap.Int("failed", report.Failed),
		zap.Int("removed", report.Removed),
	)
	return report, nil
}

func (s *MessageService) deliver(ctx context.Context, payload []byte, sub models.PushSubscription, privateKey string) (int, error) {
	start := time.Now()
	defer func() { metrics.PushDeliveryDuration.Observe(time.Since(start).Seconds()) }()

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.httpClient,
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.keys.PublicKeyBase64(),
		VAPIDPrivateKey: privateKey,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
