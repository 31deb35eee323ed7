package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webpush-backend/constants"
	"webpush-backend/database"
	"webpush-backend/models"
	"webpush-backend/services"
	"webpush-backend/utils"
)

// SubscriptionHandler gère les requêtes d'abonnement et d'envoi push
type SubscriptionHandler struct {
	store    database.SubscriptionStore
	keys     *services.ServerKeysService
	messages *services.MessageService
	log      *zap.Logger
}

// NewSubscriptionHandler crée une nouvelle instance de SubscriptionHandler
func NewSubscriptionHandler(store database.SubscriptionStore, keys *services.ServerKeysService, messages *services.MessageService, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		store:    store,
		keys:     keys,
		messages: messages,
		log:      log,
	}
}

// PublicSigningKey retourne la clé publique du serveur (65 octets bruts)
func (h *SubscriptionHandler) PublicSigningKey(w http.ResponseWriter, r *http.Request) {
	key := h.keys.PublicKeyUncompressed()
	if len(key) != utils.UncompressedKeyLength {
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrSigningKeyUnavailable)
		return
	}
	utils.RespondBytes(w, http.StatusOK, constants.HeaderOctetStream, key)
}

// Subscribe enregistre un abonnement push
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	if err := utils.ValidateSubscription(body); err != nil {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf(constants.ErrInvalidSubscription, err))
		return
	}

	var sub models.Subscription
	if err := json.Unmarshal(body, &sub); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return
	}

	subscription := models.NewPushSubscription(uuid.NewString(), sub, time.Now())
	if err := h.store.Save(r.Context(), subscription); err != nil {
		h.log.Error("Erreur lors de l'enregistrement de l'abonnement", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	h.log.Info("✓ Abonnement enregistré", zap.String("endpoint", subscription.Endpoint), zap.String("id", subscription.ID))
	w.WriteHeader(http.StatusCreated)
}

// Unsubscribe supprime l'abonnement correspondant à l'endpoint
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req models.SubscriptionEndpoint
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := utils.ValidateRequired("endpoint", req.Endpoint); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrEndpointRequired)
		return
	}

	if err := h.store.Delete(r.Context(), req.Endpoint); err != nil {
		h.log.Error("Erreur lors de la suppression de l'abonnement", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	h.log.Info("✓ Abonnement supprimé", zap.String("endpoint", req.Endpoint))
	w.WriteHeader(http.StatusOK)
}

// IsSubscribed indique (booléen JSON) si l'endpoint est enregistré
func (h *SubscriptionHandler) IsSubscribed(w http.ResponseWriter, r *http.Request) {
	var req models.SubscriptionEndpoint
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := utils.ValidateRequired("endpoint", req.Endpoint); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrEndpointRequired)
		return
	}

	exists, err := h.store.Exists(r.Context(), req.Endpoint)
	if err != nil {
		h.log.Error("Erreur lors de la vérification de l'abonnement", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusOK, exists)
}

// Send envoie le message à tous les abonnés
func (h *SubscriptionHandler) Send(w http.ResponseWriter, r *http.Request) {
	var msg models.PushMessage
	if !decodeJSON(w, r, &msg) {
		return
	}

	if _, err := h.messages.SendMessage(r.Context(), msg); err != nil {
		h.log.Error("Erreur lors de l'envoi du message", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondText(w, http.StatusOK, constants.MsgMessageSent)
}
