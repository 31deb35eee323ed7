package useragent

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"webpush-backend/constants"
	"webpush-backend/utils"
)

// maxPushBody est la taille maximale d'un message chiffré accepté par le service push
const maxPushBody = 4096

// PushHandler retourne le service push du navigateur : POST /push/{id}
func (b *Browser) PushHandler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/push/{id}", b.handlePush).Methods(http.MethodPost)
	return r
}

func (b *Browser) handlePush(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sub := b.lookupSubscription(id)
	if sub == nil {
		b.log.Debug("push pour un abonnement inconnu", zap.String("id", id))
		utils.RespondError(w, http.StatusGone, constants.ErrSubscriptionGone)
		return
	}

	token, k, err := utils.ParseVAPIDAuthorization(r.Header.Get(constants.HeaderAuthorization))
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrUnauthorizedVAPID)
		return
	}
	key, err := utils.DecodeBase64URL(k)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrUnauthorizedVAPID)
		return
	}
	if !bytes.Equal(key, sub.serverKey) {
		b.log.Warn("⚠️  Clé VAPID différente de celle de l'abonnement", zap.String("endpoint", sub.endpoint))
		utils.RespondError(w, http.StatusForbidden, constants.ErrVAPIDKeyMismatch)
		return
	}
	audience, err := utils.Audience(sub.endpoint)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	if _, err := utils.ValidateVAPIDToken(token, key, audience); err != nil {
		b.log.Warn("⚠️  Jeton VAPID refusé", zap.Error(err))
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrUnauthorizedVAPID)
		return
	}

	if !strings.EqualFold(r.Header.Get(constants.HeaderContentEncoding), constants.ContentEncodingAES128) {
		utils.RespondError(w, http.StatusUnsupportedMediaType, constants.ErrUnsupportedEncoding)
		return
	}
	if ttl, err := strconv.Atoi(r.Header.Get(constants.HeaderTTL)); err != nil || ttl < 0 {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidTTL)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPushBody+1))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return
	}
	if len(body) > maxPushBody {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, constants.ErrPayloadTooLarge)
		return
	}

	plaintext, err := decryptAES128GCM(body, sub.priv, sub.auth)
	if err != nil {
		b.log.Warn("⚠️  Déchiffrement du message impossible", zap.Error(err))
		utils.RespondError(w, http.StatusBadRequest, constants.ErrDecryptionFailed)
		return
	}

	// Le service push accepte le message même si l'agent ne l'affiche pas
	if err := sub.registration.agent.OnPush(r.Context(), plaintext); err != nil {
		b.log.Error("❌ Erreur dans le gestionnaire push", zap.Error(err))
	}

	w.Header().Set(constants.HeaderLocation, sub.endpoint+"/messages/"+uuid.New().String())
	w.WriteHeader(http.StatusCreated)
}
