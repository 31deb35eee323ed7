package constants

// Messages d'erreur HTTP courants
const (
	ErrServerError           = "Erreur serveur"
	ErrInvalidData           = "Données invalides"
	ErrInvalidJSONBody       = "Body JSON invalide"
	ErrEndpointRequired      = "Endpoint requis"
	ErrInvalidSubscription   = "Abonnement invalide: %s"
	ErrSigningKeyUnavailable = "Clé de signature indisponible"
	ErrTooManyRequests       = "Trop de requêtes, réessayez plus tard"
	ErrMethodNotAllowed      = "Méthode non autorisée"
	ErrRouteNotFound         = "Route introuvable"
)

// Réponses du service push
const (
	ErrSubscriptionGone    = "Abonnement inexistant ou expiré"
	ErrUnauthorizedVAPID   = "Autorisation VAPID invalide"
	ErrVAPIDKeyMismatch    = "La clé VAPID ne correspond pas à l'abonnement"
	ErrUnsupportedEncoding = "Content-Encoding non supporté"
	ErrInvalidTTL          = "En-tête TTL invalide"
	ErrPayloadTooLarge     = "Message trop volumineux"
	ErrDecryptionFailed    = "Déchiffrement impossible"
)

// Réponses du contrôleur d'abonnement
const (
	MsgMessageSent = "Message sent"
)

// En-têtes HTTP
const (
	HeaderContentType     = "Content-Type"
	HeaderApplicationJSON = "application/json"
	HeaderOctetStream     = "application/octet-stream"
	HeaderTextPlain       = "text/plain; charset=utf-8"
	HeaderAuthorization   = "Authorization"
	HeaderContentEncoding = "Content-Encoding"
	HeaderTTL             = "TTL"
	HeaderLocation        = "Location"
	ContentEncodingAES128 = "aes128gcm"
)
