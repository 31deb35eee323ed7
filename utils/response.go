package utils

import (
	"encoding/json"
	"net/http"
	"webpush-backend/constants"
	"webpush-backend/models"
)

// RespondJSON envoie une réponse JSON
func RespondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	// S'assurer que les en-têtes ne sont pas déjà écrits
	if w.Header().Get(constants.HeaderContentType) == "" {
		w.Header().Set(constants.HeaderContentType, constants.HeaderApplicationJSON)
	}

	// Écrire le code de statut
	if statusCode > 0 {
		w.WriteHeader(statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	// Encoder et envoyer les données (false est une valeur valide pour isSubscribed)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			w.Write([]byte(`{"error":"Internal Server Error","message":"Erreur lors de l'encodage JSON"}`))
		}
	}
}

// RespondError envoie une réponse d'erreur JSON
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// RespondSuccess envoie une réponse de succès JSON
func RespondSuccess(w http.ResponseWriter, message string, data interface{}) {
	RespondJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondBytes envoie un corps binaire brut
func RespondBytes(w http.ResponseWriter, statusCode int, contentType string, body []byte) {
	w.Header().Set(constants.HeaderContentType, contentType)
	w.WriteHeader(statusCode)
	w.Write(body)
}

// RespondText envoie une réponse texte
func RespondText(w http.ResponseWriter, statusCode int, text string) {
	RespondBytes(w, statusCode, constants.HeaderTextPlain, []byte(text))
}
