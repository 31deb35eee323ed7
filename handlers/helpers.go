package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"webpush-backend/constants"
	"webpush-backend/utils"
)

// maxBodyBytes borne la taille des corps JSON acceptés
const maxBodyBytes = 64 << 10

// readBody lit le corps de la requête. Retourne false et écrit l'erreur si la lecture échoue.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return nil, false
	}
	return body, true
}

// decodeJSON décode le corps JSON dans dst. Retourne false et écrit l'erreur si le JSON est invalide.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, ok := readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return false
	}
	return true
}
