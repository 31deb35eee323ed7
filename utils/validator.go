package utils

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError représente une erreur de validation
type ValidationError struct {
	Field   string
	Message string
}

// Error implémente l'interface error
func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// subscriptionSchema décrit le JSON produit par PushSubscription.toJSON()
const subscriptionSchema = `{
  "type": "object",
  "required": ["endpoint", "keys"],
  "properties": {
    "endpoint": {"type": "string", "minLength": 1, "pattern": "^https?://"},
    "expirationTime": {"type": ["integer", "null"]},
    "keys": {
      "type": "object",
      "required": ["p256dh", "auth"],
      "properties": {
        "p256dh": {"type": "string", "minLength": 1},
        "auth": {"type": "string", "minLength": 1}
      }
    }
  }
}`

var subscriptionLoader = gojsonschema.NewStringLoader(subscriptionSchema)

// ValidateSubscription valide le corps brut d'une requête d'abonnement
func ValidateSubscription(body []byte) error {
	result, err := gojsonschema.Validate(subscriptionLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return ValidationError{Field: "subscription", Message: err.Error()}
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}
	return ValidationError{Field: "subscription", Message: strings.Join(messages, "; ")}
}

// ValidateRequired valide qu'un champ n'est pas vide
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: fmt.Sprintf("le champ %s est requis", field)}
	}
	return nil
}
