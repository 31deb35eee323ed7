package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"webpush-backend/models"
)

// Backend est l'API du serveur d'application utilisée par la page
type Backend interface {
	PublicSigningKey(ctx context.Context) ([]byte, error)
	IsSubscribed(ctx context.Context, endpoint string) (bool, error)
	Subscribe(ctx context.Context, sub models.Subscription) error
	Unsubscribe(ctx context.Context, endpoint string) error
	Send(ctx context.Context, msg models.PushMessage) error
}

// API est le client HTTP du backend /api/v1
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI crée un client pour le backend à baseURL
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PublicSigningKey retourne la clé publique brute du serveur
func (c *API) PublicSigningKey(ctx context.Context) ([]byte, error) {
	key, err := c.doRequest(ctx, http.MethodGet, "/api/v1/publicSigningKey", nil)
	if err != nil {
		return nil, fmt.Errorf("client.PublicSigningKey: %w", err)
	}
	return key, nil
}

// IsSubscribed demande au backend s'il connaît l'endpoint
func (c *API) IsSubscribed(ctx context.Context, endpoint string) (bool, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/v1/isSubscribed", models.SubscriptionEndpoint{Endpoint: endpoint})
	if err != nil {
		return false, fmt.Errorf("client.IsSubscribed: %w", err)
	}
	var subscribed bool
	if err := json.Unmarshal(body, &subscribed); err != nil {
		return false, fmt.Errorf("client.IsSubscribed: decode response: %w", err)
	}
	return subscribed, nil
}

// Subscribe envoie l'abonnement au backend
func (c *API) Subscribe(ctx context.Context, sub models.Subscription) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/subscribe", sub); err != nil {
		return fmt.Errorf("client.Subscribe: %w", err)
	}
	return nil
}

// Unsubscribe supprime l'abonnement côté backend
func (c *API) Unsubscribe(ctx context.Context, endpoint string) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/unsubscribe", models.SubscriptionEndpoint{Endpoint: endpoint}); err != nil {
		return fmt.Errorf("client.Unsubscribe: %w", err)
	}
	return nil
}

// Send demande au backend d'envoyer le message à tous les abonnés
func (c *API) Send(ctx context.Context, msg models.PushMessage) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/v1/send", msg); err != nil {
		return fmt.Errorf("client.Send: %w", err)
	}
	return nil
}

func (c *API) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", err)}
	}

	if resp.StatusCode >= 400 {
		var apiErr models.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}
