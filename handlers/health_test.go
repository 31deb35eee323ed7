package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"webpush-backend/database"
	"webpush-backend/models"
)

func TestHealthHandlerHealth(t *testing.T) {
	handler := NewHealthHandler("test", "memory", database.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()

	handler.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Health() status = %v, want %v", rr.Code, http.StatusOK)
	}

	ct := rr.Header().Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("Health() Content-Type = %v, want application/json", ct)
	}

	var resp models.SuccessResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Health() body n'est pas une enveloppe JSON: %v", err)
	}
	if !resp.Success || resp.Message == "" {
		t.Errorf("Health() success = %v, message = %q", resp.Success, resp.Message)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Health() data = %#v", resp.Data)
	}
	expectedKeys := []string{"status", "env", "store", "store_status", "uptime", "go_version"}
	for _, key := range expectedKeys {
		if _, ok := data[key]; !ok {
			t.Errorf("Health() data should contain %q, got %v", key, data)
		}
	}
	if data["status"] != "ok" {
		t.Errorf("Health() status = %v, want ok", data["status"])
	}
}

func TestHealthHandlerHealth_storeDown(t *testing.T) {
	handler := NewHealthHandler("test", "redis", failingStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()

	handler.Health(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Health() status = %v, want %v", rr.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(rr.Body.String(), `"store_status":"error"`) {
		t.Errorf("Health() body = %s", rr.Body.String())
	}
}
