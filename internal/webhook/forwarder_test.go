package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cargotrack_backend/internal/orders/domain"
	"cargotrack_backend/platform/logger"
)

type webhookConfig struct{ url string }

func (c webhookConfig) GetOrderWebhookURL() string { return c.url }

func sampleSets() map[string]*domain.ClientOrderSet {
	weight := 2.5
	set := domain.NewClientOrderSet(domain.ClientRecord{
		Code:        "A77",
		FullName:    "Client A",
		PhoneNumber: "996700100518",
		PickupPoint: "Bishkek",
	})
	set.Add(domain.Order{TrackingNumber: "TRK-1", Status: "arrived", Weight: &weight})
	return map[string]*domain.ClientOrderSet{"A77": set}
}

func TestForward_NoURLIsNoopSuccess(t *testing.T) {
	f := NewForwarder(webhookConfig{}, logger.New("development"))

	result := f.Forward(context.Background(), sampleSets())

	if !result.Success {
		t.Fatalf("expected no-op success, got %+v", result)
	}
}

func TestForward_PostsClientKeyedPayload(t *testing.T) {
	var received map[string]clientPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewForwarder(webhookConfig{url: server.URL}, logger.New("development"))
	result := f.Forward(context.Background(), sampleSets())

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	client, ok := received["A77"]
	if !ok {
		t.Fatalf("payload not keyed by client code: %v", received)
	}
	if len(client.Orders) != 1 {
		t.Fatalf("expected 1 order in payload, got %d", len(client.Orders))
	}
	if order := client.Orders["1"]; order.TrackingNumber != "TRK-1" || order.Weight == nil || *order.Weight != 2.5 {
		t.Fatalf("unexpected order payload: %+v", order)
	}
}

func TestForward_Non2xxIsFailureNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewForwarder(webhookConfig{url: server.URL}, logger.New("development"))
	result := f.Forward(context.Background(), sampleSets())

	if result.Success {
		t.Fatal("expected failure result")
	}
	if result.Message == "" {
		t.Fatal("expected descriptive message")
	}
}

func TestForward_ConnectionErrorIsFailureNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	f := NewForwarder(webhookConfig{url: server.URL}, logger.New("development"))
	result := f.Forward(context.Background(), sampleSets())

	if result.Success {
		t.Fatal("expected failure result")
	}
}
