// Package webhook mirrors the new-orders payload of each run to an external
// URL. Delivery is best-effort telemetry, never a correctness gate.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cargotrack_backend/internal/orders/domain"
	"cargotrack_backend/platform/config"
	"cargotrack_backend/platform/logger"
)

// ForwardResult reports the outcome of one forward attempt.
type ForwardResult struct {
	Success bool
	Message string
}

// Forwarder POSTs the new-orders payload to the configured sink.
type Forwarder struct {
	url  string
	http *http.Client
	log  *logger.Logger
}

// NewForwarder creates a Forwarder. An empty URL makes every forward a no-op
// success.
func NewForwarder(cfg config.WebhookConfig, log *logger.Logger) *Forwarder {
	return &Forwarder{
		url:  cfg.GetOrderWebhookURL(),
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

type clientPayload struct {
	Code        string                  `json:"code"`
	FullName    string                  `json:"fullName"`
	PhoneNumber string                  `json:"phoneNumber"`
	PickupPoint string                  `json:"pickupPoint"`
	Orders      map[string]orderPayload `json:"orders"`
}

type orderPayload struct {
	TrackingNumber string   `json:"trackingNumber"`
	Status         string   `json:"status"`
	Weight         *float64 `json:"weight"`
	Price          *float64 `json:"price"`
}

// BuildPayload renders the client-code-keyed JSON body shared by the webhook
// sink and the run archive.
func BuildPayload(sets map[string]*domain.ClientOrderSet) ([]byte, error) {
	payload := make(map[string]clientPayload, len(sets))
	for code, set := range sets {
		orders := make(map[string]orderPayload, len(set.Orders))
		for id, order := range set.Orders {
			orders[fmt.Sprint(id)] = orderPayload{
				TrackingNumber: order.TrackingNumber,
				Status:         order.Status,
				Weight:         order.Weight,
				Price:          order.Price,
			}
		}
		payload[code] = clientPayload{
			Code:        set.Client.Code,
			FullName:    set.Client.FullName,
			PhoneNumber: set.Client.PhoneNumber,
			PickupPoint: set.Client.PickupPoint,
			Orders:      orders,
		}
	}
	return json.Marshal(payload)
}

// Forward mirrors the per-client new orders. It never returns an error: any
// network or HTTP failure becomes a descriptive unsuccessful result and the
// caller continues regardless.
func (f *Forwarder) Forward(ctx context.Context, sets map[string]*domain.ClientOrderSet) ForwardResult {
	if f.url == "" {
		return ForwardResult{Success: true, Message: "webhook not configured"}
	}
	if len(sets) == 0 {
		return ForwardResult{Success: true, Message: "nothing to forward"}
	}

	body, err := BuildPayload(sets)
	if err != nil {
		return ForwardResult{Success: false, Message: fmt.Sprintf("marshal webhook payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewBuffer(body))
	if err != nil {
		return ForwardResult{Success: false, Message: fmt.Sprintf("create webhook request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		if f.log != nil {
			f.log.Warn("webhook forward failed", "error", err)
		}
		return ForwardResult{Success: false, Message: fmt.Sprintf("webhook request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if f.log != nil {
			f.log.Warn("webhook forward rejected", "status", resp.StatusCode)
		}
		return ForwardResult{Success: false, Message: fmt.Sprintf("webhook returned status %d", resp.StatusCode)}
	}

	return ForwardResult{Success: true, Message: fmt.Sprintf("forwarded %d clients", len(sets))}
}
