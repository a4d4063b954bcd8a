// Package whatsapp provides the HTTP client for the gowa-style WhatsApp
// gateway. Destinations are canonical phone-derived ids: digits only, country
// prefix included (see platform/phone).
package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cargotrack_backend/platform/config"
	"cargotrack_backend/platform/logger"
)

// Client sends text messages through the gateway.
type Client struct {
	baseURL  string
	apiKey   string
	deviceID string
	http     *http.Client
	log      *logger.Logger
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type sendResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a gateway client, or nil when no gateway URL is
// configured. A nil client fails every send so delivery accounting stays
// honest.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppURL() == "" {
		return nil
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetWhatsAppURL(), "/"),
		apiKey:   cfg.GetWhatsAppKey(),
		deviceID: cfg.GetWhatsAppDeviceID(),
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

// SendMessage delivers one text message to the destination id.
func (c *Client) SendMessage(ctx context.Context, destination, message string) error {
	if c == nil {
		return fmt.Errorf("whatsapp gateway not configured")
	}

	body, err := json.Marshal(sendRequest{Phone: destination, Message: message})
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/send/message", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", formatAuthHeader(c.apiKey))
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var decoded sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil && decoded.Code != "" && !strings.EqualFold(decoded.Code, "success") {
		return fmt.Errorf("whatsapp gateway rejected send: %s %s", decoded.Code, decoded.Message)
	}

	c.log.Debug("whatsapp message sent", "destination", destination)
	return nil
}

func formatAuthHeader(apiKey string) string {
	if strings.HasPrefix(strings.ToLower(apiKey), "basic ") {
		return apiKey
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(apiKey))
	return "Basic " + encoded
}
