// Package email delivers operator alert emails for pipeline runs.
package email

import (
	"context"
	"fmt"

	"cargotrack_backend/platform/config"
)

// RunAlert carries the facts of a problematic pipeline run.
type RunAlert struct {
	RunID       string
	SheetName   string
	Success     bool
	Message     string
	FailedCount int
	SentCount   int
}

// Sender delivers operator alerts.
type Sender interface {
	SendRunAlert(ctx context.Context, toEmail string, alert RunAlert) error
}

// NoopSender is used when email is not configured.
type NoopSender struct{}

func (NoopSender) SendRunAlert(ctx context.Context, toEmail string, alert RunAlert) error {
	return nil
}

// NewSender returns the configured sender, or a no-op when email is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	if cfg.GetSMTPHost() == "" {
		return nil, fmt.Errorf("email enabled but SMTP_HOST is empty")
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
