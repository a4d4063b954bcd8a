package email

import (
	"context"

	"cargotrack_backend/internal/events"
	"cargotrack_backend/platform/logger"
)

// Reporter mails operators when a run fails or deliveries are lost. It
// subscribes to pipeline run events; delivery problems only log.
type Reporter struct {
	sender     Sender
	recipients []string
	log        *logger.Logger
}

// NewReporter creates the alert reporter. With no recipients it stays
// subscribed but sends nothing.
func NewReporter(sender Sender, recipients []string, log *logger.Logger) *Reporter {
	return &Reporter{sender: sender, recipients: recipients, log: log}
}

// RegisterHandlers subscribes the reporter to pipeline run events.
func (r *Reporter) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.SheetProcessed{}.EventName(), r)
}

// Handle routes events to the alert sender.
func (r *Reporter) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.SheetProcessed)
	if !ok {
		return nil
	}

	if e.Success && e.FailedCount == 0 {
		return nil
	}

	alert := RunAlert{
		RunID:       e.RunID.String(),
		SheetName:   e.SheetName,
		Success:     e.Success,
		Message:     e.Message,
		FailedCount: e.FailedCount,
		SentCount:   e.SentCount,
	}

	for _, to := range r.recipients {
		if err := r.sender.SendRunAlert(ctx, to, alert); err != nil {
			r.log.Warn("run alert email failed", "to", to, "sheet", e.SheetName, "error", err)
		}
	}
	return nil
}
