// Package orders is the bounded context for the sheet-to-WhatsApp order
// pipeline: fetching spreadsheet rows, deduplicating against the tracking
// ledger and notifying clients.
package orders

import (
	"cargotrack_backend/internal/events"
	apphttp "cargotrack_backend/internal/http"
	"cargotrack_backend/internal/notifier"
	"cargotrack_backend/internal/orders/handler"
	"cargotrack_backend/internal/orders/repository"
	"cargotrack_backend/internal/orders/service"
	"cargotrack_backend/internal/runlock"
	"cargotrack_backend/internal/scheduler"
	"cargotrack_backend/internal/sheets"
	"cargotrack_backend/internal/webhook"
	"cargotrack_backend/internal/whatsapp"
	"cargotrack_backend/platform/config"
	"cargotrack_backend/platform/logger"
	"cargotrack_backend/platform/phone"
	"cargotrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config combines the config interfaces the module needs.
type Config interface {
	config.SheetsConfig
	config.WhatsAppConfig
	config.NotifierConfig
	config.PhoneConfig
	config.WebhookConfig
}

// Module is the orders bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the orders module with all its
// dependencies. guard, bus and sched may be nil when Redis is not configured.
func NewModule(pool *pgxpool.Pool, cfg Config, guard *runlock.Guard, bus events.Bus, sched scheduler.SheetScheduler, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)

	gateway := whatsapp.NewClient(cfg, log)
	normalizer := phone.NewNormalizer(cfg.GetPhoneCountryPrefix(), cfg.GetPhoneRegion())
	batcher := notifier.New(cfg, gateway, normalizer, log)
	forwarder := webhook.NewForwarder(cfg, log)
	source := sheets.New(cfg.GetSheetsAPIKey(), log)

	svc := service.New(cfg, source, repo, batcher, forwarder, guard, bus, log)
	h := handler.New(svc, sched, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "orders"
}

// Service returns the service layer for external use (worker process).
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	sheets := ctx.Protected.Group("/sheets")
	sheets.POST("/process", ctx.ProcessRateLimiter.RateLimit(), m.handler.Process)
	sheets.POST("/enqueue", ctx.ProcessRateLimiter.RateLimit(), m.handler.Enqueue)
	sheets.GET("", m.handler.ListSheets)
	sheets.GET("/processed", m.handler.ListProcessed)

	ctx.Protected.GET("/runs", m.handler.ListRuns)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
