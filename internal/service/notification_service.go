package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/leadops/lead-dashboard/internal/config"
	"github.com/leadops/lead-dashboard/internal/events"
	"github.com/leadops/lead-dashboard/internal/repository"
)

// CacheInvalidator drops derived state after data changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// NotificationService reacts to data-updated events.
type NotificationService struct {
	dispatcher events.Dispatcher
	cache      CacheInvalidator
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, cache CacheInvalidator, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		cache:      cache,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLeadsChanged, n.handleLeadsChanged)
	n.dispatcher.Subscribe(events.EventStagesChanged, n.handleStagesChanged)
}

// CollectionChanged turns a file-system change into a data-updated event.
func (n *NotificationService) CollectionChanged(ctx context.Context, key string) {
	eventType := events.EventStagesChanged
	if repository.IsLeadCollection(key) {
		eventType = events.EventLeadsChanged
	} else if key != repository.StagesKey {
		return
	}
	if n.dispatcher == nil {
		return
	}
	if err := n.dispatcher.Publish(ctx, events.NewEvent(eventType, key, events.SourceFile, nil)); err != nil {
		n.logger.Warn("publishing collection change", zap.String("key", key), zap.Error(err))
	}
}

func (n *NotificationService) handleLeadsChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("LeadsChanged",
		zap.String("event_id", event.ID),
		zap.String("collection", event.Collection),
		zap.String("source", string(event.Source)))
	n.invalidate(ctx)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStagesChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("StagesChanged",
		zap.String("event_id", event.ID),
		zap.String("source", string(event.Source)),
		zap.Any("payload", event.Payload))
	n.invalidate(ctx)
	return nil
}

func (n *NotificationService) invalidate(ctx context.Context) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Invalidate(ctx); err != nil {
		n.logger.Warn("snapshot cache invalidation failed", zap.Error(err))
	}
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("collection", event.Collection),
		zap.String("event_type", string(event.Type)))
}
