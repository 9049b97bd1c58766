package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/directory-admin/pkg/logger"
	"github.com/jwalitptl/directory-admin/pkg/messaging"
)

// DefaultChannel is the pub/sub channel notifications are published on.
const DefaultChannel = "directory:notifications"

// PublishRecorder counts publish outcomes.
type PublishRecorder interface {
	ObserveNotification(level, status string)
}

// Broker publishes notifications for the relay worker. Publish failures are
// logged and counted, never surfaced to the store action.
type Broker struct {
	broker  messaging.Broker
	channel string
	source  string
	timeout time.Duration
	log     *logger.Logger
	rec     PublishRecorder
	now     func() time.Time
}

type BrokerConfig struct {
	Channel string
	// Source names the publishing binary, e.g. "console" or "dashctl".
	Source string
	// Timeout bounds one publish; zero means 2s.
	Timeout time.Duration
}

func NewBroker(b messaging.Broker, cfg BrokerConfig, log *logger.Logger, rec PublishRecorder) *Broker {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Broker{
		broker:  b,
		channel: cfg.Channel,
		source:  cfg.Source,
		timeout: cfg.Timeout,
		log:     log,
		rec:     rec,
		now:     time.Now,
	}
}

func (b *Broker) NotifySuccess(ctx context.Context, msg string) {
	b.publish(ctx, messaging.LevelSuccess, msg)
}

func (b *Broker) NotifyError(ctx context.Context, msg string) {
	b.publish(ctx, messaging.LevelError, msg)
}

func (b *Broker) publish(ctx context.Context, level, msg string) {
	n := messaging.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		Source:    b.source,
		RequestID: RequestID(ctx),
		Time:      b.now().UTC(),
	}

	// The request may already be finishing; the publish gets its own deadline.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	status := "published"
	if err := b.broker.Publish(pctx, b.channel, n); err != nil {
		status = "failed"
		b.log.ZL.Warn().Err(err).Str("notification_id", n.ID).Str("channel", b.channel).Msg("failed to publish notification")
	}
	if b.rec != nil {
		b.rec.ObserveNotification(level, status)
	}
}
