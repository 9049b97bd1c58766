package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/directory-admin/pkg/logger"
	"github.com/jwalitptl/directory-admin/pkg/messaging"
)

// RelayConfig configures the notification relay.
type RelayConfig struct {
	Channel       string
	RetryAttempts int
	RetryDelay    time.Duration
	// MailLevels lists the levels that are mailed; defaults to error only.
	MailLevels []string
}

func (c RelayConfig) Validate() error {
	if c.Channel == "" {
		return errors.New("relay channel is required")
	}
	if c.RetryAttempts <= 0 {
		return errors.New("RetryAttempts must be greater than 0")
	}
	if c.RetryDelay < 0 {
		return errors.New("RetryDelay must not be negative")
	}
	return nil
}

// Mailer is the slice of the email service the relay needs.
type Mailer interface {
	SendNotification(ctx context.Context, n messaging.Notification) error
}

// RelayRecorder counts relay outcomes.
type RelayRecorder interface {
	ObserveRelay(status string, d time.Duration)
}

// Relay consumes notifications from the broker, logs each one and mails the
// ones at a mailed level.
type Relay struct {
	broker  messaging.Broker
	mailer  Mailer
	config  RelayConfig
	logger  *logger.Logger
	metrics RelayRecorder
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewRelay(broker messaging.Broker, mailer Mailer, config RelayConfig, log *logger.Logger, metrics RelayRecorder) (*Relay, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(config.MailLevels) == 0 {
		config.MailLevels = []string{messaging.LevelError}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{
		broker:  broker,
		mailer:  mailer,
		config:  config,
		logger:  log,
		metrics: metrics,
		sleep:   sleepCtx,
	}, nil
}

// Start blocks until ctx is done or the subscription ends.
func (r *Relay) Start(ctx context.Context) error {
	msgs, err := r.broker.Subscribe(ctx, r.config.Channel)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", r.config.Channel, err)
	}

	r.logger.ZL.Info().Str("channel", r.config.Channel).Msg("Starting notification relay")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Shutting down notification relay")
			return nil
		case raw, ok := <-msgs:
			if !ok {
				r.logger.Info("Notification channel closed")
				return nil
			}
			r.Handle(ctx, raw)
		}
	}
}

// Handle processes one raw message and returns the outcome status.
func (r *Relay) Handle(ctx context.Context, raw []byte) string {
	start := time.Now()
	status := r.handle(ctx, raw)
	if r.metrics != nil {
		r.metrics.ObserveRelay(status, time.Since(start))
	}
	return status
}

func (r *Relay) handle(ctx context.Context, raw []byte) string {
	var n messaging.Notification
	if err := json.Unmarshal(raw, &n); err != nil || n.Message == "" {
		r.logger.ZL.Warn().Err(err).Int("bytes", len(raw)).Msg("Dropping malformed notification")
		return "malformed"
	}

	ev := r.logger.ZL.Info()
	if n.Level == messaging.LevelError {
		ev = r.logger.ZL.Warn()
	}
	ev.Str("notification_id", n.ID).
		Str("level", n.Level).
		Str("source", n.Source).
		Str("request_id", n.RequestID).
		Msg(n.Message)

	if r.mailer == nil || !r.mailed(n.Level) {
		return "logged"
	}

	err := retry(ctx, r.config.RetryAttempts, r.config.RetryDelay, r.sleep, func() error {
		return r.mailer.SendNotification(ctx, n)
	})
	if err != nil {
		r.logger.Error(err, "Failed to mail notification", "notification_id", n.ID)
		return "failed"
	}
	return "mailed"
}

func (r *Relay) mailed(level string) bool {
	for _, l := range r.config.MailLevels {
		if l == level {
			return true
		}
	}
	return false
}

// retry runs fn up to attempts times, waiting delay between tries.
func retry(ctx context.Context, attempts int, delay time.Duration, sleep func(context.Context, time.Duration) error, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			if serr := sleep(ctx, delay); serr != nil {
				return errors.Join(err, serr)
			}
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
