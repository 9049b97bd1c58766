// Package notify delivers store outcome messages: to the log, to the
// notification channel and to the toasts of the request that caused them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/directory-admin/internal/store"
	"github.com/jwalitptl/directory-admin/pkg/logger"
	"github.com/jwalitptl/directory-admin/pkg/messaging"
)

// Toast is one user-visible notification.
type Toast struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type ctxKey int

const (
	collectorKey ctxKey = iota
	requestIDKey
)

// WithRequestID tags ctx so published notifications can be traced back.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Collector gathers the toasts raised while serving one request.
type Collector struct {
	mu     sync.Mutex
	toasts []Toast
}

// WithCollector attaches a fresh collector to ctx.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey, c), c
}

func (c *Collector) add(level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toasts = append(c.toasts, Toast{Level: level, Message: msg, Time: time.Now()})
}

// Toasts returns the collected toasts in order.
func (c *Collector) Toasts() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Toasts returns the toasts collected on ctx, or none.
func Toasts(ctx context.Context) []Toast {
	c, ok := ctx.Value(collectorKey).(*Collector)
	if !ok {
		return []Toast{}
	}
	return c.Toasts()
}

// Collecting adds every notification to the collector carried by ctx.
// Contexts without one are ignored.
type Collecting struct{}

func (Collecting) NotifySuccess(ctx context.Context, msg string) {
	if c, ok := ctx.Value(collectorKey).(*Collector); ok {
		c.add(messaging.LevelSuccess, msg)
	}
}

func (Collecting) NotifyError(ctx context.Context, msg string) {
	if c, ok := ctx.Value(collectorKey).(*Collector); ok {
		c.add(messaging.LevelError, msg)
	}
}

// Log writes notifications to the structured log.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	if log == nil {
		log = logger.Nop()
	}
	return &Log{log: log}
}

func (l *Log) NotifySuccess(ctx context.Context, msg string) {
	l.log.ZL.Info().Str("request_id", RequestID(ctx)).Str("kind", messaging.LevelSuccess).Msg(msg)
}

func (l *Log) NotifyError(ctx context.Context, msg string) {
	l.log.ZL.Warn().Str("request_id", RequestID(ctx)).Str("kind", messaging.LevelError).Msg(msg)
}

// Multi fans out to several notifiers in order.
type Multi []store.Notifier

func (m Multi) NotifySuccess(ctx context.Context, msg string) {
	for _, n := range m {
		if n != nil {
			n.NotifySuccess(ctx, msg)
		}
	}
}

func (m Multi) NotifyError(ctx context.Context, msg string) {
	for _, n := range m {
		if n != nil {
			n.NotifyError(ctx, msg)
		}
	}
}
