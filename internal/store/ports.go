package store

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/directory-admin/internal/apiclient"
)

// ErrDeclined is returned by Delete when the confirmation step said no.
// Nothing was sent and no state changed.
var ErrDeclined = errors.New("store: deletion declined")

// Entity is anything the API identifies by id.
type Entity interface {
	EntityID() string
}

// API is the slice of the HTTP client a store needs.
type API interface {
	Do(ctx context.Context, method, path string, body any) (*apiclient.Response, error)
}

// Notifier receives the outcome of every store action.
type Notifier interface {
	NotifySuccess(ctx context.Context, msg string)
	NotifyError(ctx context.Context, msg string)
}

// Confirmer asks the operator before a deletion.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every deletion.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// NeverConfirm declines every deletion.
var NeverConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })

// Recorder observes action outcomes, typically for metrics.
type Recorder interface {
	ObserveAction(entity, action, status string, d time.Duration)
}

type nopNotifier struct{}

func (nopNotifier) NotifySuccess(context.Context, string) {}
func (nopNotifier) NotifyError(context.Context, string)   {}

type nopRecorder struct{}

func (nopRecorder) ObserveAction(string, string, string, time.Duration) {}
