// Package store holds the generic entity store: one list, one form draft, a
// loading flag and the last error, with CRUD actions that talk to the API.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/directory-admin/internal/apiclient"
	"github.com/jwalitptl/directory-admin/internal/normalize"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
	"github.com/jwalitptl/directory-admin/pkg/logger"
)

// Config describes one entity to the generic store.
type Config[T Entity] struct {
	// Name is the singular lower-case name, also the response key of a single
	// record ("disease").
	Name string
	// Plural names the collection ("diseases").
	Plural string
	// Label is used in messages ("Disease").
	Label string

	ListPath   string
	CreatePath string
	// ItemPath is the base of /{id} routes.
	ItemPath string
	// UpdateMethod defaults to PATCH.
	UpdateMethod string

	// Shape overrides the envelope keys; defaults to Plural and total<Plural>.
	Shape Shape
	// ItemKey overrides the single record response key.
	ItemKey string

	Required []string
	// FieldLabels names fields in validation messages ("parentDisease" is
	// "Parent Disease"); unlabeled fields use their key.
	FieldLabels map[string]string
	// Rules are validator tags checked against normalized values.
	Rules   map[string]string
	Choices map[string][]string

	ListFields    []string
	NumericFields []string
	BoolFields    []string
	FileFields    []string
	Delimiter     string
	FieldMap      normalize.FieldMap

	// ErrorField is the failure body field read first: "error" or "message".
	ErrorField string

	// Empty returns the blank draft.
	Empty func() Draft
	// Compare orders items after every change; nil keeps server order.
	Compare func(a, b T) int

	NoList   bool
	NoUpdate bool
	NoDelete bool
}

func (c *Config[T]) label() string {
	if c.Label != "" {
		return c.Label
	}
	if c.Name == "" {
		return "Record"
	}
	return strings.ToUpper(c.Name[:1]) + c.Name[1:]
}

func (c *Config[T]) shape() Shape {
	s := c.Shape
	if s.Key == "" {
		s.Key = c.Plural
	}
	if s.TotalKey == "" && c.Plural != "" {
		s.TotalKey = "total" + strings.ToUpper(c.Plural[:1]) + c.Plural[1:]
	}
	return s
}

func (c *Config[T]) itemKey() string {
	if c.ItemKey != "" {
		return c.ItemKey
	}
	return c.Name
}

func (c *Config[T]) emptyDraft() Draft {
	if c.Empty == nil {
		return Draft{}
	}
	return c.Empty()
}

func (c *Config[T]) itemPath(id string) string {
	return strings.TrimRight(c.ItemPath, "/") + "/" + url.PathEscape(id)
}

// State is a snapshot of a store.
type State[T any] struct {
	Items   []T
	Draft   Draft
	Loading bool
	Error   string
	Page    Page
}

// Store is the single source of truth for one entity. Network calls run
// outside the lock; the last response to arrive wins.
type Store[T Entity] struct {
	cfg      Config[T]
	api      API
	notifier Notifier
	recorder Recorder
	log      *logger.Logger

	mu       sync.Mutex
	items    []T
	draft    Draft
	inflight int
	err      string
	page     Page
}

type Option func(*options)

type options struct {
	notifier Notifier
	recorder Recorder
	log      *logger.Logger
}

func WithNotifier(n Notifier) Option { return func(o *options) { o.notifier = n } }

func WithRecorder(r Recorder) Option { return func(o *options) { o.recorder = r } }

func WithLogger(l *logger.Logger) Option { return func(o *options) { o.log = l } }

// New builds a store for cfg on top of api.
func New[T Entity](cfg Config[T], api API, opts ...Option) *Store[T] {
	o := options{notifier: nopNotifier{}, recorder: nopRecorder{}, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = nopNotifier{}
	}
	if o.recorder == nil {
		o.recorder = nopRecorder{}
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	if cfg.UpdateMethod == "" {
		cfg.UpdateMethod = http.MethodPatch
	}

	return &Store[T]{
		cfg:      cfg,
		api:      api,
		notifier: o.notifier,
		recorder: o.recorder,
		log:      o.log,
		items:    []T{},
		draft:    cfg.emptyDraft(),
	}
}

// Config returns the store's entity configuration.
func (s *Store[T]) Config() Config[T] { return s.cfg }

// ItemPath is the API path of one record.
func (s *Store[T]) ItemPath(id string) string { return s.cfg.itemPath(id) }

// State returns a copy of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State[T]{
		Items:   slices.Clone(s.items),
		Draft:   s.draft.Clone(),
		Loading: s.inflight > 0,
		Error:   s.err,
		Page:    s.page,
	}
}

func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Find returns the loaded item with id.
func (s *Store[T]) Find(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func (s *Store[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetField updates one draft field.
func (s *Store[T]) SetField(field string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Set(field, value)
}

// SetNested updates one field of a structured draft sub-object.
func (s *Store[T]) SetNested(group, field string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetNested(group, field, value)
}

// SetFile attaches a file handle to the draft.
func (s *Store[T]) SetFile(field string, f *normalize.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetFile(field, f)
}

// ReplaceDraft replaces the draft, e.g. with an existing record being
// edited. Fields the blank draft has and d lacks keep their blank value.
func (s *Store[T]) ReplaceDraft(d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.cfg.emptyDraft()
	for k, v := range d.Clone() {
		base[k] = v
	}
	s.draft = base
}

// ResetDraft restores the blank draft.
func (s *Store[T]) ResetDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = s.cfg.emptyDraft()
}

// FetchAll replaces the list with the server collection. On failure the list
// is left as it was and Err is set.
func (s *Store[T]) FetchAll(ctx context.Context) error {
	const action = "fetch"
	start := time.Now()
	if s.cfg.NoList {
		return s.reject(ctx, action, start, apperrors.NewUnsupported(fmt.Sprintf("%s cannot be listed", s.cfg.Plural)))
	}

	s.begin()
	resp, err := s.api.Do(ctx, http.MethodGet, s.cfg.ListPath, nil)
	if err != nil {
		return s.fail(ctx, action, start, s.apiError(err, fmt.Sprintf("Failed to fetch %s.", s.cfg.Plural)))
	}

	col, err := DecodeCollection[T](resp.Body, s.cfg.shape())
	if err != nil {
		return s.fail(ctx, action, start, s.shapeError(err))
	}
	if s.cfg.Compare != nil {
		slices.SortStableFunc(col.Items, s.cfg.Compare)
	}

	s.succeed(ctx, action, start, "", fmt.Sprintf("Loaded %d %s.", len(col.Items), s.cfg.Plural), func() {
		s.items = col.Items
		s.page = col.Page
		if !s.page.Known {
			s.page.Total = len(col.Items)
		}
	})
	return nil
}

// FetchByID loads one record without touching the list.
func (s *Store[T]) FetchByID(ctx context.Context, id string) (T, error) {
	const action = "fetch_one"
	var zero T
	start := time.Now()

	s.begin()
	resp, err := s.api.Do(ctx, http.MethodGet, s.cfg.itemPath(id), nil)
	if err != nil {
		return zero, s.fail(ctx, action, start, s.apiError(err, fmt.Sprintf("Failed to fetch %s.", strings.ToLower(s.cfg.label()))))
	}

	single, err := DecodeSingle[T](resp.Body, s.cfg.itemKey())
	if err == nil && !single.Found {
		err = &ShapeError{Want: s.cfg.itemKey() + " record", Got: "no record"}
	}
	if err != nil {
		return zero, s.fail(ctx, action, start, s.shapeError(err))
	}

	s.succeed(ctx, action, start, "", fmt.Sprintf("Loaded %s.", strings.ToLower(s.cfg.label())), nil)
	return single.Item, nil
}

// Create validates d (the current draft when nil), sends it, appends the
// returned record and clears the draft. Missing required fields fail before
// any request is made.
func (s *Store[T]) Create(ctx context.Context, d Draft) (T, error) {
	const action = "create"
	var zero T
	start := time.Now()
	if d == nil {
		d = s.Draft()
	}

	payload, err := s.prepare(d, true)
	if err != nil {
		return zero, s.reject(ctx, action, start, err)
	}

	return s.mutate(ctx, Call[T]{
		Action:  action,
		Method:  http.MethodPost,
		Path:    s.cfg.CreatePath,
		Body:    payload.Body,
		Success: fmt.Sprintf("%s created successfully!", s.cfg.label()),
		Failure: fmt.Sprintf("Failed to create %s.", strings.ToLower(s.cfg.label())),
	}, func(res Single[T]) {
		if res.Found {
			s.items = append(slices.Clone(s.items), res.Item)
			if s.cfg.Compare != nil {
				slices.SortStableFunc(s.items, s.cfg.Compare)
			}
			s.page.Total++
		}
		s.draft = s.cfg.emptyDraft()
	})
}

// Update sends d (the current draft when nil) for id and replaces the local
// record with the server's. An id that is not loaded is left alone.
func (s *Store[T]) Update(ctx context.Context, id string, d Draft) (T, error) {
	const action = "update"
	var zero T
	start := time.Now()
	if s.cfg.NoUpdate {
		return zero, s.reject(ctx, action, start, apperrors.NewUnsupported(fmt.Sprintf("%s cannot be updated", s.cfg.Plural)))
	}
	if d == nil {
		d = s.Draft()
	}

	payload, err := s.prepare(d, false)
	if err != nil {
		return zero, s.reject(ctx, action, start, err)
	}

	return s.mutate(ctx, Call[T]{
		Action:  action,
		Method:  s.cfg.UpdateMethod,
		Path:    s.cfg.itemPath(id),
		Body:    payload.Body,
		Success: fmt.Sprintf("%s updated successfully!", s.cfg.label()),
		Failure: fmt.Sprintf("Failed to update %s.", strings.ToLower(s.cfg.label())),
	}, func(res Single[T]) {
		if res.Found {
			s.items = replaceByID(s.items, id, res.Item)
		}
	})
}

// Delete removes id after confirm approves. A nil confirm skips the prompt.
// A declined prompt returns ErrDeclined without touching state; a prompt that
// fails is reported like any other failed delete.
func (s *Store[T]) Delete(ctx context.Context, id string, confirm Confirmer) error {
	const action = "delete"
	start := time.Now()
	if s.cfg.NoDelete {
		return s.reject(ctx, action, start, apperrors.NewUnsupported(fmt.Sprintf("%s cannot be deleted", s.cfg.Plural)))
	}

	if confirm != nil {
		ok, err := confirm.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete this %s?", strings.ToLower(s.cfg.label())))
		if err != nil {
			return s.reject(ctx, action, start, &apperrors.AppError{
				Code:    apperrors.ErrInternal,
				Message: fmt.Sprintf("Failed to delete %s.", strings.ToLower(s.cfg.label())),
				Status:  http.StatusInternalServerError,
				Err:     err,
			})
		}
		if !ok {
			s.recorder.ObserveAction(s.cfg.Name, action, "declined", time.Since(start))
			return ErrDeclined
		}
	}

	_, err := s.mutate(ctx, Call[T]{
		Action:  action,
		Method:  http.MethodDelete,
		Path:    s.cfg.itemPath(id),
		Success: fmt.Sprintf("%s deleted successfully!", s.cfg.label()),
		Failure: fmt.Sprintf("Failed to delete %s.", strings.ToLower(s.cfg.label())),
	}, func(Single[T]) {
		before := len(s.items)
		s.items = slices.DeleteFunc(slices.Clone(s.items), func(it T) bool { return it.EntityID() == id })
		if removed := before - len(s.items); removed > 0 && s.page.Total >= removed {
			s.page.Total -= removed
		}
	})
	return err
}

// Call is a one-off mutation outside the CRUD set, such as a status toggle.
type Call[T Entity] struct {
	Action  string
	Method  string
	Path    string
	Body    any
	Success string
	Failure string
	// Apply returns the new list given the current one and the decoded
	// response. It runs under the store lock on a copy of the list.
	Apply func(items []T, res Single[T]) []T
}

// Mutate runs c with the store's loading, error and notification handling.
func (s *Store[T]) Mutate(ctx context.Context, c Call[T]) (T, error) {
	return s.mutate(ctx, c, func(res Single[T]) {
		if c.Apply != nil {
			s.items = c.Apply(slices.Clone(s.items), res)
		}
	})
}

func (s *Store[T]) mutate(ctx context.Context, c Call[T], apply func(Single[T])) (T, error) {
	var zero T
	start := time.Now()

	s.begin()
	resp, err := s.api.Do(ctx, c.Method, c.Path, c.Body)
	if err != nil {
		return zero, s.fail(ctx, c.Action, start, s.apiError(err, c.Failure))
	}

	res, err := DecodeSingle[T](resp.Body, s.cfg.itemKey())
	if err != nil {
		return zero, s.fail(ctx, c.Action, start, s.shapeError(err))
	}

	s.succeed(ctx, c.Action, start, res.Message, c.Success, func() { apply(res) })
	return res.Item, nil
}

// prepare validates d and builds the request body. On create every required
// field must be present; on update only the required fields the draft
// carries are checked, and file fields may be left out.
func (s *Store[T]) prepare(d Draft, creating bool) (*Payload, error) {
	required := s.cfg.Required
	if !creating {
		required = nil
		for _, f := range s.cfg.Required {
			if _, ok := d[f]; ok && !slices.Contains(s.cfg.FileFields, f) {
				required = append(required, f)
			}
		}
	}
	if miss := missing(d, required, s.cfg.FileFields); len(miss) > 0 {
		return nil, apperrors.NewValidation(requiredMessage(miss, s.cfg.FieldLabels))
	}

	if err := checkChoices(d, s.cfg.Choices); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	payload, err := s.cfg.buildPayload(d, creating)
	if err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}
	if err := checkRules(payload.Fields, s.cfg.Rules); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}
	return payload, nil
}

func (s *Store[T]) begin() {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()
}

func (s *Store[T]) succeed(ctx context.Context, action string, start time.Time, serverMsg, fallback string, apply func()) {
	s.mu.Lock()
	s.inflight--
	if apply != nil {
		apply()
	}
	s.mu.Unlock()

	msg := serverMsg
	if msg == "" {
		msg = fallback
	}
	s.notifier.NotifySuccess(ctx, msg)
	s.recorder.ObserveAction(s.cfg.Name, action, "success", time.Since(start))
	s.log.ZL.Debug().Str("entity", s.cfg.Name).Str("action", action).Dur("took", time.Since(start)).Msg("store action succeeded")
}

// fail ends an in-flight action with an error.
func (s *Store[T]) fail(ctx context.Context, action string, start time.Time, err error) error {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	return s.report(ctx, action, start, "error", err)
}

// Reject records err as the outcome of an action that never reached the
// network: it sets Err and notifies.
func (s *Store[T]) Reject(ctx context.Context, action string, err error) error {
	return s.reject(ctx, action, time.Now(), err)
}

func (s *Store[T]) reject(ctx context.Context, action string, start time.Time, err error) error {
	status := "error"
	if apperrors.IsValidation(err) {
		status = "invalid"
	}
	return s.report(ctx, action, start, status, err)
}

func (s *Store[T]) report(ctx context.Context, action string, start time.Time, status string, err error) error {
	msg := apperrors.MessageOf(err)
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()

	s.notifier.NotifyError(ctx, msg)
	s.recorder.ObserveAction(s.cfg.Name, action, status, time.Since(start))
	s.log.ZL.Debug().Err(err).Str("entity", s.cfg.Name).Str("action", action).Msg("store action failed")
	return err
}

// apiError turns a client error into the transport/server taxonomy.
func (s *Store[T]) apiError(err error, fallback string) error {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		msg := se.Text(s.cfg.ErrorField)
		if msg == "" {
			msg = fallback
		}
		ae := apperrors.NewServer(se.Status, msg)
		ae.Err = se
		return ae
	}
	return apperrors.NewTransport(fallback, err)
}

func (s *Store[T]) shapeError(err error) error {
	ae := apperrors.NewShape(fmt.Sprintf("Unexpected API response format for %s.", s.cfg.Plural))
	ae.Err = err
	return ae
}

func replaceByID[T Entity](items []T, id string, item T) []T {
	out := slices.Clone(items)
	for i := range out {
		if out[i].EntityID() == id {
			out[i] = item
		}
	}
	return out
}
