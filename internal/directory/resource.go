package directory

import (
	"context"
	"sort"

	"github.com/jwalitptl/directory-admin/internal/store"
)

// Form describes a resource's draft so hosts can parse submissions into it.
type Form struct {
	Fields   []string `json:"fields"`
	Nested   []string `json:"nested"`
	Files    []string `json:"files"`
	Required []string `json:"required"`
}

// Status is the non-generic view of a store's flags.
type Status struct {
	Loading bool       `json:"loading"`
	Error   string     `json:"error,omitempty"`
	Count   int        `json:"count"`
	Page    store.Page `json:"page"`
}

// Resource drives one entity store without knowing its record type. Records
// come back as view rows.
type Resource interface {
	Name() string
	Form() Form
	Blank() store.Draft
	Load(ctx context.Context) error
	Rows() []any
	Get(ctx context.Context, id string) (any, error)
	Create(ctx context.Context, d store.Draft) (any, error)
	Update(ctx context.Context, id string, d store.Draft) (any, error)
	Delete(ctx context.Context, id string, c store.Confirmer) error
	Status() Status
}

type resource[T store.Entity] struct {
	name string
	s    *store.Store[T]
	row  func(T) any
}

func newResource[T store.Entity](name string, s *store.Store[T], row func(T) any) *resource[T] {
	return &resource[T]{name: name, s: s, row: row}
}

func (r *resource[T]) Name() string { return r.name }

func (r *resource[T]) Form() Form {
	cfg := r.s.Config()
	f := Form{Files: cfg.FileFields, Required: cfg.Required}
	for k, v := range r.Blank() {
		if _, ok := v.(map[string]any); ok {
			f.Nested = append(f.Nested, k)
			continue
		}
		f.Fields = append(f.Fields, k)
	}
	sort.Strings(f.Fields)
	sort.Strings(f.Nested)
	return f
}

func (r *resource[T]) Blank() store.Draft {
	cfg := r.s.Config()
	if cfg.Empty == nil {
		return store.Draft{}
	}
	return cfg.Empty()
}

func (r *resource[T]) Load(ctx context.Context) error { return r.s.FetchAll(ctx) }

func (r *resource[T]) Rows() []any {
	items := r.s.Items()
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, r.row(it))
	}
	return out
}

func (r *resource[T]) Get(ctx context.Context, id string) (any, error) {
	it, err := r.s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.row(it), nil
}

func (r *resource[T]) Create(ctx context.Context, d store.Draft) (any, error) {
	it, err := r.s.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	return r.row(it), nil
}

func (r *resource[T]) Update(ctx context.Context, id string, d store.Draft) (any, error) {
	it, err := r.s.Update(ctx, id, d)
	if err != nil {
		return nil, err
	}
	return r.row(it), nil
}

func (r *resource[T]) Delete(ctx context.Context, id string, c store.Confirmer) error {
	return r.s.Delete(ctx, id, c)
}

func (r *resource[T]) Status() Status {
	st := r.s.State()
	return Status{Loading: st.Loading, Error: st.Error, Count: len(st.Items), Page: st.Page}
}
