/*
Package reconcile implements the create-or-update-or-fetch state machine shared by users and rooms.

An entity without an id is created; with an id it is updated (Upsert) or re-read from the
provider (SyncOrCreate). The response is normalized ("_id" folded into "id", nested member
references re-keyed) and merged into the entity only after every check passed, so a failed
operation leaves the entity exactly as it was.
*/
package reconcile

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"anychat/internal/app/client"
	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/logx"
)

// Entity is what the reconciler needs from a user or room.
type Entity interface {
	// Kind names the entity in errors and operation names ("user", "room").
	Kind() string

	// Endpoint is the collection path, e.g. "/api/user".
	Endpoint() string

	// Identifier returns the local id ("" when not yet persisted).
	Identifier() string

	// CreatePayload and UpdatePayload build the request bodies.
	CreatePayload() map[string]any
	UpdatePayload() map[string]any

	// Apply merges a normalized response carrying a non-empty "id". It must not
	// modify the entity when it returns an error.
	Apply(data map[string]any) error
}

// Normalizer is implemented by entities with nested references to re-key before Apply.
type Normalizer interface {
	Normalize(data map[string]any)
}

// Reconciler runs reconciliation for one entity type over one client binding.
type Reconciler[E Entity] struct {
	client *client.Client
	logger zerolog.Logger
}

// New returns a Reconciler using c.
func New[E Entity](c *client.Client) *Reconciler[E] {
	return &Reconciler[E]{
		client: c,
		logger: logx.Component("reconcile"),
	}
}

// Upsert creates e when it has no id and updates it otherwise.
func (r *Reconciler[E]) Upsert(ctx context.Context, e E) error {
	if err := r.client.Check(); err != nil {
		return err
	}

	if e.Identifier() == "" {
		return r.run(ctx, e, "create", e.Endpoint(), http.MethodPost, e.CreatePayload())
	}
	return r.run(ctx, e, "update", ItemPath(e), http.MethodPut, e.UpdatePayload())
}

// SyncOrCreate creates e when it has no id and otherwise overwrites it with the provider's state.
func (r *Reconciler[E]) SyncOrCreate(ctx context.Context, e E) error {
	if err := r.client.Check(); err != nil {
		return err
	}

	if e.Identifier() == "" {
		return r.run(ctx, e, "create", e.Endpoint(), http.MethodPost, e.CreatePayload())
	}
	return r.run(ctx, e, "get", ItemPath(e), http.MethodGet, nil)
}

// Delete removes e remotely and returns the response body (an empty map when the body is empty).
func (r *Reconciler[E]) Delete(ctx context.Context, e E) (any, error) {
	if e.Identifier() == "" {
		return nil, errs.NewError(errs.ErrMissingIdentifier, capitalize(e.Kind()))
	}
	if err := r.client.Check(); err != nil {
		return nil, err
	}

	body, err := r.client.Call(ctx, "delete "+e.Kind(), ItemPath(e), http.MethodDelete, nil)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().Str("kind", e.Kind()).Str("id", e.Identifier()).Msg("Entity deleted")

	if body == nil {
		return map[string]any{}, nil
	}
	return body, nil
}

func (r *Reconciler[E]) run(ctx context.Context, e E, verb, uri, method string, payload map[string]any) error {
	operation := verb + " " + e.Kind()

	body, err := r.client.Call(ctx, operation, uri, method, payload)
	if err != nil {
		return err
	}

	object, isObject := body.(map[string]any)
	if !isObject {
		return errs.NewError(errs.ErrEntityNotFound, capitalize(e.Kind()))
	}
	data, _ := NormalizeIdentity(object)
	if String(data, KeyID) == "" {
		return errs.NewError(errs.ErrEntityNotFound, capitalize(e.Kind()))
	}

	if n, ok := any(e).(Normalizer); ok {
		n.Normalize(data)
	}

	if err := e.Apply(data); err != nil {
		return err
	}

	r.logger.Debug().
		Str("operation", operation).
		Str("id", e.Identifier()).
		Msg("Entity reconciled")

	return nil
}

// List fetches a collection and builds one value per normalized item, in response order.
func List[T any](ctx context.Context, c *client.Client, operation, uri string, build func(map[string]any) (T, error)) ([]T, error) {
	body, err := c.Call(ctx, operation, uri, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	items := Unwrap(body)
	out := make([]T, 0, len(items))
	for _, item := range items {
		data, ok := NormalizeIdentity(item)
		if !ok {
			continue
		}
		value, err := build(data)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// ItemPath returns the entity's item URI, escaping the id.
func ItemPath(e Entity) string {
	return e.Endpoint() + "/" + url.PathEscape(e.Identifier())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
