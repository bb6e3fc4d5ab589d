/*
Package user manages chat participants on the message provider.

A User starts from a partial field map; an empty ID means it has not been created remotely
yet. Upsert, SyncOrCreate and Delete reconcile it with the provider and update it in place
on success only.
*/
package user

import (
	"context"

	"anychat/internal/app/client"
	"anychat/internal/app/reconcile"
	"anychat/internal/pkg/auth/jwt"
	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/metrics"
)

// Endpoint is the provider's user collection.
const Endpoint = "/api/user"

// User is a chat participant.
type User struct {
	ID string
	Profile

	client *client.Client
}

// New builds a User from a raw field map. The id is taken from "_id" or "id".
func New(fields map[string]any) *User {
	return &User{
		ID:      reconcile.ResolveID(fields),
		Profile: ProfileFromMap(fields),
	}
}

// SetClient attaches the client binding used for remote calls and tokens.
func (u *User) SetClient(c *client.Client) *User {
	u.client = c
	return u
}

// Client returns the attached binding (nil when unset).
func (u *User) Client() *client.Client {
	return u.client
}

// Kind implements reconcile.Entity.
func (u *User) Kind() string { return "user" }

// Endpoint implements reconcile.Entity.
func (u *User) Endpoint() string { return Endpoint }

// Identifier implements reconcile.Entity.
func (u *User) Identifier() string { return u.ID }

// CreatePayload implements reconcile.Entity.
func (u *User) CreatePayload() map[string]any { return u.Profile.payload() }

// UpdatePayload implements reconcile.Entity.
func (u *User) UpdatePayload() map[string]any { return u.Profile.payload() }

// Apply implements reconcile.Entity: the response replaces every field.
func (u *User) Apply(data map[string]any) error {
	u.ID = reconcile.String(data, reconcile.KeyID)
	u.Profile = ProfileFromMap(data)
	return nil
}

// Attributes returns the user in canonical wire shape.
func (u *User) Attributes() map[string]any {
	m := u.Profile.Map()
	m[reconcile.KeyID] = nullable(u.ID)
	return m
}

func (u *User) validate() error {
	if u.Gender != "" && !u.Gender.Valid() {
		return errs.NewError(errs.ErrInvalidGender, string(u.Gender))
	}
	return nil
}

// Upsert creates the user when it has no id, otherwise updates it.
func (u *User) Upsert(ctx context.Context) error {
	if err := u.validate(); err != nil {
		return err
	}
	return reconcile.New[*User](u.client).Upsert(ctx, u)
}

// SyncOrCreate creates the user when it has no id, otherwise reloads it from the provider.
func (u *User) SyncOrCreate(ctx context.Context) error {
	if u.ID == "" {
		if err := u.validate(); err != nil {
			return err
		}
	}
	return reconcile.New[*User](u.client).SyncOrCreate(ctx, u)
}

// Delete removes the user remotely and returns the provider's response body.
func (u *User) Delete(ctx context.Context) (any, error) {
	return reconcile.New[*User](u.client).Delete(ctx, u)
}

// Token mints a user token carrying the user's id and full name.
func (u *User) Token() (string, error) {
	if err := u.client.Check(); err != nil {
		return "", err
	}
	token, err := u.client.Issue(jwt.Claims{
		"id":        u.ID,
		KeyFullName: u.FullName,
	})
	if err != nil {
		return "", err
	}
	metrics.TokenMinted("user")
	return token, nil
}

// List returns every user known to the provider.
func List(ctx context.Context, c *client.Client) ([]*User, error) {
	return reconcile.List(ctx, c, "list users", Endpoint, func(data map[string]any) (*User, error) {
		return New(data), nil
	})
}
