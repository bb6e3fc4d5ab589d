/*
Package client binds a ClientIdentity to the transport used to reach the message provider.

A *Client is the "live client binding" entities need before they can talk to the provider
or mint tokens. There is no process-wide instance: callers build one per identity and pass
it to the entities that use it.
*/
package client

import (
	"context"
	"time"

	"anychat/internal/app/transport"
	"anychat/internal/configs"
	"anychat/internal/pkg/auth/jwt"
	"anychat/internal/pkg/errs"
)

// Client is a ClientIdentity plus the Sender and Issuer that act on its behalf.
type Client struct {
	Identity jwt.ClientIdentity
	Sender   transport.Sender
	Issuer   *jwt.Issuer

	// TokenTTL is the lifetime of user tokens minted through this binding.
	TokenTTL time.Duration

	// GrantTTL is the lifetime of room permission tokens.
	GrantTTL time.Duration
}

// New binds identity to sender with the default token lifetimes.
func New(identity jwt.ClientIdentity, sender transport.Sender) *Client {
	return &Client{
		Identity: identity,
		Sender:   sender,
		Issuer:   jwt.NewIssuer(),
		TokenTTL: jwt.DefaultTTL,
		GrantTTL: jwt.DefaultTTL,
	}
}

// FromConfig builds a Client with an HTTPSender configured from cfg.
func FromConfig(cfg *configs.AppConfig) *Client {
	identity := jwt.ClientIdentity{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret}

	opts := []transport.Option{
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithTokenTTL(cfg.TokenTTL),
	}
	if cfg.AuthHeader == configs.AuthHeaderRaw {
		opts = append(opts, transport.WithRawAuthHeader())
	}

	c := New(identity, transport.NewHTTPSender(cfg.ProviderHost, identity, opts...))
	c.TokenTTL = cfg.TokenTTL
	c.GrantTTL = cfg.GrantTTL
	return c
}

// Configured reports whether c can sign tokens and reach the provider.
func (c *Client) Configured() bool {
	return c != nil && c.Sender != nil && c.Identity.Configured()
}

// Check returns ErrClientNotConfigured unless c is Configured.
func (c *Client) Check() error {
	if !c.Configured() {
		return errs.NewError(errs.ErrClientNotConfigured)
	}
	return nil
}

// Issue mints a token for claims with the binding's identity and TokenTTL.
func (c *Client) Issue(claims jwt.Claims) (string, error) {
	if err := c.Check(); err != nil {
		return "", err
	}
	return c.issuer().Mint(c.Identity, claims, c.TokenTTL)
}

// Call performs one provider request and converts a failed envelope into
// RemoteOperationFailed carrying operation, status and body. The decoded body is returned.
func (c *Client) Call(ctx context.Context, operation, uri, method string, data map[string]any) (any, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}

	envelope := c.Sender.Send(ctx, uri, method, data, nil)
	if !envelope.Success {
		return nil, errs.Remote(operation, envelope.Status, envelope.Failure())
	}
	return envelope.Body, nil
}

func (c *Client) issuer() *jwt.Issuer {
	if c.Issuer == nil {
		return jwt.NewIssuer()
	}
	return c.Issuer
}

// MintIssuer exposes the issuer used for tokens minted through this binding.
func (c *Client) MintIssuer() *jwt.Issuer {
	return c.issuer()
}
