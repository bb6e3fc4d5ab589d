package permission

import (
	"time"

	"anychat/internal/pkg/auth/jwt"
	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/metrics"
)

// Bundle is the claim set of one grant plus its token. A placeholder bundle (no room yet)
// carries the user id and flags but no room id and no token.
type Bundle struct {
	RoomID      string `json:"room_id,omitempty"`
	UserID      string `json:"user_id"`
	CanEdit     bool   `json:"can_edit"`
	CanDelete   bool   `json:"can_delete"`
	CanView     bool   `json:"can_view"`
	CanCreate   bool   `json:"can_create"`
	AccessToken string `json:"access_token,omitempty"`
}

// Placeholder returns the deferred bundle attached before a token can be minted.
func Placeholder(userID string, flags Flags) Bundle {
	b := Bundle{UserID: userID}
	b.setFlags(flags)
	return b
}

// Flags returns the bundle's capabilities.
func (b Bundle) Flags() Flags {
	return Flags{CanCreate: b.CanCreate, CanView: b.CanView, CanDelete: b.CanDelete, CanEdit: b.CanEdit}
}

// HasToken reports whether the bundle carries a minted token.
func (b Bundle) HasToken() bool {
	return b.AccessToken != ""
}

// Claims returns the bundle as token claims (without the token itself).
func (b Bundle) Claims() jwt.Claims {
	return jwt.Claims{
		KeyRoomID:    b.RoomID,
		KeyUserID:    b.UserID,
		KeyCanEdit:   b.CanEdit,
		KeyCanDelete: b.CanDelete,
		KeyCanView:   b.CanView,
		KeyCanCreate: b.CanCreate,
	}
}

// Map returns the bundle in its wire shape.
func (b Bundle) Map() map[string]any {
	m := map[string]any{
		KeyUserID:    b.UserID,
		KeyCanEdit:   b.CanEdit,
		KeyCanDelete: b.CanDelete,
		KeyCanView:   b.CanView,
		KeyCanCreate: b.CanCreate,
	}
	if b.RoomID != "" {
		m[KeyRoomID] = b.RoomID
	}
	if b.AccessToken != "" {
		m[KeyAccessToken] = b.AccessToken
	}
	return m
}

func (b *Bundle) setFlags(f Flags) {
	b.CanCreate = f.CanCreate
	b.CanView = f.CanView
	b.CanDelete = f.CanDelete
	b.CanEdit = f.CanEdit
}

// Minter signs claims for an identity.
type Minter interface {
	Mint(identity jwt.ClientIdentity, claims jwt.Claims, ttl time.Duration) (string, error)
}

// Grantor mints grants for the members of one room.
type Grantor struct {
	minter   Minter
	identity jwt.ClientIdentity
	roomID   string
	ttl      time.Duration
}

// NewGrantor returns a Grantor for roomID with the default 7 day ttl.
func NewGrantor(minter Minter, identity jwt.ClientIdentity, roomID string) *Grantor {
	return &Grantor{
		minter:   minter,
		identity: identity,
		roomID:   roomID,
		ttl:      jwt.DefaultTTL,
	}
}

// SetTTL changes the lifetime of the grants minted afterwards.
func (g *Grantor) SetTTL(ttl time.Duration) *Grantor {
	if ttl > 0 {
		g.ttl = ttl
	}
	return g
}

// Grant mints the bundle for userID with flags.
func (g *Grantor) Grant(userID string, flags Flags) (Bundle, error) {
	return g.grant(userID, flags, g.ttl)
}

func (g *Grantor) grant(userID string, flags Flags, ttl time.Duration) (Bundle, error) {
	if g.roomID == "" {
		return Bundle{}, errs.NewError(errs.ErrMissingIdentifier, "Room")
	}
	if userID == "" {
		return Bundle{}, errs.NewError(errs.ErrMissingUserID)
	}

	bundle := Bundle{RoomID: g.roomID, UserID: userID}
	bundle.setFlags(flags)

	token, err := g.minter.Mint(g.identity, bundle.Claims(), ttl)
	if err != nil {
		return Bundle{}, err
	}
	metrics.TokenMinted("grant")

	bundle.AccessToken = token
	return bundle, nil
}

// Member is one entry of a batch grant. A zero TTL uses the grantor's ttl.
type Member struct {
	ID       string
	Override Override
	TTL      time.Duration
}

// MemberFromMap reads a batch entry: id, can_* flags and an optional expire in seconds.
func MemberFromMap(m map[string]any) Member {
	member := Member{Override: OverrideFromMap(m)}
	member.ID, _ = m["id"].(string)
	switch exp := m[KeyExpire].(type) {
	case float64:
		member.TTL = time.Duration(exp) * time.Second
	case int:
		member.TTL = time.Duration(exp) * time.Second
	}
	return member
}

// GrantAll mints one bundle per member, keyed by user id. Every member is validated before
// the first token is minted, so a missing id aborts the batch with ErrMissingUserID and no
// tokens. A later duplicate id replaces the earlier bundle.
func (g *Grantor) GrantAll(members []Member) (map[string]Bundle, error) {
	for _, m := range members {
		if m.ID == "" {
			return nil, errs.NewError(errs.ErrMissingUserID)
		}
	}

	out := make(map[string]Bundle, len(members))
	for _, m := range members {
		ttl := m.TTL
		if ttl <= 0 {
			ttl = g.ttl
		}
		bundle, err := g.grant(m.ID, m.Override.Resolve(AllowAll()), ttl)
		if err != nil {
			return nil, err
		}
		out[m.ID] = bundle
	}
	return out, nil
}
