/*
Package room implements the room aggregate: a provider room, its ordered member list and the
permission grant attached to every member.

Members are deduplicated by id. Grant tokens are minted only when the room has a live client
binding and a persisted id; before that every member carries a placeholder bundle.
*/
package room

import (
	"anychat/internal/app/client"
	"anychat/internal/app/reconcile"
	"anychat/internal/pkg/errs"
)

const (
	// Endpoint is the provider's room collection.
	Endpoint = "/api/room"

	// ListRoomsPath lists the rooms of one user, most recent activity first.
	ListRoomsPath = "/api/room/list-rooms"
)

// Wire names of room fields.
const (
	KeyName              = "name"
	KeyTitle             = "title"
	KeyAvatar            = "avatar"
	KeyExpiredTime       = "expired_time"
	KeyDescription       = "description"
	KeyDescriptionConfig = "description_config"
	KeyPins              = "pins"
	KeyUsers             = "users"
	KeyUserIDs           = "user_ids"
	KeyTemplateID        = "template_id"
	KeyTemplateValue     = "template_value"
)

// DescriptionConfig is a templated room description.
type DescriptionConfig struct {
	TemplateID    string
	TemplateValue map[string]any
}

// Map returns the config in wire shape.
func (d *DescriptionConfig) Map() map[string]any {
	values := d.TemplateValue
	if values == nil {
		values = map[string]any{}
	}
	return map[string]any{
		KeyTemplateID:    d.TemplateID,
		KeyTemplateValue: values,
	}
}

func descriptionConfigFromMap(m map[string]any) (*DescriptionConfig, bool) {
	id := reconcile.String(m, KeyTemplateID)
	if id == "" {
		return nil, false
	}
	values, _ := m[KeyTemplateValue].(map[string]any)
	return &DescriptionConfig{TemplateID: id, TemplateValue: values}, true
}

// Room is a conversation on the provider.
type Room struct {
	ID                string
	Name              string
	Avatar            string
	ExpiredTime       string
	Description       string
	DescriptionConfig *DescriptionConfig
	Pins              []any
	Members           []Member

	client *client.Client
}

// New builds an unbound Room from a raw field map. Members may be given under "users" or
// the legacy "user_ids", as bare ids or objects; they get placeholder bundles until the
// room is bound and persisted.
func New(fields map[string]any) *Room {
	r := &Room{}
	data, _ := reconcile.NormalizeIdentity(fields)
	r.Normalize(data)
	// An unbound room never mints, so assembling cannot fail.
	next, _ := r.assemble(data)
	*r = next
	return r
}

// SetClient attaches the client binding used for remote calls and grants.
func (r *Room) SetClient(c *client.Client) *Room {
	r.client = c
	return r
}

// Client returns the attached binding (nil when unset).
func (r *Room) Client() *client.Client {
	return r.client
}

// Persisted reports whether the room exists remotely.
func (r *Room) Persisted() bool {
	return r.ID != ""
}

// Member returns the member with id.
func (r *Room) Member(id string) (Member, bool) {
	if i := r.indexOf(id); i >= 0 {
		return r.Members[i], true
	}
	return Member{}, false
}

// MemberIDs returns the ids of the members in order, skipping members without one.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// SetDescriptionConfig sets a templated description. The template id is required.
func (r *Room) SetDescriptionConfig(templateID string, values map[string]any) error {
	if templateID == "" {
		return errs.NewError(errs.ErrInvalidDescriptionConfig)
	}
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	r.DescriptionConfig = &DescriptionConfig{TemplateID: templateID, TemplateValue: copied}
	return nil
}

// Attributes returns the room in canonical wire shape.
func (r *Room) Attributes() map[string]any {
	users := make([]any, 0, len(r.Members))
	for _, m := range r.Members {
		users = append(users, m.Attributes())
	}
	var config any
	if r.DescriptionConfig != nil {
		config = r.DescriptionConfig.Map()
	}
	return map[string]any{
		reconcile.KeyID:      nullable(r.ID),
		KeyName:              nullable(r.Name),
		KeyAvatar:            nullable(r.Avatar),
		KeyExpiredTime:       nullable(r.ExpiredTime),
		KeyDescription:       nullable(r.Description),
		KeyDescriptionConfig: config,
		KeyPins:              r.pins(),
		KeyUsers:             users,
	}
}

func (r *Room) pins() []any {
	if r.Pins == nil {
		return []any{}
	}
	return r.Pins
}

func (r *Room) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, m := range r.Members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
