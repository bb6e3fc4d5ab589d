package room

import (
	"context"
	"net/url"

	"anychat/internal/app/client"
	"anychat/internal/app/permission"
	"anychat/internal/app/reconcile"
	"anychat/internal/pkg/errs"
)

// Kind implements reconcile.Entity.
func (r *Room) Kind() string { return "room" }

// Endpoint implements reconcile.Entity.
func (r *Room) Endpoint() string { return Endpoint }

// Identifier implements reconcile.Entity.
func (r *Room) Identifier() string { return r.ID }

// CreatePayload implements reconcile.Entity.
func (r *Room) CreatePayload() map[string]any {
	return map[string]any{
		KeyUserIDs:     r.MemberIDs(),
		KeyName:        nullable(r.Name),
		KeyAvatar:      nullable(r.Avatar),
		KeyExpiredTime: nullable(r.ExpiredTime),
		KeyDescription: r.descriptionPayload(),
	}
}

// UpdatePayload implements reconcile.Entity. Pins are only sent on update.
func (r *Room) UpdatePayload() map[string]any {
	payload := r.CreatePayload()
	payload[KeyPins] = r.pins()
	return payload
}

// descriptionPayload sends the template config when one is set, otherwise the plain text.
func (r *Room) descriptionPayload() any {
	if r.DescriptionConfig != nil {
		return r.DescriptionConfig.Map()
	}
	return nullable(r.Description)
}

// Normalize implements reconcile.Normalizer. It folds the legacy "user_ids" list into
// "users", normalizes every member reference and maps a legacy "title" onto "name".
func (r *Room) Normalize(data map[string]any) {
	if _, ok := data[KeyUsers]; !ok {
		if legacy, ok := data[KeyUserIDs]; ok {
			data[KeyUsers] = legacy
		}
	}
	delete(data, KeyUserIDs)

	if raw, ok := data[KeyUsers]; ok {
		data[KeyUsers] = reconcile.NormalizeList(toList(raw))
	}

	if reconcile.String(data, KeyName) == "" {
		if title := reconcile.String(data, KeyTitle); title != "" {
			data[KeyName] = title
		}
	}
	delete(data, KeyTitle)
}

// Apply implements reconcile.Entity. The new state is built aside and swapped in only
// when every grant was minted.
func (r *Room) Apply(data map[string]any) error {
	next, err := r.assemble(data)
	if err != nil {
		return err
	}
	*r = next
	return nil
}

// assemble builds the room described by normalized data. When data lists members they
// replace the local ones, keeping the flags of members already known; otherwise the local
// members are kept and their grants refreshed for the (possibly new) room id.
func (r *Room) assemble(data map[string]any) (Room, error) {
	next := Room{
		ID:                reconcile.String(data, reconcile.KeyID),
		Name:              reconcile.String(data, KeyName),
		Avatar:            reconcile.String(data, KeyAvatar),
		ExpiredTime:       reconcile.String(data, KeyExpiredTime),
		DescriptionConfig: r.DescriptionConfig,
		client:            r.client,
	}

	switch description := data[KeyDescription].(type) {
	case string:
		next.Description = description
	case map[string]any:
		if config, ok := descriptionConfigFromMap(description); ok {
			next.DescriptionConfig = config
		}
	}
	if raw, ok := data[KeyDescriptionConfig].(map[string]any); ok {
		if config, ok := descriptionConfigFromMap(raw); ok {
			next.DescriptionConfig = config
		}
	}

	if pins, ok := data[KeyPins].([]any); ok {
		next.Pins = pins
	}

	if raw, ok := data[KeyUsers]; ok {
		for _, member := range memberMaps(raw) {
			ref := memberRefFromData(member)
			defaults := permission.AllowAll()
			if prior, known := r.Member(ref.ID); known {
				defaults = prior.Permission.Flags()
			}
			if err := next.AddMember(ref, defaults); err != nil {
				return Room{}, err
			}
		}
		return next, nil
	}

	for _, m := range r.Members {
		if m.ID == "" {
			next.Members = append(next.Members, m)
			continue
		}
		ref := MemberRef{ID: m.ID, Profile: m.Profile, Override: permission.Pin(m.Permission.Flags())}
		if err := next.AddMember(ref, permission.AllowAll()); err != nil {
			return Room{}, err
		}
	}
	return next, nil
}

// Upsert creates the room when it has no id, otherwise updates it.
func (r *Room) Upsert(ctx context.Context) error {
	return reconcile.New[*Room](r.client).Upsert(ctx, r)
}

// SyncOrCreate creates the room when it has no id, otherwise reloads it from the provider.
func (r *Room) SyncOrCreate(ctx context.Context) error {
	return reconcile.New[*Room](r.client).SyncOrCreate(ctx, r)
}

// Delete removes the room remotely and returns the provider's response body.
func (r *Room) Delete(ctx context.Context) (any, error) {
	return reconcile.New[*Room](r.client).Delete(ctx, r)
}

// List returns every room known to the provider. The rooms are unbound.
func List(ctx context.Context, c *client.Client) ([]*Room, error) {
	return reconcile.List(ctx, c, "list rooms", Endpoint, build)
}

// ListUserRooms returns the rooms userID belongs to. The rooms are unbound.
func ListUserRooms(ctx context.Context, c *client.Client, userID string) ([]*Room, error) {
	if userID == "" {
		return nil, errs.NewError(errs.ErrMissingUserID)
	}
	uri := ListRoomsPath + "?" + url.Values{"user_id": {userID}}.Encode()
	return reconcile.List(ctx, c, "list user rooms", uri, build)
}

// LastRoomWithNewMessage returns the room of userID with the most recent message, or nil
// when the user has none.
func LastRoomWithNewMessage(ctx context.Context, c *client.Client, userID string) (*Room, error) {
	rooms, err := ListUserRooms(ctx, c, userID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, nil
	}
	return rooms[0], nil
}

func build(data map[string]any) (*Room, error) {
	return New(data), nil
}

// toList widens the member list shapes a Go caller may pass.
func toList(raw any) any {
	switch v := raw.(type) {
	case []string:
		out := make([]any, len(v))
		for i, id := range v {
			out[i] = id
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	}
	return raw
}

func memberMaps(raw any) []map[string]any {
	if maps, ok := raw.([]map[string]any); ok {
		return maps
	}
	return reconcile.NormalizeList(toList(raw))
}
