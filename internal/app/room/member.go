package room

import (
	"anychat/internal/app/permission"
	"anychat/internal/app/reconcile"
	"anychat/internal/app/user"
)

// KeyUserRoom is the nested object carrying a member's permission bundle.
const KeyUserRoom = "user_room"

// Member is one user's association with a room.
type Member struct {
	ID         string
	Profile    user.Profile
	Permission permission.Bundle
}

// Attributes returns the member in wire shape: the user fields plus "user_room".
func (m Member) Attributes() map[string]any {
	attrs := m.Profile.Map()
	if m.ID == "" {
		attrs[reconcile.KeyID] = nil
	} else {
		attrs[reconcile.KeyID] = m.ID
	}
	attrs[KeyUserRoom] = m.Permission.Map()
	return attrs
}

// MemberRef is the input to AddMember: an id, optional profile fields and optional
// per-flag overrides.
type MemberRef struct {
	ID       string
	Profile  user.Profile
	Override permission.Override
}

// Ref returns a bare MemberRef for id.
func Ref(id string) MemberRef {
	return MemberRef{ID: id}
}

// ParseMemberRef reads a raw reference: a bare string id or an object with "_id"/"id",
// user fields and an optional "user_room" override. ok is false for any other value.
func ParseMemberRef(raw any) (MemberRef, bool) {
	data, ok := reconcile.NormalizeIdentity(raw)
	if !ok {
		return MemberRef{}, false
	}
	return memberRefFromData(data), true
}

func memberRefFromData(data map[string]any) MemberRef {
	ref := MemberRef{
		ID:      reconcile.String(data, reconcile.KeyID),
		Profile: user.ProfileFromMap(data),
	}
	if userRoom, ok := data[KeyUserRoom].(map[string]any); ok {
		ref.Override = permission.OverrideFromMap(userRoom)
	}
	return ref
}
