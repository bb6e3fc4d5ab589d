/*
Package permission computes per-user, per-room access flags and mints them into grant tokens.
*/
package permission

import (
	"strconv"
	"strings"
)

// Claim and wire names of the permission bundle.
const (
	KeyRoomID      = "room_id"
	KeyUserID      = "user_id"
	KeyCanEdit     = "can_edit"
	KeyCanDelete   = "can_delete"
	KeyCanView     = "can_view"
	KeyCanCreate   = "can_create"
	KeyAccessToken = "access_token"
	KeyExpire      = "expire"
)

// Flags are the capabilities one user holds in one room.
type Flags struct {
	CanCreate bool
	CanView   bool
	CanDelete bool
	CanEdit   bool
}

// AllowAll returns the default grant: every capability.
func AllowAll() Flags {
	return Flags{CanCreate: true, CanView: true, CanDelete: true, CanEdit: true}
}

// Override holds explicit per-flag choices; nil means "not specified".
type Override struct {
	CanCreate *bool
	CanView   *bool
	CanDelete *bool
	CanEdit   *bool
}

// Resolve applies o over defaults: an explicit override wins, otherwise the default stands.
func (o Override) Resolve(defaults Flags) Flags {
	out := defaults
	if o.CanCreate != nil {
		out.CanCreate = *o.CanCreate
	}
	if o.CanView != nil {
		out.CanView = *o.CanView
	}
	if o.CanDelete != nil {
		out.CanDelete = *o.CanDelete
	}
	if o.CanEdit != nil {
		out.CanEdit = *o.CanEdit
	}
	return out
}

// Pin returns an Override fixing every flag to f.
func Pin(f Flags) Override {
	return Override{
		CanCreate: boolPtr(f.CanCreate),
		CanView:   boolPtr(f.CanView),
		CanDelete: boolPtr(f.CanDelete),
		CanEdit:   boolPtr(f.CanEdit),
	}
}

// OverrideFromMap reads can_* keys from a user_room style object. Values that are not
// recognizable booleans are ignored rather than guessed.
func OverrideFromMap(m map[string]any) Override {
	return Override{
		CanCreate: parseBool(m[KeyCanCreate]),
		CanView:   parseBool(m[KeyCanView]),
		CanDelete: parseBool(m[KeyCanDelete]),
		CanEdit:   parseBool(m[KeyCanEdit]),
	}
}

func parseBool(v any) *bool {
	switch val := v.(type) {
	case bool:
		return boolPtr(val)
	case float64:
		return boolPtr(val != 0)
	case int:
		return boolPtr(val != 0)
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return boolPtr(b)
		}
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
