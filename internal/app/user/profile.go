package user

import "anychat/internal/app/reconcile"

// Gender is one of the provider's gender values.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Genders lists the accepted values.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderOther}
}

// Valid reports whether g is one of Genders. The empty value is not valid.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Wire names of the recognized profile fields.
const (
	KeyEmail    = "email"
	KeyPhone    = "phone"
	KeyAvatar   = "avatar"
	KeyFullName = "full_name"
	KeyGender   = "gender"
)

// Profile is the descriptive part of a user, shared by User and room members.
type Profile struct {
	Email    string
	Phone    string
	Avatar   string
	FullName string
	Gender   Gender

	// Extra keeps response fields the SDK does not model, so they survive a round trip.
	Extra map[string]any
}

// reservedKeys never land in Extra: identity keys and the nested permission object.
var reservedKeys = map[string]struct{}{
	reconcile.KeyID:       {},
	reconcile.KeyRemoteID: {},
	"user_room":           {},
}

// ProfileFromMap reads the recognized keys of m and moves the rest into Extra.
func ProfileFromMap(m map[string]any) Profile {
	p := Profile{
		Email:    reconcile.String(m, KeyEmail),
		Phone:    reconcile.String(m, KeyPhone),
		Avatar:   reconcile.String(m, KeyAvatar),
		FullName: reconcile.String(m, KeyFullName),
		Gender:   Gender(reconcile.String(m, KeyGender)),
	}
	for k, v := range m {
		switch k {
		case KeyEmail, KeyPhone, KeyAvatar, KeyFullName, KeyGender:
			continue
		}
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return p
}

// Merge returns p updated with every non-empty field of next (last write wins per field).
func (p Profile) Merge(next Profile) Profile {
	out := p
	if next.Email != "" {
		out.Email = next.Email
	}
	if next.Phone != "" {
		out.Phone = next.Phone
	}
	if next.Avatar != "" {
		out.Avatar = next.Avatar
	}
	if next.FullName != "" {
		out.FullName = next.FullName
	}
	if next.Gender != "" {
		out.Gender = next.Gender
	}
	if len(next.Extra) > 0 {
		extra := make(map[string]any, len(p.Extra)+len(next.Extra))
		for k, v := range p.Extra {
			extra[k] = v
		}
		for k, v := range next.Extra {
			extra[k] = v
		}
		out.Extra = extra
	}
	return out
}

// Map returns the profile in wire shape; unset fields are null. Extra keys come first so
// recognized fields always win.
func (p Profile) Map() map[string]any {
	m := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		m[k] = v
	}
	m[KeyEmail] = nullable(p.Email)
	m[KeyPhone] = nullable(p.Phone)
	m[KeyAvatar] = nullable(p.Avatar)
	m[KeyFullName] = nullable(p.FullName)
	m[KeyGender] = nullable(string(p.Gender))
	return m
}

// payload is the create/update body: recognized fields only.
func (p Profile) payload() map[string]any {
	return map[string]any{
		KeyEmail:    nullable(p.Email),
		KeyPhone:    nullable(p.Phone),
		KeyAvatar:   nullable(p.Avatar),
		KeyFullName: nullable(p.FullName),
		KeyGender:   nullable(string(p.Gender)),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
