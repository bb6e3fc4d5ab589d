package room

import (
	"context"

	"anychat/internal/app/permission"
	"anychat/internal/app/reconcile"
	"anychat/internal/app/user"
)

// AddMember adds ref with defaults as the base flags; a "user_room" override on ref wins
// over defaults. A grant token is minted only when the room is bound, persisted and ref
// has an id; otherwise a placeholder bundle is attached. An existing member with the same
// id is merged in place: non-empty profile fields and the bundle are replaced.
func (r *Room) AddMember(ref MemberRef, defaults permission.Flags) error {
	flags := ref.Override.Resolve(defaults)

	bundle := permission.Placeholder(ref.ID, flags)
	if r.canGrant() && ref.ID != "" {
		granted, err := r.grantor().Grant(ref.ID, flags)
		if err != nil {
			return err
		}
		bundle = granted
	}

	r.put(Member{ID: ref.ID, Profile: ref.Profile, Permission: bundle})
	return nil
}

// AddMembers adds every ref with all flags granted by default, in input order.
// It stops at the first failure.
func (r *Room) AddMembers(refs []MemberRef) error {
	for _, ref := range refs {
		if err := r.AddMember(ref, permission.AllowAll()); err != nil {
			return err
		}
	}
	return nil
}

// AddMembersByIDOnly adds a bare member for every id not already in the room.
// Empty ids are ignored.
func (r *Room) AddMembersByIDOnly(ids []string) error {
	for _, id := range ids {
		if id == "" || r.indexOf(id) >= 0 {
			continue
		}
		if err := r.AddMember(Ref(id), permission.AllowAll()); err != nil {
			return err
		}
	}
	return nil
}

// SyncPermissions re-mints the grant of every member, keeping each member's current flags.
// It needs a live client binding. Members of an unpersisted room keep their placeholders.
// On error no member is changed.
func (r *Room) SyncPermissions() error {
	if err := r.client.Check(); err != nil {
		return err
	}
	if !r.Persisted() {
		return nil
	}

	batch := make([]permission.Member, 0, len(r.Members))
	for _, m := range r.Members {
		if m.ID == "" {
			continue
		}
		batch = append(batch, permission.Member{ID: m.ID, Override: permission.Pin(m.Permission.Flags())})
	}

	bundles, err := r.grantor().GrantAll(batch)
	if err != nil {
		return err
	}
	for i, m := range r.Members {
		if bundle, ok := bundles[m.ID]; ok {
			r.Members[i].Permission = bundle
		}
	}
	return nil
}

// ListMembersWithFullProfile fetches (or creates) the user behind every member and returns
// the members with the provider's profile merged in and their bundle kept. Members without
// an id are returned unchanged. The room itself is not modified.
func (r *Room) ListMembersWithFullProfile(ctx context.Context) ([]Member, error) {
	if err := r.client.Check(); err != nil {
		return nil, err
	}

	out := make([]Member, 0, len(r.Members))
	for _, m := range r.Members {
		if m.ID == "" {
			out = append(out, m)
			continue
		}

		u := user.New(map[string]any{reconcile.KeyID: m.ID}).SetClient(r.client)
		if err := u.SyncOrCreate(ctx); err != nil {
			return nil, err
		}

		out = append(out, Member{
			ID:         u.ID,
			Profile:    m.Profile.Merge(u.Profile),
			Permission: m.Permission,
		})
	}
	return out, nil
}

func (r *Room) canGrant() bool {
	return r.client.Configured() && r.Persisted()
}

func (r *Room) grantor() *permission.Grantor {
	return permission.NewGrantor(r.client.MintIssuer(), r.client.Identity, r.ID).SetTTL(r.client.GrantTTL)
}

// put inserts m or merges it into the member with the same id. Members without an id
// are always appended.
func (r *Room) put(m Member) {
	i := r.indexOf(m.ID)
	if i < 0 {
		r.Members = append(r.Members, m)
		return
	}
	existing := r.Members[i]
	existing.Profile = existing.Profile.Merge(m.Profile)
	existing.Permission = m.Permission
	r.Members[i] = existing
}
