package room_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anychat/internal/app/client"
	"anychat/internal/app/permission"
	"anychat/internal/app/room"
	"anychat/internal/app/transport/transporttest"
	"anychat/internal/app/user"
	"anychat/internal/pkg/auth/jwt"
	"anychat/internal/pkg/errs"
)

var identity = jwt.ClientIdentity{ClientID: "client-1", ClientSecret: "s3cret"}

func bound(rec *transporttest.Recorder) *client.Client {
	return client.New(identity, rec)
}

func ref(t *testing.T, raw any) room.MemberRef {
	t.Helper()
	r, ok := room.ParseMemberRef(raw)
	require.True(t, ok)
	return r
}

func grantClaims(t *testing.T, m room.Member) jwt.Claims {
	t.Helper()
	require.True(t, m.Permission.HasToken(), "member %s has no token", m.ID)
	claims, err := jwt.NewIssuer().Parse(m.Permission.AccessToken, identity.ClientSecret)
	require.NoError(t, err)
	return claims
}

func TestAddMemberDefaultsToAllFlags(t *testing.T) {
	r := room.New(nil)
	require.NoError(t, r.AddMember(room.Ref("u1"), permission.AllowAll()))

	m, ok := r.Member("u1")
	require.True(t, ok)
	assert.Equal(t, permission.AllowAll(), m.Permission.Flags())
	assert.Equal(t, "u1", m.Permission.UserID)
}

func TestAddMemberNestedOverride(t *testing.T) {
	r := room.New(nil)
	require.NoError(t, r.AddMember(ref(t, map[string]any{
		"id":        "u1",
		"user_room": map[string]any{"can_edit": false},
	}), permission.AllowAll()))

	m, _ := r.Member("u1")
	assert.Equal(t, permission.Flags{CanCreate: true, CanView: true, CanDelete: true, CanEdit: false}, m.Permission.Flags())
}

func TestAddMemberOverrideBeatsPassedDefault(t *testing.T) {
	r := room.New(nil)
	defaults := permission.Flags{CanView: true}
	require.NoError(t, r.AddMember(ref(t, map[string]any{
		"_id":       "u1",
		"user_room": map[string]any{"can_create": true},
	}), defaults))

	m, _ := r.Member("u1")
	assert.Equal(t, permission.Flags{CanView: true, CanCreate: true}, m.Permission.Flags())
}

func TestAddMemberDefersTokenUntilPersisted(t *testing.T) {
	r := room.New(map[string]any{"name": "draft"}).SetClient(bound(transporttest.New()))
	require.NoError(t, r.AddMember(room.Ref("u1"), permission.AllowAll()))

	m, _ := r.Member("u1")
	assert.False(t, m.Permission.HasToken())
	assert.Empty(t, m.Permission.RoomID)
	assert.NotContains(t, m.Attributes()["user_room"], permission.KeyAccessToken)
}

func TestAddMemberDefersTokenWithoutClient(t *testing.T) {
	r := room.New(map[string]any{"_id": "r1"})
	require.NoError(t, r.AddMember(room.Ref("u1"), permission.AllowAll()))

	m, _ := r.Member("u1")
	assert.False(t, m.Permission.HasToken())
}

func TestAddMemberMintsWhenBoundAndPersisted(t *testing.T) {
	r := room.New(map[string]any{"_id": "r1"}).SetClient(bound(transporttest.New()))
	require.NoError(t, r.AddMember(ref(t, map[string]any{
		"id":        "u1",
		"user_room": map[string]any{"can_delete": false},
	}), permission.AllowAll()))

	m, _ := r.Member("u1")
	claims := grantClaims(t, m)
	assert.Equal(t, "r1", claims[permission.KeyRoomID])
	assert.Equal(t, "u1", claims[permission.KeyUserID])
	assert.Equal(t, false, claims[permission.KeyCanDelete])
	assert.Equal(t, true, claims[permission.KeyCanEdit])
}

func TestAddMemberDeduplicates(t *testing.T) {
	r := room.New(nil)
	require.NoError(t, r.AddMembers([]room.MemberRef{
		ref(t, map[string]any{"id": "u1", "email": "a@x.com"}),
		room.Ref("u2"),
		ref(t, map[string]any{"id": "u1", "full_name": "Ann", "user_room": map[string]any{"can_view": false}}),
	}))

	require.Len(t, r.Members, 2)
	assert.Equal(t, []string{"u1", "u2"}, r.MemberIDs())

	m, _ := r.Member("u1")
	assert.Equal(t, "a@x.com", m.Profile.Email)
	assert.Equal(t, "Ann", m.Profile.FullName)
	assert.False(t, m.Permission.CanView)
}

func TestMembersWithoutIDAreNeverMerged(t *testing.T) {
	r := room.New(nil)
	guest := room.MemberRef{Profile: user.Profile{FullName: "guest"}}
	require.NoError(t, r.AddMembers([]room.MemberRef{guest, guest}))

	assert.Len(t, r.Members, 2)
	assert.Empty(t, r.MemberIDs())
}

func TestAddMembersByIDOnlySkipsExisting(t *testing.T) {
	r := room.New(nil)
	require.NoError(t, r.AddMember(ref(t, map[string]any{
		"id":        "u1",
		"user_room": map[string]any{"can_edit": false},
	}), permission.AllowAll()))

	require.NoError(t, r.AddMembersByIDOnly([]string{"u1", "u2", "", "u2"}))

	assert.Equal(t, []string{"u1", "u2"}, r.MemberIDs())
	m, _ := r.Member("u1")
	assert.False(t, m.Permission.CanEdit)
}

func TestSyncPermissionsRequiresClient(t *testing.T) {
	r := room.New(map[string]any{"_id": "r1", "users": []any{"u1"}})
	err := r.SyncPermissions()
	assert.True(t, errs.IsCode(err, errs.ErrClientNotConfigured))
}

func TestSyncPermissionsKeepsFlags(t *testing.T) {
	r := room.New(map[string]any{
		"_id":   "r1",
		"users": []any{map[string]any{"_id": "u1", "user_room": map[string]any{"can_edit": false}}, "u2"},
	})
	r.SetClient(bound(transporttest.New()))

	require.NoError(t, r.SyncPermissions())

	u1, _ := r.Member("u1")
	assert.Equal(t, false, grantClaims(t, u1)[permission.KeyCanEdit])
	u2, _ := r.Member("u2")
	assert.Equal(t, true, grantClaims(t, u2)[permission.KeyCanEdit])
}

func TestUpsertCreatesAndMintsForResponseMembers(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{
		"_id":   "r1",
		"title": "Team",
		"user_ids": []any{
			"u1",
			map[string]any{"_id": "u2", "full_name": "Bob", "user_room": map[string]any{"can_delete": false}},
		},
	}))
	r := room.New(map[string]any{"name": "Team"}).SetClient(bound(rec))
	require.NoError(t, r.AddMember(ref(t, map[string]any{
		"id":        "u1",
		"user_room": map[string]any{"can_edit": false},
	}), permission.AllowAll()))
	require.NoError(t, r.SetDescriptionConfig("tpl-1", map[string]any{"$title": "Hello"}))

	require.NoError(t, r.Upsert(context.Background()))

	call := rec.Last()
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/api/room", call.URI)
	assert.Equal(t, []string{"u1"}, call.Data["user_ids"])
	assert.Equal(t, map[string]any{"template_id": "tpl-1", "template_value": map[string]any{"$title": "Hello"}}, call.Data["description"])
	assert.NotContains(t, call.Data, "pins")

	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "Team", r.Name)
	assert.Equal(t, []string{"u1", "u2"}, r.MemberIDs())
	require.NotNil(t, r.DescriptionConfig)
	assert.Equal(t, "tpl-1", r.DescriptionConfig.TemplateID)

	u1, _ := r.Member("u1")
	claims := grantClaims(t, u1)
	assert.Equal(t, "r1", claims[permission.KeyRoomID])
	assert.Equal(t, false, claims[permission.KeyCanEdit], "known member keeps its flags")

	u2, _ := r.Member("u2")
	assert.Equal(t, "Bob", u2.Profile.FullName)
	assert.Equal(t, false, grantClaims(t, u2)[permission.KeyCanDelete])
}

func TestSyncKeepsNumericMemberIDs(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{
		"_id":   "r1",
		"users": []any{"u1", float64(7), map[string]any{"_id": float64(8)}, nil},
	}))
	r := room.New(map[string]any{"_id": "r1"}).SetClient(bound(rec))

	require.NoError(t, r.SyncOrCreate(context.Background()))

	assert.Equal(t, []string{"u1", "7", "8"}, r.MemberIDs())
	m, _ := r.Member("7")
	assert.Equal(t, "7", grantClaims(t, m)[permission.KeyUserID])
}

func TestUpsertUpdateSendsPins(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{"_id": "r1", "name": "n", "pins": []any{"m1"}}))
	r := room.New(map[string]any{"_id": "r1", "name": "n", "description": "plain"}).SetClient(bound(rec))
	r.Pins = []any{"m1"}

	require.NoError(t, r.Upsert(context.Background()))

	call := rec.Last()
	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, "/api/room/r1", call.URI)
	assert.Equal(t, []any{"m1"}, call.Data["pins"])
	assert.Equal(t, "plain", call.Data["description"])
	assert.Equal(t, []any{"m1"}, r.Pins)
}

func TestResponseWithoutMembersKeepsLocalOnes(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{"_id": "r1", "name": "n"}))
	r := room.New(map[string]any{"name": "n", "users": []string{"u1"}}).SetClient(bound(rec))

	m, _ := r.Member("u1")
	require.False(t, m.Permission.HasToken())

	require.NoError(t, r.Upsert(context.Background()))

	m, _ = r.Member("u1")
	assert.Equal(t, "r1", grantClaims(t, m)[permission.KeyRoomID])
}

func TestSyncOrCreateFailureLeavesRoomUnchanged(t *testing.T) {
	rec := transporttest.New(transporttest.Fail(http.StatusNotFound, map[string]any{"message": "missing"}))
	r := room.New(map[string]any{"_id": "r1", "name": "n", "users": []any{"u1"}}).SetClient(bound(rec))
	before := *r
	beforeMembers := append([]room.Member(nil), r.Members...)

	err := r.SyncOrCreate(context.Background())
	require.Error(t, err)

	custom := errs.As(err)
	assert.Equal(t, errs.ErrRemoteOperationFailed, custom.Code)
	assert.Equal(t, http.StatusNotFound, custom.RemoteStatus)
	assert.Equal(t, http.MethodGet, rec.Last().Method)
	assert.Equal(t, "/api/room/r1", rec.Last().URI)

	assert.Equal(t, before, *r)
	assert.Equal(t, beforeMembers, r.Members)
}

func TestSyncOrCreateWithoutIDInResponse(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{"name": "ghost"}))
	r := room.New(map[string]any{"_id": "r1", "name": "n"}).SetClient(bound(rec))

	err := r.SyncOrCreate(context.Background())
	assert.True(t, errs.IsCode(err, errs.ErrEntityNotFound))
	assert.Equal(t, "n", r.Name)
}

func TestListMembersWithFullProfile(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{"_id": "u1", "full_name": "Ann", "email": "a@x.com"}))
	r := room.New(map[string]any{"_id": "r1"}).SetClient(bound(rec))
	require.NoError(t, r.AddMember(ref(t, map[string]any{"id": "u1", "phone": "555"}), permission.AllowAll()))
	require.NoError(t, r.AddMember(room.MemberRef{Profile: user.Profile{FullName: "guest"}}, permission.AllowAll()))

	members, err := r.ListMembersWithFullProfile(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "/api/user/u1", rec.Last().URI)
	assert.Equal(t, http.MethodGet, rec.Last().Method)
	assert.Len(t, rec.Calls(), 1)

	assert.Equal(t, "Ann", members[0].Profile.FullName)
	assert.Equal(t, "555", members[0].Profile.Phone)
	assert.True(t, members[0].Permission.HasToken())
	assert.Equal(t, "guest", members[1].Profile.FullName)

	local, _ := r.Member("u1")
	assert.Empty(t, local.Profile.FullName, "room members are not modified")
}

func TestListMembersWithFullProfileRequiresClient(t *testing.T) {
	_, err := room.New(map[string]any{"_id": "r1"}).ListMembersWithFullProfile(context.Background())
	assert.True(t, errs.IsCode(err, errs.ErrClientNotConfigured))
}

func TestSetDescriptionConfigRequiresTemplate(t *testing.T) {
	r := room.New(nil)
	err := r.SetDescriptionConfig("", map[string]any{"$title": "x"})
	assert.True(t, errs.IsCode(err, errs.ErrInvalidDescriptionConfig))
	assert.Nil(t, r.DescriptionConfig)
}

func TestListings(t *testing.T) {
	rec := transporttest.New(
		transporttest.OK(map[string]any{"data": []any{
			map[string]any{"_id": "r1", "user_ids": []any{map[string]any{"_id": "u1"}}},
			map[string]any{"_id": "r2", "title": "Legacy"},
		}}),
		transporttest.OK([]any{map[string]any{"_id": "r9"}, map[string]any{"_id": "r3"}}),
		transporttest.OK([]any{}),
	)
	c := bound(rec)

	rooms, err := room.List(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, []string{"u1"}, rooms[0].MemberIDs())
	assert.Equal(t, "Legacy", rooms[1].Name)
	assert.Nil(t, rooms[0].Client())
	m, _ := rooms[0].Member("u1")
	assert.False(t, m.Permission.HasToken())

	last, err := room.LastRoomWithNewMessage(context.Background(), c, "u 1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "r9", last.ID)
	assert.Equal(t, "/api/room/list-rooms?user_id=u+1", rec.Last().URI)

	none, err := room.LastRoomWithNewMessage(context.Background(), c, "u2")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = room.ListUserRooms(context.Background(), c, "")
	assert.True(t, errs.IsCode(err, errs.ErrMissingUserID))
}

func TestAttributes(t *testing.T) {
	r := room.New(map[string]any{"_id": "r1", "name": "n", "users": []any{"u1"}})
	attrs := r.Attributes()

	assert.Equal(t, "r1", attrs["id"])
	assert.Equal(t, []any{}, attrs["pins"])
	users := attrs["users"].([]any)
	require.Len(t, users, 1)
	member := users[0].(map[string]any)
	assert.Equal(t, "u1", member["id"])
	assert.Equal(t, "u1", member["user_room"].(map[string]any)["user_id"])
}
