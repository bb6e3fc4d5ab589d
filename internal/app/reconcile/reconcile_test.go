package reconcile_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anychat/internal/app/client"
	"anychat/internal/app/reconcile"
	"anychat/internal/app/transport/transporttest"
	"anychat/internal/pkg/auth/jwt"
	"anychat/internal/pkg/errs"
)

// thing is a minimal entity: an id, a name and a nested list re-keyed by Normalize.
type thing struct {
	ID        string
	Name      string
	Parts     []string
	rejectAll bool
}

func (t *thing) Kind() string                  { return "thing" }
func (t *thing) Endpoint() string              { return "/api/thing" }
func (t *thing) Identifier() string            { return t.ID }
func (t *thing) CreatePayload() map[string]any { return map[string]any{"name": t.Name} }
func (t *thing) UpdatePayload() map[string]any {
	return map[string]any{"name": t.Name, "id": t.ID}
}

func (t *thing) Normalize(data map[string]any) {
	parts := reconcile.NormalizeList(data["parts"])
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, reconcile.String(p, "id"))
	}
	data["parts"] = ids
}

func (t *thing) Apply(data map[string]any) error {
	if t.rejectAll {
		return errors.New("rejected")
	}
	t.ID = reconcile.String(data, "id")
	t.Name = reconcile.String(data, "name")
	t.Parts, _ = data["parts"].([]string)
	return nil
}

func bound(rec *transporttest.Recorder) *client.Client {
	return client.New(jwt.ClientIdentity{ClientID: "client-1", ClientSecret: "s3cret"}, rec)
}

func TestUpsertBranchSelection(t *testing.T) {
	rec := transporttest.New(
		transporttest.OK(map[string]any{"_id": "t1", "name": "created"}),
		transporttest.OK(map[string]any{"_id": "t1", "name": "updated"}),
	)
	r := reconcile.New[*thing](bound(rec))
	e := &thing{Name: "new"}

	require.NoError(t, r.Upsert(context.Background(), e))
	assert.Equal(t, "t1", e.ID)
	assert.Equal(t, "created", e.Name)

	e.Name = "renamed"
	require.NoError(t, r.Upsert(context.Background(), e))
	assert.Equal(t, "updated", e.Name)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/api/thing", calls[0].URI)
	assert.Equal(t, map[string]any{"name": "new"}, calls[0].Data)
	assert.Equal(t, http.MethodPut, calls[1].Method)
	assert.Equal(t, "/api/thing/t1", calls[1].URI)
	assert.Equal(t, "renamed", calls[1].Data["name"])
}

func TestSyncOrCreateFetchesWhenPersisted(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{
		"_id":   "t1",
		"name":  "remote",
		"parts": []any{"p1", map[string]any{"_id": "p2"}},
	}))
	e := &thing{ID: "t1", Name: "local"}

	require.NoError(t, reconcile.New[*thing](bound(rec)).SyncOrCreate(context.Background(), e))

	assert.Equal(t, http.MethodGet, rec.Last().Method)
	assert.Equal(t, "/api/thing/t1", rec.Last().URI)
	assert.Nil(t, rec.Last().Data)
	assert.Equal(t, "remote", e.Name)
	assert.Equal(t, []string{"p1", "p2"}, e.Parts)
}

func TestSyncOrCreateCreatesWithoutID(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{"id": "t9"}))
	e := &thing{Name: "n"}

	require.NoError(t, reconcile.New[*thing](bound(rec)).SyncOrCreate(context.Background(), e))
	assert.Equal(t, http.MethodPost, rec.Last().Method)
	assert.Equal(t, "t9", e.ID)
}

func TestRemoteFailureLeavesEntityUntouched(t *testing.T) {
	rec := transporttest.New(transporttest.Fail(http.StatusNotFound, map[string]any{"message": "gone"}))
	e := &thing{ID: "t1", Name: "local"}

	err := reconcile.New[*thing](bound(rec)).SyncOrCreate(context.Background(), e)
	require.Error(t, err)

	custom := errs.As(err)
	assert.Equal(t, errs.ErrRemoteOperationFailed, custom.Code)
	assert.Equal(t, http.StatusNotFound, custom.RemoteStatus)
	assert.Equal(t, "get thing", custom.Operation)
	assert.Equal(t, &thing{ID: "t1", Name: "local"}, e)
}

func TestResponseWithoutIDIsNotFound(t *testing.T) {
	for name, body := range map[string]any{
		"no id":   map[string]any{"name": "x"},
		"empty":   nil,
		"string":  "t1",
		"list":    []any{map[string]any{"_id": "t1"}},
		"blankid": map[string]any{"_id": "", "id": ""},
	} {
		t.Run(name, func(t *testing.T) {
			rec := transporttest.New(transporttest.OK(body))
			e := &thing{Name: "new"}

			err := reconcile.New[*thing](bound(rec)).Upsert(context.Background(), e)
			assert.True(t, errs.IsCode(err, errs.ErrEntityNotFound))
			assert.Equal(t, &thing{Name: "new"}, e)
		})
	}
}

func TestApplyErrorPropagates(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{"_id": "t1"}))
	e := &thing{Name: "n", rejectAll: true}

	err := reconcile.New[*thing](bound(rec)).Upsert(context.Background(), e)
	assert.EqualError(t, err, "rejected")
	assert.Empty(t, e.ID)
}

func TestUnboundClient(t *testing.T) {
	e := &thing{Name: "n"}
	err := reconcile.New[*thing](nil).Upsert(context.Background(), e)
	assert.True(t, errs.IsCode(err, errs.ErrClientNotConfigured))

	unsigned := client.New(jwt.ClientIdentity{ClientID: "client-1"}, transporttest.New())
	err = reconcile.New[*thing](unsigned).SyncOrCreate(context.Background(), e)
	assert.True(t, errs.IsCode(err, errs.ErrClientNotConfigured))
}

func TestDelete(t *testing.T) {
	rec := transporttest.New()
	r := reconcile.New[*thing](bound(rec))

	_, err := r.Delete(context.Background(), &thing{})
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrMissingIdentifier))
	assert.Equal(t, "Thing id is required.", errs.As(err).Message)
	assert.Empty(t, rec.Calls())

	body, err := r.Delete(context.Background(), &thing{ID: "a/b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, body)
	assert.Equal(t, http.MethodDelete, rec.Last().Method)
	assert.Equal(t, "/api/thing/a%2Fb", rec.Last().URI)
}

func TestList(t *testing.T) {
	rec := transporttest.New(transporttest.OK(map[string]any{
		"data": []any{map[string]any{"_id": "t1"}, "t2", 3},
	}))

	ids, err := reconcile.List(context.Background(), bound(rec), "list things", "/api/thing",
		func(data map[string]any) (string, error) {
			return reconcile.String(data, "id"), nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids)
	assert.Equal(t, http.MethodGet, rec.Last().Method)
}
