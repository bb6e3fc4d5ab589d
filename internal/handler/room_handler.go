package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"anychat/internal/app/permission"
	"anychat/internal/app/room"
	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/logx"
	"anychat/internal/pkg/req"
	"anychat/internal/pkg/resp"
)

// GrantInput is the body of a grant request. Each member is an object with an id, optional
// can_* flags (omitted flags default to true) and an optional expire in seconds.
type GrantInput struct {
	Members []map[string]any `json:"members"`
}

// HandleGrant mints permission tokens for a batch of members of one room. The batch is
// all-or-nothing: a member without an id fails the request before any token is minted.
func HandleGrant(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		var input GrantInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if len(input.Members) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		members := make([]permission.Member, 0, len(input.Members))
		for _, m := range input.Members {
			members = append(members, permission.MemberFromMap(m))
		}

		c := deps.Client
		bundles, err := permission.NewGrantor(c.MintIssuer(), c.Identity, roomID).SetTTL(c.GrantTTL).GrantAll(members)
		if err != nil {
			respondErr(w, r, err)
			return
		}

		logx.Info("Room grants minted", "room_id", roomID, "members", len(bundles))
		resp.RespondSuccess(w, r, bundles)
	}
}

// HandleSyncPermissions reloads a room from the provider and returns it with a freshly minted
// grant on every member. Reconciling a bound, persisted room mints the grants.
func HandleSyncPermissions(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		rm := room.New(map[string]any{"id": roomID}).SetClient(deps.Client)
		if err := rm.SyncOrCreate(r.Context()); err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, rm.Attributes())
	}
}
