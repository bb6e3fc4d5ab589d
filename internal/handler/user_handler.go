package handler

import (
	"net/http"

	"anychat/internal/app/user"
	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/req"
	"anychat/internal/pkg/resp"
)

// UserTokenInput identifies the user a token is minted for.
type UserTokenInput struct {
	ID       string `json:"id"`
	FullName string `json:"full_name,omitempty"`

	// Sync reloads the user from the provider first, so the token carries the stored name.
	Sync bool `json:"sync,omitempty"`
}

// HandleUserToken mints a user token for the message provider's frontend SDK.
func HandleUserToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input UserTokenInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.ID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingUserID))
			return
		}

		u := user.New(map[string]any{"id": input.ID, user.KeyFullName: input.FullName}).SetClient(deps.Client)
		if input.Sync {
			if err := u.SyncOrCreate(r.Context()); err != nil {
				respondErr(w, r, err)
				return
			}
		}

		token, err := u.Token()
		if err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user_id":    u.ID,
			"token":      token,
			"expires_in": int64(deps.Client.TokenTTL.Seconds()),
		})
	}
}
