package handler

import (
	"net/http"
	"strings"

	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/req"
	"anychat/internal/pkg/resp"
)

// Avatar owner types.
const (
	OwnerUser = "user"
	OwnerRoom = "room"
)

// PresignAvatarInput defines the JSON input for an avatar upload URL.
type PresignAvatarInput struct {
	OwnerType string `json:"owner_type"`
	OwnerID   string `json:"owner_id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	FileSize  int64  `json:"file_size"`
}

// HandlePresignAvatar returns a time-limited upload URL for a user or room avatar and the
// URL to store on the entity once the upload finished.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Avatars == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFeatureDisabled, "Avatar storage"))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var owner string
		switch input.OwnerType {
		case OwnerUser:
			owner = "users/" + input.OwnerID
		case OwnerRoom:
			owner = "rooms/" + input.OwnerID
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if input.OwnerID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingIdentifier, "Owner"))
			return
		}
		if strings.ContainsAny(input.OwnerID, `/\`) || strings.Contains(input.OwnerID, "..") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		upload, err := deps.Avatars.Presign(r.Context(), owner, input.FileName, input.MimeType, input.FileSize)
		if err != nil {
			respondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, upload)
	}
}
