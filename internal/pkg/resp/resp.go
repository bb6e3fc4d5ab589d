/*
Package resp writes the token gateway's JSON responses.

Every response uses the same envelope: a business code (0 for success), a message and
an optional data payload, mirroring the success/error envelope the SDK receives from the
message provider.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/logx"
)

// JSONResponse is the gateway response envelope.
type JSONResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON sets the Content-Type and writes payload with httpStatus.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	_, _ = w.Write(response)
}

// RespondSuccess writes a 200 envelope with data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondError writes customErr using its HTTP status. Remote failures expose the
// provider status and body so callers can tell provider errors from gateway errors.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	}
	if customErr.Code == errs.ErrRemoteOperationFailed {
		res.Data = map[string]any{
			"operation":     customErr.Operation,
			"remote_status": customErr.RemoteStatus,
			"body":          customErr.Body,
		}
	}

	RespondJSON(w, r, customErr.Status, res)
}
