/*
Package req binds gateway request bodies.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"anychat/internal/pkg/errs"
)

// MaxBodySize caps gateway request bodies (1 MB); grant batches are the largest payloads.
const MaxBodySize int64 = 1 << 20

// BindJSON decodes exactly one JSON document from the request body into dst.
// Unknown fields are rejected so typos in permission flags do not silently default to true.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
