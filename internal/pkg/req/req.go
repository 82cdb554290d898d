/*
Package req provides helpers for parsing HTTP request bodies.

It binds JSON payloads to destination structs and rejects malformed or
oversized input with coded errors.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"gemchat/internal/pkg/errs"
)

// MaxBodyBytes caps the size of any JSON request body (1 MB).
const MaxBodyBytes int64 = 1 << 20

// BindJSON binds the JSON body of r to dst. Unknown fields and trailing
// content are rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
