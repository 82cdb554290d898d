/*
Package handler provides the HTTP handlers and routing setup for the
gemchat server.

This file contains the avatar endpoints: presigning a direct upload to
object storage and committing the uploaded key to the account.
*/
package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"gemchat/internal/app/session"
	"gemchat/internal/pkg/errs"
	"gemchat/internal/pkg/logx"
	"gemchat/internal/pkg/req"
	"gemchat/internal/pkg/resp"
)

const (
	// MaxAvatarBytes caps the size of an uploaded avatar (2 MB).
	MaxAvatarBytes int64 = 2 << 20

	// presignExpiry is how long a presigned upload URL stays valid.
	presignExpiry = 15 * time.Minute
)

// allowedAvatarTypes maps permitted file extensions to their expected
// MIME types.
var allowedAvatarTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

type PresignAvatarInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatar validates the upload request and returns a
// presigned URL plus the object key the client must commit afterwards.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := resolveIdentity(r, deps)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext := strings.ToLower(filepath.Ext(input.FileName))
		expectedMime, ok := allowedAvatarTypes[ext]
		if !ok || input.MimeType != expectedMime {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileTypeInvalid))
			return
		}

		if input.FileSize <= 0 || input.FileSize > MaxAvatarBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileSizeTooLarge))
			return
		}

		key := fmt.Sprintf("avatars/%s/%s%s", identity.Username, uuid.New().String(), ext)

		uploadURL, err := deps.Storage.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, presignExpiry)
		if err != nil {
			logx.Error(err, "failed to presign avatar upload", "username", identity.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"key":       key,
		})
	}
}

type CommitAvatarInput struct {
	Key string `json:"key"`
}

// HandleCommitAvatar records the uploaded object key as the account's
// avatar, rotates the session so it carries the new identity, and
// deletes the previous avatar object in the background.
func HandleCommitAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := resolveIdentity(r, deps)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input CommitAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// the key must sit under the caller's own avatar prefix
		expectedPrefix := fmt.Sprintf("avatars/%s/", identity.Username)
		if !strings.HasPrefix(input.Key, expectedPrefix) || strings.Contains(input.Key, "..") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		acc, err := deps.Accounts.GetByUsername(r.Context(), identity.Username)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		oldKey := acc.Avatar

		if err := deps.Accounts.UpdateAvatar(r.Context(), identity.Username, input.Key); err != nil {
			logx.Error(err, "failed to update avatar", "username", identity.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		updated := *identity
		updated.Avatar = input.Key

		// rotate the session so later validations see the new avatar
		if cookie, cookieErr := r.Cookie(session.CookieName); cookieErr == nil {
			if delErr := deps.Sessions.Delete(r.Context(), cookie.Value); delErr != nil {
				logx.Error(delErr, "failed to delete stale session during avatar commit")
			}
		}
		token, err := deps.Sessions.Create(r.Context(), updated)
		if err != nil {
			logx.Error(err, "failed to rotate session after avatar commit", "username", identity.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		setSessionCookie(w, deps, token)

		if deps.Storage != nil && oldKey != "" && strings.HasPrefix(oldKey, expectedPrefix) && oldKey != input.Key {
			go func(k string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.Storage.Delete(ctx, k)
			}(oldKey)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": updated,
		})
	}
}
