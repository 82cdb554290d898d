/*
Package handler provides the HTTP handlers and routing setup for the
gemchat server.

This file holds the session cookie helpers shared by the auth, user,
and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"gemchat/internal/app/session"
	"gemchat/internal/app/user"
	"gemchat/internal/pkg/logx"
	"gemchat/internal/pkg/randx"
)

// setSessionCookie attaches the session token to the response. The
// cookie lifetime matches the sliding inactivity window; every
// successful validation re-issues it.
func setSessionCookie(w http.ResponseWriter, deps *AppDeps, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(deps.Config.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   deps.Config.Environment != "development",
	})
}

// clearSessionCookie expires the session cookie on the client.
func clearSessionCookie(w http.ResponseWriter, deps *AppDeps) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   deps.Config.Environment != "development",
	})
}

// resolveIdentity looks up the request's session cookie and returns
// the identity it carries, or nil when the request has no valid
// session. The lookup refreshes the session's sliding window.
func resolveIdentity(r *http.Request, deps *AppDeps) *user.User {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}

	if !randx.IsValidSessionToken(cookie.Value) {
		logx.Warn("Request carried a malformed session token.")
		return nil
	}

	identity, err := deps.Sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		logx.Error(err, "Session lookup failed")
		return nil
	}

	return identity
}
