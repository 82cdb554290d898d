/*
Package handler provides the HTTP handlers and routing setup for the
gemchat server.

This file contains the WebSocket endpoint: it rate-limits the upgrade,
bridges the request's session to an identity (or leaves the connection
anonymous), upgrades the transport, and starts the client lifecycle.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"gemchat/internal/app/chat"
	"gemchat/internal/pkg/errs"
	"gemchat/internal/pkg/limiter"
	"gemchat/internal/pkg/logx"
	"gemchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket
// connection requests. The identity is captured once, here; later
// session changes never affect an already-open connection.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		// a missing or expired session is not an error: the connection
		// proceeds anonymously and authenticated-only actions are dropped
		identity := resolveIdentity(r, deps)

		username := "anonymous"
		if identity != nil {
			username = identity.Username
		}

		logx.Info("Attempting to upgrade connection", "username", username)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, identity)

		go client.WritePump()

		logx.Info("WebSocket connection established and client registered", "username", username)

		deps.Hub.RegisterClient(client)

		client.ReadPump()
	}
}
