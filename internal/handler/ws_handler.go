/*
Package handler provides the HTTP surface of the chat backend: the websocket
endpoint feeding the presence engine and the REST reads for history and presence.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"guildchat/internal/app/chat"
	"guildchat/internal/pkg/auth/jwt"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/limiter"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/randx"
	"guildchat/internal/pkg/req"
	"guildchat/internal/pkg/resp"
)

const (
	// SessionHeader carries the client-chosen session identifier of the handshake.
	SessionHeader = "X-Session-ID"

	// SessionQueryParam is the fallback location of the session identifier.
	SessionQueryParam = "sessionId"

	// UsernameQueryParam optionally overrides the display name carried by the token.
	UsernameQueryParam = "username"
)

// HandleWebSocket authenticates the handshake, upgrades the connection, registers
// it with the Hub and runs its pumps until the peer goes away.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		payload, err := jwt.ParseToken(jwt.TokenFromRequest(r), deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket connection rejected: invalid credential.", "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		identity := payload.Identity()
		identity.Username = req.FirstNonEmpty(identity.Username, r.URL.Query().Get(UsernameQueryParam))

		sessionID := req.FirstNonEmpty(chat.UnknownSession,
			r.Header.Get(SessionHeader),
			r.URL.Query().Get(SessionQueryParam),
		)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket", "user_id", identity.ID)
			return
		}

		connID := randx.ConnectionID()
		peer, err := deps.Hub.Connect(connID, identity, sessionID)
		if err != nil {
			logx.Warn("WebSocket connection refused: hub unavailable.", "user_id", identity.ID, "error", err.Error())
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"))
			_ = conn.Close()
			return
		}

		logx.Info("WebSocket connection established", "connection_id", connID, "user_id", identity.ID, "session_id", sessionID)

		client := chat.NewClient(deps.Hub, deps.Relay, conn, peer)

		go client.WritePump()

		client.ReadPump()
	}
}
