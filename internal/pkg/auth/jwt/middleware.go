package jwt

import (
	"context"
	"net/http"
	"strings"

	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/resp"
)

type contextKey string

const (
	// ContextAuthPayloadKey stores the parsed *Payload in the request context.
	ContextAuthPayloadKey contextKey = "auth_payload"

	// TokenQueryParam carries the bearer credential for browser websocket handshakes,
	// which cannot set an Authorization header.
	TokenQueryParam = "token"
)

// TokenFromRequest returns the bearer credential from the Authorization header,
// falling back to the token query parameter.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	return r.URL.Query().Get(TokenQueryParam)
}

// IdentityExtractorMiddleware validates the bearer credential when present and
// injects its Payload into the context. Missing or invalid tokens leave the
// request anonymous; RequireIdentity enforces authentication.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPayloadFromContext returns the authenticated Payload, or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}
