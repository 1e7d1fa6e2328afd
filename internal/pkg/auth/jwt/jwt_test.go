package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"guildchat/internal/app/user"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(&Payload{ID: "alice", Username: "Alice"}, testSecret, time.Hour)
	req.NoError(err)

	payload, err := ParseToken(token, testSecret)
	req.NoError(err)
	req.Equal(user.Identity{ID: "alice", Username: "Alice"}, payload.Identity())
	req.Equal(TokenIssuer, payload.Issuer)

	_, err = ParseToken(token, "other-secret")
	req.Error(err)
}

func TestParseToken_Rejects_Expired_And_Anonymous(t *testing.T) {
	req := require.New(t)

	expired, err := GenerateToken(&Payload{ID: "alice"}, testSecret, -time.Minute)
	req.NoError(err)
	_, err = ParseToken(expired, testSecret)
	req.Error(err)

	anonymous, err := GenerateToken(&Payload{Username: "nobody"}, testSecret, time.Hour)
	req.NoError(err)
	_, err = ParseToken(anonymous, testSecret)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestTokenFromRequest(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	req.Equal("from-query", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer from-header")
	req.Equal("from-header", TokenFromRequest(r))

	// A malformed header does not fall back to the query
	r.Header.Set("Authorization", "Basic abc")
	req.Empty(TokenFromRequest(r))
}

func TestRequireIdentity(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "alice", Username: "Alice"}, testSecret, time.Hour)
	require.NoError(t, err)

	var seen *Payload
	handler := IdentityExtractorMiddleware(testSecret)(RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPayloadFromContext(r)
		w.WriteHeader(http.StatusNoContent)
	})))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer garbage", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + token, status: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			seen = nil

			r := httptest.NewRequest(http.MethodGet, "/api/channels/general/presence", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			req.Equal(tc.status, w.Code)
			if tc.status == http.StatusNoContent {
				req.NotNil(seen)
				req.Equal("alice", seen.ID)
			}
		})
	}
}
