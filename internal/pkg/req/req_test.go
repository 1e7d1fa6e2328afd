package req

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"guildchat/internal/pkg/errs"
)

func TestQueryInt(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		want    int
		errCode int
	}{
		{name: "missing uses default", query: "", want: 50},
		{name: "explicit", query: "?limit=7", want: 7},
		{name: "clamped to max", query: "?limit=1000", want: 200},
		{name: "zero rejected", query: "?limit=0", errCode: errs.ErrInvalidParams},
		{name: "negative rejected", query: "?limit=-3", errCode: errs.ErrInvalidParams},
		{name: "non numeric rejected", query: "?limit=abc", errCode: errs.ErrInvalidParams},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			r := httptest.NewRequest("GET", "/messages"+tc.query, nil)

			got, customErr := QueryInt(r, "limit", 50, 200)

			if tc.errCode != 0 {
				req.NotNil(customErr)
				req.Equal(tc.errCode, customErr.Code)
				return
			}
			req.Nil(customErr)
			req.Equal(tc.want, got)
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	req := require.New(t)

	req.Equal("b", FirstNonEmpty("x", "", "  ", " b ", "c"))
	req.Equal("x", FirstNonEmpty("x", "", "\t"))
	req.Equal("x", FirstNonEmpty("x"))
}
