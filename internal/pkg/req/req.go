/*
Package req provides helpers for parsing HTTP request input.

It is used by the REST read endpoints to bind and bound query parameters so that
handlers can reject malformed input with a standard CustomError.
*/
package req

import (
	"net/http"
	"strconv"
	"strings"

	"guildchat/internal/pkg/errs"
)

// QueryInt parses the named query parameter as a positive integer.
// A missing parameter yields def; values above max are clamped to max.
// Non-numeric or non-positive values yield ErrInvalidParams.
func QueryInt(r *http.Request, name string, def, max int) (int, *errs.CustomError) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}

	if max > 0 && n > max {
		n = max
	}

	return n, nil
}

// FirstNonEmpty returns the first value that is not blank after trimming, or fallback.
func FirstNonEmpty(fallback string, values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}
