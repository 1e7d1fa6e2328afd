package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/req"
	"guildchat/internal/pkg/resp"
)

const maxChannelIDLength = 128

func channelIDParam(r *http.Request) (string, *errs.CustomError) {
	channelID := strings.TrimSpace(chi.URLParam(r, "channelId"))
	if channelID == "" || len(channelID) > maxChannelIDLength {
		return "", errs.NewError(errs.ErrChannelInvalid)
	}
	return channelID, nil
}

// HandleChannelMessages returns the most recent messages of a channel in
// chronological order. The limit query parameter is bounded by configuration.
func HandleChannelMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID, customErr := channelIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		limit, customErr := req.QueryInt(r, "limit", deps.Config.HistoryDefaultLimit, deps.Config.HistoryMaxLimit)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		messages, err := deps.Store.QueryRecent(r.Context(), channelID, limit)
		if err != nil {
			logx.Error(err, "Failed to query channel messages", "channel_id", channelID, "limit", limit)
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageStoreFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"channelId": channelID,
			"messages":  messages,
		})
	}
}

// HandleChannelPresence returns the current presence snapshot of a channel.
func HandleChannelPresence(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID, customErr := channelIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"channelId": channelID,
			"users":     deps.Hub.Presence(channelID),
		})
	}
}
