package handler

import (
	"context"

	"guildchat/internal/app/chat"
	"guildchat/internal/app/message"
	"guildchat/internal/configs"
)

// Pinger is implemented by message stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AppDeps carries the collaborators shared by every handler.
type AppDeps struct {
	Hub    *chat.Hub
	Relay  *chat.Relay
	Store  message.Store
	Config *configs.AppConfig
}
