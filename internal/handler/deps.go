package handler

import (
	"gemchat/internal/app/account"
	"gemchat/internal/app/chat"
	"gemchat/internal/app/session"
	"gemchat/internal/app/storage"
	"gemchat/internal/configs"
	"gemchat/internal/pkg/pow"
)

// AppDeps bundles the shared dependencies handed to every handler.
type AppDeps struct {
	Hub      *chat.Hub
	Config   *configs.AppConfig
	Sessions session.Store
	Accounts account.Store

	// Storage is nil when no object storage is configured; avatar
	// endpoints then respond with a storage-unavailable error.
	Storage storage.Service

	Pow *pow.Manager
}
