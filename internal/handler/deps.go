package handler

import (
	"anychat/internal/app/client"
	"anychat/internal/app/storage"
	"anychat/internal/configs"
)

// AppDeps holds what the gateway handlers share.
type AppDeps struct {
	Config *configs.AppConfig
	Client *client.Client

	// Avatars is nil when S3 storage is not configured.
	Avatars *storage.Avatars
}
