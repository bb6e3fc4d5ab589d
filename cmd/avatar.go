package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"anychat/internal/app/storage"
	"anychat/internal/app/user"
	"anychat/internal/pkg/logx"
)

func newAvatarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "Manage user and room avatars in object storage",
	}

	var (
		userID string
		roomID string
		file   string
		apply  bool
	)
	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload an avatar image and optionally set it on the user or room",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.StorageEnabled() {
				return fmt.Errorf("avatar storage is not configured (S3_BUCKET_NAME)")
			}
			if (userID == "") == (roomID == "") {
				return fmt.Errorf("exactly one of --user or --room is required")
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}
			mimeType := storage.ExtToMIME[strings.ToLower(filepath.Ext(file))]

			store, err := a.newStore(cmd.Context(), storage.ConfigFrom(a.cfg))
			if err != nil {
				return err
			}
			avatars := storage.NewAvatars(store, a.cfg.S3PublicBaseURL)

			owner := "users/" + userID
			if roomID != "" {
				owner = "rooms/" + roomID
			}
			key, url, err := avatars.Store(cmd.Context(), owner, filepath.Base(file), mimeType, info.Size(), f)
			if err != nil {
				return err
			}

			if !apply {
				return a.print(map[string]string{"fileKey": key, "publicUrl": url})
			}

			var (
				previous string
				attrs    map[string]any
			)
			if userID != "" {
				previous, attrs, err = setUserAvatar(cmd, a, userID, url)
			} else {
				previous, attrs, err = setRoomAvatar(cmd, a, roomID, url)
			}
			if err != nil {
				removeAvatar(cmd, avatars, key)
				return err
			}

			if oldKey, ok := avatars.KeyFromURL(previous); ok && oldKey != key {
				removeAvatar(cmd, avatars, oldKey)
			}
			return a.print(attrs)
		},
	}
	uploadCmd.Flags().StringVar(&userID, "user", "", "User id owning the avatar")
	uploadCmd.Flags().StringVar(&roomID, "room", "", "Room id owning the avatar")
	uploadCmd.Flags().StringVar(&file, "file", "", "Image file (jpeg, png, webp or gif)")
	uploadCmd.Flags().BoolVar(&apply, "apply", false, "Store the avatar URL on the user or room")

	cmd.AddCommand(uploadCmd)
	return cmd
}

// removeAvatar deletes an avatar object. Failures only leave an orphaned object behind,
// so they are logged and not returned.
func removeAvatar(cmd *cobra.Command, avatars *storage.Avatars, key string) {
	if err := avatars.Remove(cmd.Context(), key); err != nil {
		logx.Warn("Failed to remove avatar object", "key", key, "error", err.Error())
	}
}

// setUserAvatar stores url on the user and returns the avatar it replaced.
func setUserAvatar(cmd *cobra.Command, a *app, id, url string) (string, map[string]any, error) {
	u := user.New(map[string]any{"id": id}).SetClient(a.client)
	if err := u.SyncOrCreate(cmd.Context()); err != nil {
		return "", nil, err
	}
	previous := u.Avatar
	u.Avatar = url
	if err := u.Upsert(cmd.Context()); err != nil {
		return "", nil, err
	}
	return previous, u.Attributes(), nil
}

// setRoomAvatar stores url on the room and returns the avatar it replaced.
func setRoomAvatar(cmd *cobra.Command, a *app, id, url string) (string, map[string]any, error) {
	r, err := fetchRoom(cmd, a, id)
	if err != nil {
		return "", nil, err
	}
	previous := r.Avatar
	r.Avatar = url
	if err := r.Upsert(cmd.Context()); err != nil {
		return "", nil, err
	}
	return previous, r.Attributes(), nil
}
