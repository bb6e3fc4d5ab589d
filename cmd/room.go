package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"anychat/internal/app/room"
)

type roomFlags struct {
	id            string
	name          string
	avatar        string
	expiredTime   string
	description   string
	members       []string
	templateID    string
	templateValue map[string]string
}

func (f *roomFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "Room id (empty creates a new room)")
	cmd.Flags().StringVar(&f.name, "name", "", "Room name")
	cmd.Flags().StringVar(&f.avatar, "avatar", "", "Avatar URL")
	cmd.Flags().StringVar(&f.expiredTime, "expired-time", "", "Expiry time")
	cmd.Flags().StringVar(&f.description, "description", "", "Plain description")
	cmd.Flags().StringSliceVar(&f.members, "member", nil, "Member user id (repeatable)")
	cmd.Flags().StringVar(&f.templateID, "template-id", "", "Description template id")
	cmd.Flags().StringToStringVar(&f.templateValue, "template-value", nil, "Description template value key=value (repeatable)")
}

func (f *roomFlags) room(a *app) (*room.Room, error) {
	r := room.New(map[string]any{
		"id":                f.id,
		room.KeyName:        f.name,
		room.KeyAvatar:      f.avatar,
		room.KeyExpiredTime: f.expiredTime,
		room.KeyDescription: f.description,
	}).SetClient(a.client)

	if err := r.AddMembersByIDOnly(f.members); err != nil {
		return nil, err
	}
	if f.templateID != "" || len(f.templateValue) > 0 {
		values := make(map[string]any, len(f.templateValue))
		for k, v := range f.templateValue {
			values[k] = v
		}
		if err := r.SetDescriptionConfig(f.templateID, values); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func printRooms(a *app, rooms []*room.Room) error {
	out := make([]map[string]any, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Attributes())
	}
	return a.print(out)
}

func newRoomCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms and their members on the message provider",
	}

	var upsert roomFlags
	upsertCmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create a room, or update it when --id is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := upsert.room(a)
			if err != nil {
				return err
			}
			if err := r.Upsert(cmd.Context()); err != nil {
				return err
			}
			return a.print(r.Attributes())
		},
	}
	upsert.bind(upsertCmd)

	var sync roomFlags
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch a room by --id, or create it when no id is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := sync.room(a)
			if err != nil {
				return err
			}
			if err := r.SyncOrCreate(cmd.Context()); err != nil {
				return err
			}
			return a.print(r.Attributes())
		},
	}
	sync.bind(syncCmd)

	var deleteID string
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := room.New(map[string]any{"id": deleteID}).SetClient(a.client).Delete(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(body)
		},
	}
	deleteCmd.Flags().StringVar(&deleteID, "id", "", "Room id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every room",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := room.List(cmd.Context(), a.client)
			if err != nil {
				return err
			}
			return printRooms(a, rooms)
		},
	}

	var (
		userID string
		last   bool
	)
	userRoomsCmd := &cobra.Command{
		Use:   "user-rooms",
		Short: "List the rooms of a user, most recent activity first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if last {
				r, err := room.LastRoomWithNewMessage(cmd.Context(), a.client, userID)
				if err != nil {
					return err
				}
				if r == nil {
					return a.print(nil)
				}
				return a.print(r.Attributes())
			}
			rooms, err := room.ListUserRooms(cmd.Context(), a.client, userID)
			if err != nil {
				return err
			}
			return printRooms(a, rooms)
		},
	}
	userRoomsCmd.Flags().StringVar(&userID, "user", "", "User id")
	userRoomsCmd.Flags().BoolVar(&last, "last", false, "Only the room with the most recent message")

	var membersID string
	membersCmd := &cobra.Command{
		Use:   "members",
		Short: "List a room's members with their full profile and grant",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := fetchRoom(cmd, a, membersID)
			if err != nil {
				return err
			}
			members, err := r.ListMembersWithFullProfile(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]map[string]any, 0, len(members))
			for _, m := range members {
				out = append(out, m.Attributes())
			}
			return a.print(out)
		},
	}
	membersCmd.Flags().StringVar(&membersID, "id", "", "Room id")

	var syncPermID string
	syncPermCmd := &cobra.Command{
		Use:   "sync-permissions",
		Short: "Re-mint the grant of every member of a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := fetchRoom(cmd, a, syncPermID)
			if err != nil {
				return err
			}
			if err := r.SyncPermissions(); err != nil {
				return err
			}
			return a.print(r.Attributes())
		},
	}
	syncPermCmd.Flags().StringVar(&syncPermID, "id", "", "Room id")

	cmd.AddCommand(upsertCmd, syncCmd, deleteCmd, listCmd, userRoomsCmd, membersCmd, syncPermCmd)
	return cmd
}

// fetchRoom loads an existing room from the provider.
func fetchRoom(cmd *cobra.Command, a *app, id string) (*room.Room, error) {
	if id == "" {
		return nil, fmt.Errorf("--id is required")
	}
	r := room.New(map[string]any{"id": id}).SetClient(a.client)
	if err := r.SyncOrCreate(cmd.Context()); err != nil {
		return nil, err
	}
	return r, nil
}
