package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"anychat/internal/app/user"
)

type userFlags struct {
	id       string
	email    string
	phone    string
	avatar   string
	fullName string
	gender   string
}

func (f *userFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "User id (empty creates a new user)")
	cmd.Flags().StringVar(&f.email, "email", "", "Email")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone")
	cmd.Flags().StringVar(&f.avatar, "avatar", "", "Avatar URL")
	cmd.Flags().StringVar(&f.fullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&f.gender, "gender", "", fmt.Sprintf("Gender: %v", user.Genders()))
}

func (f *userFlags) user(a *app) *user.User {
	return user.New(map[string]any{
		"id":             f.id,
		user.KeyEmail:    f.email,
		user.KeyPhone:    f.phone,
		user.KeyAvatar:   f.avatar,
		user.KeyFullName: f.fullName,
		user.KeyGender:   f.gender,
	}).SetClient(a.client)
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users on the message provider",
	}

	var upsert userFlags
	upsertCmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create a user, or update it when --id is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			u := upsert.user(a)
			if err := u.Upsert(cmd.Context()); err != nil {
				return err
			}
			return a.print(u.Attributes())
		},
	}
	upsert.bind(upsertCmd)

	var sync userFlags
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch a user by --id, or create it when no id is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			u := sync.user(a)
			if err := u.SyncOrCreate(cmd.Context()); err != nil {
				return err
			}
			return a.print(u.Attributes())
		},
	}
	sync.bind(syncCmd)

	var deleteID string
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := user.New(map[string]any{"id": deleteID}).SetClient(a.client).Delete(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(body)
		},
	}
	deleteCmd.Flags().StringVar(&deleteID, "id", "", "User id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := user.List(cmd.Context(), a.client)
			if err != nil {
				return err
			}
			out := make([]map[string]any, 0, len(users))
			for _, u := range users {
				out = append(out, u.Attributes())
			}
			return a.print(out)
		},
	}

	var (
		tokenFlags userFlags
		tokenSync  bool
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a user token",
		RunE: func(cmd *cobra.Command, args []string) error {
			u := tokenFlags.user(a)
			if tokenSync {
				if err := u.SyncOrCreate(cmd.Context()); err != nil {
					return err
				}
			}
			token, err := u.Token()
			if err != nil {
				return err
			}
			return a.print(token)
		},
	}
	tokenFlags.bind(tokenCmd)
	tokenCmd.Flags().BoolVar(&tokenSync, "sync", false, "Fetch (or create) the user first")

	cmd.AddCommand(upsertCmd, syncCmd, deleteCmd, listCmd, tokenCmd)
	return cmd
}
