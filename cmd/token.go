package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"anychat/internal/app/permission"
	"anychat/internal/pkg/auth/jwt"
	"anychat/internal/pkg/metrics"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		claims map[string]string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a client token, optionally with extra claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := make(jwt.Claims, len(claims))
			for k, v := range claims {
				extra[k] = v
			}
			if ttl <= 0 {
				ttl = a.client.TokenTTL
			}

			token, err := a.client.MintIssuer().Mint(a.client.Identity, extra, ttl)
			if err != nil {
				return err
			}
			metrics.TokenMinted("client")
			return a.print(token)
		},
	}
	cmd.Flags().StringToStringVar(&claims, "claim", nil, "Extra claim key=value (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default ANYCHAT_TOKEN_TTL)")
	return cmd
}

func newGrantCmd(a *app) *cobra.Command {
	var (
		roomID  string
		userIDs []string
		deny    []string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Mint room permission tokens for one or more users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if roomID == "" {
				return fmt.Errorf("--room is required")
			}
			if len(userIDs) == 0 {
				return fmt.Errorf("at least one --user is required")
			}

			override, err := denyOverride(deny)
			if err != nil {
				return err
			}

			members := make([]permission.Member, 0, len(userIDs))
			for _, id := range userIDs {
				members = append(members, permission.Member{ID: id, Override: override})
			}

			grantor := permission.NewGrantor(a.client.MintIssuer(), a.client.Identity, roomID).SetTTL(a.client.GrantTTL)
			if ttl > 0 {
				grantor.SetTTL(ttl)
			}
			bundles, err := grantor.GrantAll(members)
			if err != nil {
				return err
			}
			return a.print(bundles)
		},
	}
	cmd.Flags().StringVar(&roomID, "room", "", "Room id")
	cmd.Flags().StringSliceVar(&userIDs, "user", nil, "User id (repeatable)")
	cmd.Flags().StringSliceVar(&deny, "deny", nil, "Capabilities to withhold: create,view,delete,edit")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Grant lifetime (default ANYCHAT_GRANT_TTL)")
	return cmd
}

// denyOverride turns capability names into an override withholding them.
func denyOverride(names []string) (permission.Override, error) {
	var override permission.Override
	no := false
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "create":
			override.CanCreate = &no
		case "view":
			override.CanView = &no
		case "delete":
			override.CanDelete = &no
		case "edit":
			override.CanEdit = &no
		default:
			return permission.Override{}, fmt.Errorf("unknown capability %q", name)
		}
	}
	return override, nil
}
