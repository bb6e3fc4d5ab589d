/*
Package main is the anychat command line tool.

It mints client, user and room grant tokens, reconciles users and rooms with the message
provider, uploads avatars and runs the token gateway (serve). Configuration comes from the
environment, optionally seeded from .env files (--env-file).
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"anychat/internal/app/client"
	"anychat/internal/app/storage"
	"anychat/internal/configs"
	"anychat/internal/pkg/logx"
)

// Output formats.
const (
	outJSON = "json"
	outText = "text"
)

// app is the state shared by every command once the configuration is loaded.
type app struct {
	envFiles []string
	out      string
	stdout   io.Writer

	// newClient and newStore build the provider binding and the avatar store.
	newClient func(cfg *configs.AppConfig) *client.Client
	newStore  func(ctx context.Context, cfg storage.ServiceConfig) (storage.StorageService, error)

	cfg    *configs.AppConfig
	client *client.Client
}

func newApp(stdout io.Writer) *app {
	return &app{
		stdout:    stdout,
		newClient: client.FromConfig,
		newStore:  storage.NewStorageService,
	}
}

// print writes v to stdout: strings as is, everything else as JSON (indented with --out json).
func (a *app) print(v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(a.stdout, s)
		return err
	}

	var (
		b   []byte
		err error
	)
	if a.out == outJSON {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(b))
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "anychat",
		Short:         "AnyChat message provider SDK tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.out != outJSON && a.out != outText {
				return fmt.Errorf("--out must be %q or %q", outJSON, outText)
			}

			cfg, err := configs.LoadConfig(a.envFiles...)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logx.InitGlobalLogger(cfg.IsDevelopment())
			if cmd.Name() != "serve" {
				logx.SetOutput(os.Stderr)
			}

			a.cfg = cfg
			a.client = a.newClient(cfg)
			return nil
		},
	}

	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "Env files to load before reading the environment (default .env)")
	root.PersistentFlags().StringVar(&a.out, "out", outText, "Output format: json|text")

	root.AddCommand(
		newTokenCmd(a),
		newGrantCmd(a),
		newUserCmd(a),
		newRoomCmd(a),
		newAvatarCmd(a),
		newServeCmd(a),
	)
	return root
}

func main() {
	a := newApp(os.Stdout)

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
