package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudnotes/cloudnotes/internal/app"
	"github.com/cloudnotes/cloudnotes/internal/config"
	"github.com/cloudnotes/cloudnotes/internal/identity"
	"github.com/cloudnotes/cloudnotes/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cloudnotes",
		Short:         "Per-user notes API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newTokenCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user, signed with CLOUDNOTES_JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}
			tok, err := identity.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, ttl).Issue(user)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owner id placed in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default CLOUDNOTES_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
