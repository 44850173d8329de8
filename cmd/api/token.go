package main

import (
	"errors"
	"fmt"
	"time"

	"learnhub/internal/middleware"
	"learnhub/internal/repository"
	"learnhub/internal/service"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		userID uint
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user (development)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Auth.JWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is required")
			}
			if ttl == 0 {
				ttl = a.cfg.Auth.TokenTTL
			}

			now := time.Now()
			users := service.NewUserService(repository.NewUserRepository(a.db))
			if err := users.RecordLogin(cmd.Context(), userID, now); err != nil {
				return err
			}

			token, err := middleware.IssueToken(a.cfg.Auth.JWTSecret, userID, ttl, now)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "user id to issue the token for")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to AUTH_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
