package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobcrap/jobcrap-cli/internal/api"
	"github.com/jobcrap/jobcrap-cli/internal/auth"
	"github.com/jobcrap/jobcrap-cli/internal/config"
)

var flagLoginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with an identity-provider token",
	Long: `Exchange an identity-provider ID token for a jobcrap session.

Get a token from the web app (account menu -> "terminal sign-in") and pass it
with --token, or paste it when prompted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		token := strings.TrimSpace(flagLoginToken)
		if token == "" {
			fmt.Print("ID token: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading token: %w", err)
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return fmt.Errorf("no token provided")
		}

		client, err := api.NewClient(cfg.ResolvedAPIURL(), cfg.RequestTimeoutDuration())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeoutDuration())
		defer cancel()
		info, err := client.CreateSession(ctx, token)
		if err != nil {
			return fmt.Errorf("signing in: %w", err)
		}

		session := &auth.Session{
			Token:       info.Token,
			DisplayName: info.DisplayName,
			Email:       info.Email,
		}
		if err := auth.Save(auth.DefaultPath(), session); err != nil {
			return err
		}

		name := info.DisplayName
		if name == "" {
			name = "signed in"
		}
		fmt.Printf("Signed in as %s.\n", name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := auth.Load(auth.DefaultPath())
		if err != nil {
			return err
		}
		if !session.Authenticated() {
			fmt.Println("Not signed in.")
			return nil
		}

		// Best-effort server-side invalidation; the local session is
		// cleared regardless.
		cfg, err := config.Load(flagConfig)
		if err == nil {
			if client, err := api.NewClient(cfg.ResolvedAPIURL(), cfg.RequestTimeoutDuration()); err == nil {
				client.SetToken(session.Token)
				ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeoutDuration())
				client.DeleteSession(ctx)
				cancel()
			}
		}

		if err := auth.Clear(auth.DefaultPath()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagLoginToken, "token", "", "identity-provider ID token")
}
