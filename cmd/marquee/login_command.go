package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/apiclient"
)

const adminPasswordEnvVar = "MARQUEE_ADMIN_PASSWORD"

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var password string
	var quiet bool

	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Exchange the admin password for a session token",
		Annotations: remoteAnnotations,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := strings.TrimSpace(password)
			if secret == "" {
				secret = strings.TrimSpace(os.Getenv(adminPasswordEnvVar))
			}
			if secret == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return fmt.Errorf("admin password required (--password or %s): %w", adminPasswordEnvVar, err)
				}
				secret = cfg.Admin.Password
			}

			client, err := ctx.publicClient()
			if err != nil {
				return err
			}
			resp, err := client.Login(cmd.Context(), secret)
			if err != nil {
				if apiclient.IsUnauthorized(err) {
					return fmt.Errorf("login failed: invalid password")
				}
				return ctx.wrapAPIError(client, err)
			}

			out := cmd.OutOrStdout()
			if quiet {
				fmt.Fprintln(out, resp.Token)
				return nil
			}
			fmt.Fprintln(out, resp.Message)
			fmt.Fprintf(out, "Token:   %s\n", resp.Token)
			fmt.Fprintf(out, "Expires: %s\n", resp.ExpiresAt)
			fmt.Fprintf(out, "Export it with: export %s=%s\n", tokenEnvVar, resp.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Admin password (defaults to "+adminPasswordEnvVar+" or admin.password)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the token")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Invalidate the current admin session token",
		Annotations: remoteAnnotations,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			if err := client.Logout(cmd.Context()); err != nil {
				return ctx.wrapAPIError(client, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
