package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration paths and daemon reachability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			bind, err := ctx.apiBind()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			baseURL := bind
			if !strings.Contains(baseURL, "://") {
				baseURL = "http://" + baseURL
			}
			daemonResult := preflight.CheckDaemon(cmd.Context(), baseURL)
			fmt.Fprintln(out, renderStatusLine("API", resultKind(daemonResult, statusError), daemonResult.Detail, colorize))

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range preflight.RunAll(cfg) {
				fmt.Fprintln(out, renderStatusLine(result.Name, resultKind(result, statusWarn), result.Detail, colorize))
			}
			return nil
		},
	}
}

func resultKind(result preflight.Result, failed statusKind) statusKind {
	if result.Passed {
		return statusOK
	}
	return failed
}
