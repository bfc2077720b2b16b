package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/apiclient"
)

const submissionTextWidth = 40

func newSubmissionsCommand(ctx *commandContext) *cobra.Command {
	subCmd := &cobra.Command{
		Use:         "submissions",
		Aliases:     []string{"subs"},
		Short:       "Review guest submissions (admin)",
		Annotations: remoteAnnotations,
	}

	subCmd.AddCommand(newSubmissionsListCommand(ctx))
	subCmd.AddCommand(newModerationCommand(ctx, "approve", "Approve a submission and inject its slides",
		func(c *apiclient.Client, cmd *cobra.Command, id int64) (api.ModerationResult, error) {
			return c.Approve(cmd.Context(), id)
		}))
	subCmd.AddCommand(newModerationCommand(ctx, "reject", "Reject a submission and withdraw its slides",
		func(c *apiclient.Client, cmd *cobra.Command, id int64) (api.ModerationResult, error) {
			return c.Reject(cmd.Context(), id)
		}))
	subCmd.AddCommand(newModerationCommand(ctx, "pending", "Move a submission back to pending",
		func(c *apiclient.Client, cmd *cobra.Command, id int64) (api.ModerationResult, error) {
			return c.ResetToPending(cmd.Context(), id)
		}))
	subCmd.AddCommand(newModerationCommand(ctx, "delete", "Delete a submission",
		func(c *apiclient.Client, cmd *cobra.Command, id int64) (api.ModerationResult, error) {
			return c.Delete(cmd.Context(), id)
		}))
	return subCmd
}

func newSubmissionsListCommand(ctx *commandContext) *cobra.Command {
	var status string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List submissions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			list, err := client.Submissions(cmd.Context(), status)
			if err != nil {
				return ctx.wrapAPIError(client, err)
			}
			if asJSON {
				return writeJSON(cmd, list)
			}
			printSubmissions(cmd, list)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved, rejected)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printSubmissions(cmd *cobra.Command, list api.SubmissionList) {
	out := cmd.OutOrStdout()
	if len(list.Submissions) == 0 {
		fmt.Fprintln(out, "No submissions")
	} else {
		rows := make([][]string, 0, len(list.Submissions))
		for _, sub := range list.Submissions {
			guest := "Anonymous"
			if sub.GuestName != nil && strings.TrimSpace(*sub.GuestName) != "" {
				guest = *sub.GuestName
			}
			rows = append(rows, []string{
				strconv.FormatInt(sub.ID, 10),
				sub.Status,
				guest,
				sub.Memory,
				sub.Resolution,
			})
		}
		fmt.Fprintln(out, renderTable([]tableColumn{
			{header: "ID", align: alignRight},
			{header: "Status"},
			{header: "Guest", maxWidth: 20},
			{header: "Memory", maxWidth: submissionTextWidth},
			{header: "Resolution", maxWidth: submissionTextWidth},
		}, rows))
	}
	if len(list.Counts) > 0 {
		keys := make([]string, 0, len(list.Counts))
		for key := range list.Counts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s %d", key, list.Counts[key]))
		}
		fmt.Fprintln(out, strings.Join(parts, ", "))
	}
}

func newModerationCommand(ctx *commandContext, use, short string, call func(*apiclient.Client, *cobra.Command, int64) (api.ModerationResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid submission id %q", args[0])
			}
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			result, err := call(client, cmd, id)
			if err != nil {
				return ctx.wrapAPIError(client, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submission %d: %s\n", result.ID, result.Message)
			if result.SlidesCreated > 0 || result.SlidesRemoved > 0 {
				fmt.Fprintf(out, "Slides created: %d, removed: %d\n", result.SlidesCreated, result.SlidesRemoved)
			}
			return nil
		},
	}
}
