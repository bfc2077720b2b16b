package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/inventory"
	"marquee/internal/logging"
	"marquee/internal/playcount"
)

func newInventoryCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Scan the video directory and show play counts",
		Long: "Scan the configured video directory locally and print every category " +
			"with its videos and recorded play counts. The ledger file is not modified.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := logging.NewNop()
			inv, err := inventory.NewScannerFromConfig(cfg, logger).Scan()
			if err != nil {
				return fmt.Errorf("scan videos: %w", err)
			}
			ledger := playcount.NewLedger(cfg.PlayCountsPath(), logger)
			if _, err := ledger.Load(inv.Known); err != nil {
				return fmt.Errorf("load play counts: %w", err)
			}
			resp := api.FromInventory(inv, ledger.Snapshot())
			if asJSON {
				return writeJSON(cmd, resp)
			}
			printInventory(cmd, resp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.AddCommand(newInventoryReloadCommand(ctx))
	return cmd
}

func printInventory(cmd *cobra.Command, resp api.InventoryResponse) {
	out := cmd.OutOrStdout()
	if resp.TotalVideos == 0 {
		fmt.Fprintln(out, "No videos found")
		return
	}
	rows := make([][]string, 0, resp.TotalVideos)
	for _, category := range resp.Categories {
		for _, video := range category.Videos {
			rows = append(rows, []string{category.DisplayName, video.Filename, strconv.Itoa(video.PlayCount)})
		}
	}
	fmt.Fprintln(out, renderTable([]tableColumn{
		{header: "Category"},
		{header: "Video"},
		{header: "Plays", align: alignRight},
	}, rows))
	fmt.Fprintf(out, "%d categories, %d videos, %d plays\n", resp.TotalCategories, resp.TotalVideos, resp.TotalPlays)
}

func newInventoryReloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "reload",
		Short:       "Ask the daemon to rescan videos and prune stale play counts",
		Annotations: remoteAnnotations,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			result, err := client.ReloadInventory(cmd.Context())
			if err != nil {
				return ctx.wrapAPIError(client, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inventory %s: %d categories, %d videos, %d stale counts pruned\n",
				result.Status, result.TotalCategories, result.TotalVideos, result.PrunedCounts)
			return nil
		},
	}
}
