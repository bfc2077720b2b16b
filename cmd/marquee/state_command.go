package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/api"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "state",
		Short:       "Show the shared slideshow state",
		Annotations: remoteAnnotations,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := ctx.publicClient()
			if err != nil {
				return err
			}
			state, err := client.State(cmd.Context())
			if err != nil {
				return ctx.wrapAPIError(client, err)
			}
			if asJSON {
				return writeJSON(cmd, state)
			}
			printState(cmd, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printState(cmd *cobra.Command, state api.StateResponse) {
	out := cmd.OutOrStdout()
	current := state.CurrentSlideID
	if current == "" {
		current = "-"
	}
	fmt.Fprintf(out, "Slide:       %s (index %d of %d)\n", current, state.CurrentSlideIndex, state.TotalSlides)
	fmt.Fprintf(out, "Duration:    %ds\n", state.SlideDuration)
	if state.SlideStartedAt != "" {
		fmt.Fprintf(out, "Started at:  %s\n", state.SlideStartedAt)
	}
	fmt.Fprintf(out, "Paused:      %s\n", yesNo(state.IsPaused))
	fmt.Fprintf(out, "Muted:       %s\n", yesNo(state.IsMuted))
	fmt.Fprintf(out, "Video skip:  %s\n", yesNo(state.RequestVideoSwitch))
	hidden := "none"
	if len(state.HiddenSlideIDs) > 0 {
		hidden = strings.Join(state.HiddenSlideIDs, ", ")
	}
	fmt.Fprintf(out, "Hidden:      %s\n", hidden)
	if !state.LastUpdated.IsZero() {
		fmt.Fprintf(out, "Updated:     %s\n", state.LastUpdated.Local().Format(time.DateTime))
	}
}
