package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/apiclient"
)

func newControlCommand(ctx *commandContext) *cobra.Command {
	controlCmd := &cobra.Command{
		Use:         "control",
		Short:       "Drive the shared slideshow (admin)",
		Annotations: remoteAnnotations,
	}

	simple := []struct {
		action string
		short  string
	}{
		{"pause", "Pause the slideshow on every screen"},
		{"resume", "Resume the slideshow"},
		{"mute", "Mute video audio"},
		{"unmute", "Unmute video audio"},
		{"switch_video", "Ask viewers to skip to another video"},
	}
	for _, entry := range simple {
		action := entry.action
		controlCmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: entry.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runControl(cmd, ctx, func(c *apiclient.Client) (api.StateResponse, error) {
					return c.Control(cmd.Context(), api.ControlRequest{Action: action})
				})
			},
		})
	}

	controlCmd.AddCommand(newControlGotoCommand(ctx))
	controlCmd.AddCommand(&cobra.Command{
		Use:   "hide <slide-id>",
		Short: "Hide a slide from rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runControl(cmd, ctx, func(c *apiclient.Client) (api.StateResponse, error) {
				return c.Hide(cmd.Context(), args[0])
			})
		},
	})
	controlCmd.AddCommand(&cobra.Command{
		Use:   "unhide <slide-id>",
		Short: "Return a hidden slide to rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runControl(cmd, ctx, func(c *apiclient.Client) (api.StateResponse, error) {
				return c.Unhide(cmd.Context(), args[0])
			})
		},
	})
	return controlCmd
}

func newControlGotoCommand(ctx *commandContext) *cobra.Command {
	var index int
	var slideID string

	cmd := &cobra.Command{
		Use:   "goto",
		Short: "Jump every screen to a slide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("index") {
				return fmt.Errorf("goto needs --index")
			}
			req := api.ControlRequest{Action: "goto", SlideID: slideID, SlideIndex: &index}
			return runControl(cmd, ctx, func(c *apiclient.Client) (api.StateResponse, error) {
				return c.Control(cmd.Context(), req)
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "Target slide index")
	cmd.Flags().StringVar(&slideID, "slide", "", "Target slide id, recorded alongside the index")
	return cmd
}

func runControl(cmd *cobra.Command, ctx *commandContext, call func(*apiclient.Client) (api.StateResponse, error)) error {
	client, err := ctx.adminClient()
	if err != nil {
		return err
	}
	state, err := call(client)
	if err != nil {
		return ctx.wrapAPIError(client, err)
	}
	printState(cmd, state)
	return nil
}
