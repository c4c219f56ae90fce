package main

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

var gymsCmd = &cobra.Command{
	Use:   "gyms",
	Short: "List the gyms of the platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		gyms, err := gymkit.Gyms.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, gyms)
	},
}

var selectCmd = &cobra.Command{
	Use:   "select [slug]",
	Short: "Select the gym that scoped commands talk to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var slug string
		if len(args) > 0 {
			slug = args[0]
		} else {
			gyms, err := gymkit.Gyms.List(ctx)
			if err != nil {
				return err
			}
			options := make([]string, len(gyms))
			for i, g := range gyms {
				options[i] = g.Slug
			}
			if err := survey.AskOne(&survey.Select{
				Message: "Choose a gym:",
				Options: options,
				Description: func(value string, index int) string {
					return gyms[index].Name
				},
			}, &slug); err != nil {
				return err
			}
		}

		gym, err := gymkit.SelectGym(ctx, slug)
		if err != nil {
			return err
		}
		return printJSON(cmd, gym.Selection())
	},
}

var unselectCmd = &cobra.Command{
	Use:   "unselect",
	Short: "Forget the selected gym",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return gymkit.Tenant.Clear(ctx)
	},
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the selected gym",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, ok := gymkit.Tenant.Get()
		if !ok {
			return printJSON(cmd, nil)
		}
		return printJSON(cmd, sel)
	},
}
