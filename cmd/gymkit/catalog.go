package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/naiba/gymkit/model"
)

type catalogAPI[T any] interface {
	List(ctx context.Context) ([]T, error)
	ListFor(ctx context.Context, slug string) ([]T, error)
	Get(ctx context.Context, id uint64) (*T, error)
}

// catalogCmd builds "<name> [id]": the list without id, one record with it.
func catalogCmd[T any](name, short string, api func() catalogAPI[T]) *cobra.Command {
	var gym string
	cmd := &cobra.Command{
		Use:   name + " [id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", args[0], err)
				}
				item, err := api().Get(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, item)
			}

			var items []T
			var err error
			if gym != "" {
				items, err = api().ListFor(ctx, gym)
			} else {
				items, err = api().List(ctx)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, items)
		},
	}
	cmd.Flags().StringVarP(&gym, "gym", "g", "", "查看其他健身房，不改变当前选择")
	return cmd
}

var (
	membershipsCmd = catalogCmd("memberships", "List membership plans of the selected gym",
		func() catalogAPI[model.Membership] { return gymkit.Memberships })
	classesCmd = catalogCmd("classes", "List classes of the selected gym",
		func() catalogAPI[model.GymClass] { return gymkit.Classes })
	servicesCmd = catalogCmd("services", "List services of the selected gym",
		func() catalogAPI[model.GymService] { return gymkit.Services })

	homeCmd = &cobra.Command{
		Use:   "home",
		Short: "Show memberships, classes and services of the selected gym at once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := gymkit.Home.Load(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, home)
		},
	}
)
