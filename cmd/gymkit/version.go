package main

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/spf13/cobra"

	"github.com/naiba/gymkit/service/app"
)

var (
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE:  version,
	}
	minVersion string
)

func init() {
	versionCmd.Flags().StringVar(&minVersion, "require", "", "低于该版本时返回错误")
}

func version(cmd *cobra.Command, args []string) error {
	v, err := semver.ParseTolerant(app.Version)
	if err != nil {
		return fmt.Errorf("parse build version %q: %w", app.Version, err)
	}
	if minVersion != "" {
		required, err := semver.ParseTolerant(minVersion)
		if err != nil {
			return fmt.Errorf("parse required version %q: %w", minVersion, err)
		}
		if v.LT(required) {
			return fmt.Errorf("gymkit %s is older than required %s", v, required)
		}
	}
	return printJSON(cmd, map[string]any{
		"version": v.String(),
		"major":   v.Major,
		"minor":   v.Minor,
		"patch":   v.Patch,
	})
}
