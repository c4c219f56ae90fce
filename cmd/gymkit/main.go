package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/utils"
	"github.com/naiba/gymkit/service/app"
)

var (
	rootCmd = &cobra.Command{
		Use:   "gymkit",
		Short: "Terminal client for the gym platform",
		Long: `gymkit
================================
Browse gyms, memberships, classes and services,
sign in and contact your gym from the terminal.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	configPath string
	debug      bool
	apiRoot    string
	language   string

	gymkit *app.App
	ctx    = context.Background()
)

func main() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "data/config.yaml", "配置文件路径")
	flags.BoolVarP(&debug, "debug", "d", false, "开启Debug")
	flags.StringVar(&apiRoot, "api-root", "", "API 根地址，如 http://127.0.0.1:8000/api/v1")
	flags.StringVarP(&language, "lang", "l", "", "界面语言 (en, es)")

	rootCmd.AddCommand(gymsCmd, selectCmd, unselectCmd, currentCmd)
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, statusCmd, profileCmd)
	rootCmd.AddCommand(membershipsCmd, classesCmd, servicesCmd, homeCmd, contactCmd)
	rootCmd.AddCommand(versionCmd)

	err := rootCmd.Execute()
	if gymkit != nil {
		if cErr := gymkit.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	// 不需要访问 API 的命令
	switch cmd.Name() {
	case versionCmd.Name(), "help", "completion":
		return nil
	}
	conf := &model.Config{}
	if err := conf.Read(configPath); err != nil {
		return err
	}
	applyFlags(cmd.Flags(), conf)

	var err error
	gymkit, err = app.New(ctx, conf, app.Options{})
	return err
}

// applyFlags 命令行参数优先于配置文件
func applyFlags(fs *pflag.FlagSet, conf *model.Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "debug":
			conf.Debug = debug
		case "api-root":
			conf.APIRoot = strings.TrimRight(apiRoot, "/")
		case "lang":
			conf.Language = language
		}
	})
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := utils.Json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printError(err error) {
	if apiErr, ok := model.AsAPIError(err); ok {
		if data, mErr := utils.Json.MarshalIndent(apiErr, "", "  "); mErr == nil {
			fmt.Fprintln(os.Stderr, string(data))
			return
		}
	}
	if errors.Is(err, model.ErrNoTenant) {
		fmt.Fprintln(os.Stderr, "no gym selected, run `gymkit select` first")
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
