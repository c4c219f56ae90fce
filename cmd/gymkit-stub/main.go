package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/pprof"
	"github.com/ory/graceful"
	"github.com/spf13/cobra"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/gymstub"
	"github.com/naiba/gymkit/pkg/logger"
)

var (
	rootCmd = &cobra.Command{
		Use:   "gymkit-stub",
		Short: "In-memory gym API for local development",
		RunE:  run,
	}
	configPath string
	listen     string
	debug      bool
	empty      bool
)

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "data/config.yaml", "配置文件路径")
	rootCmd.Flags().StringVar(&listen, "listen", "", "监听地址，默认取配置 stub.listen")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "开启Debug，挂载 pprof")
	rootCmd.Flags().BoolVar(&empty, "empty", false, "不加载演示数据")
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	conf := &model.Config{}
	if err := conf.Read(configPath); err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		conf.Debug = debug
	}
	if listen == "" {
		listen = conf.Stub.Listen
	}

	log := logger.New(logger.Config{Name: "gymkit-stub", Debug: conf.Debug})
	stub := gymstub.New(gymstub.Config{
		JWTSecret: conf.Stub.JWTSecret,
		Logger:    log,
		Seed:      !empty,
	})
	if conf.Debug {
		pprof.Register(stub.Engine())
	}

	srv := graceful.WithDefaults(&http.Server{
		Addr:    listen,
		Handler: stub.Handler(),
	})
	log.WithField("listen", listen).WithField("api", "http://"+listen+gymstub.APIPrefix).Info("stub backend started")
	if err := graceful.Graceful(srv.ListenAndServe, srv.Shutdown); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("stub backend stopped")
	return nil
}
