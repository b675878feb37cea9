package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ahmad-alkadri/editor-depot/internal/config"
	"github.com/ahmad-alkadri/editor-depot/internal/fetcher"
	"github.com/ahmad-alkadri/editor-depot/internal/metrics"
	"github.com/ahmad-alkadri/editor-depot/internal/server"
	"github.com/ahmad-alkadri/editor-depot/internal/settings"
	"github.com/ahmad-alkadri/editor-depot/internal/storage"
	"github.com/ahmad-alkadri/editor-depot/internal/ueditor"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:          "editor-depot",
		Short:        "Upload, catch and list files for a rich-text editor",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(v, configFile)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "optional server config file (yaml or json)")
	flags.StringP("port", "p", "", "listen port (SERVER_PORT)")
	flags.String("root", "", "storage and static root (STORAGE_ROOT)")
	flags.String("route", "", "controller route (UEDITOR_ROUTE)")
	flags.String("settings", "", "editor settings overrides file (UEDITOR_SETTINGS)")
	bindFlag(v, cmd, config.KeyServerPort, "port")
	bindFlag(v, cmd, config.KeyStorageRoot, "root")
	bindFlag(v, cmd, config.KeyRoute, "route")
	bindFlag(v, cmd, config.KeySettingsFile, "settings")
	return cmd
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// buildDispatcher assembles the controller from the server configuration.
func buildDispatcher(cfg *config.Config, reg prometheus.Registerer) (*ueditor.Dispatcher, error) {
	var overrides settings.Settings
	if cfg.SettingsFile != "" {
		loaded, err := settings.Load(cfg.SettingsFile)
		if err != nil {
			return nil, err
		}
		overrides = loaded
		log.Printf("Loaded editor settings from %s", cfg.SettingsFile)
	}

	disk, err := storage.NewDisk(cfg.StorageRoot, nil)
	if err != nil {
		return nil, err
	}

	observer, err := metrics.NewObserver("", reg)
	if err != nil {
		return nil, err
	}

	return ueditor.NewDispatcher(disk, fetcher.New(nil, cfg.CatcherTimeout), overrides,
		ueditor.WithObserver(observer),
		ueditor.WithCatcherConcurrency(cfg.CatcherConcurrency),
	)
}

func run(cfg *config.Config) error {
	log.Printf("Starting server with config: Port=%s, Root=%s, Route=%s", cfg.ServerPort, cfg.StorageRoot, cfg.Route)

	dispatcher, err := buildDispatcher(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to initialize controller: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv, err := server.New(server.Options{
		Port:         cfg.ServerPort,
		Route:        cfg.Route,
		StorageRoot:  cfg.StorageRoot,
		AllowOrigins: cfg.AllowOrigins,
		Dispatcher:   dispatcher,
		Gatherer:     prometheus.DefaultGatherer,
	})
	if err != nil {
		return err
	}
	srv.Start()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return srv.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	if exitCode != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", exitCode)
	}
	return nil
}
