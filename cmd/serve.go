package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xiaot623/fmuweb/api"
	"github.com/xiaot623/fmuweb/config"
	"github.com/xiaot623/fmuweb/fmi"
	"github.com/xiaot623/fmuweb/service"
	"github.com/xiaot623/fmuweb/store"
	"github.com/xiaot623/fmuweb/store/runlog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}
		if cfg.Debug {
			logrus.SetLevel(logrus.DebugLevel)
		}

		logrus.Infof("Starting fmuweb on %s:%d", cfg.Host, cfg.Port)
		logrus.Infof("Store backend: %s", cfg.StoreBackend)
		logrus.Infof("Engine: %s", cfg.EngineURL)

		// Leftovers from crashed processes are reaped before serving.
		if removed := store.Sweep(cfg.UploadDir, cfg.MaxUploadAge); removed > 0 {
			logrus.Infof("Startup cleanup: removed %d old file(s)", removed)
		}

		var artifacts store.ArtifactStore
		switch cfg.StoreBackend {
		case config.BackendDisk:
			disk, err := store.NewDiskStore(cfg.UploadDir)
			if err != nil {
				logrus.Fatalf("Failed to initialize disk store: %v", err)
			}
			artifacts = disk
		default:
			artifacts = store.NewMemoryStore()
		}

		var history *runlog.Log
		if cfg.RunLogPath != "" {
			history, err = runlog.Open(cfg.RunLogPath)
			if err != nil {
				logrus.Fatalf("Failed to open run log: %v", err)
			}
			defer history.Close()
		}

		engine := fmi.NewClient(cfg.EngineURL)
		runner := service.NewRunner(artifacts, engine, engine, history)
		h := api.NewHandler(artifacts, runner, engine, engine)

		e := echo.New()
		e.HideBanner = true
		e.Use(middleware.Logger())
		e.Use(middleware.Recover())
		e.Use(middleware.CORS())

		h.RegisterRoutes(e)
		e.Static("/", cfg.StaticDir)

		go func() {
			addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
			if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
				logrus.Fatalf("Failed to start server: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logrus.Info("Shutting down, clearing session...")
		report := artifacts.Clear()
		logrus.Infof("Session cleared: %s", report)
		for _, clearErr := range report.Errors {
			logrus.Warn(clearErr)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logrus.Warnf("Failed to shutdown server gracefully: %v", err)
		}

		logrus.Info("fmuweb stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
