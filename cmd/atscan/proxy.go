package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/atscan/internal/devproxy"
)

var listenAddr string

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the development proxy for /predict",
	Long:  "Forwards POST /predict to the prediction service; blocks until SIGINT/SIGTERM.",
	RunE:  runProxy,
}

func init() {
	proxyCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default: proxy.listen from config)")
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	addr := cfg.Proxy.Listen
	if listenAddr != "" {
		addr = listenAddr
	}

	srv := devproxy.New(cfg.Proxy.Target, cfg.Proxy.BodyLimit, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down proxy")
		if err := srv.Shutdown(); err != nil {
			logger.Error("proxy shutdown failed", "error", err)
		}
	}()

	if err := srv.Listen(addr); err != nil {
		logger.Error("proxy error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
