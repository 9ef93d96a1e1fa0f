package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/atscan/internal/config"
	"github.com/amishk599/atscan/internal/predict"
	"github.com/amishk599/atscan/internal/session"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "atscan",
	Short: "Résumé analyzer client",
	Long:  "atscan uploads a résumé to the prediction service and shows its category, ATS score, highlighted skills and suggested role.",
	// Default to the interactive client.
	RunE:         runUI,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: ATSCAN_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > ATSCAN_CONFIG env var > "./config.yaml".
// A missing ./config.yaml falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("ATSCAN_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); errors.Is(err, os.ErrNotExist) {
			return config.LoadDefault()
		}
		path = defaultConfigPath
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stdout, dbg)
}

func newLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// newController wires the prediction client into a session controller.
func newController(cfg *config.Config, logger *slog.Logger) *session.Controller {
	httpClient := &http.Client{Timeout: cfg.Service.Timeout}
	client := predict.NewClient(cfg.Service.URL, httpClient, logger)
	return session.NewController(client, cfg.UI.ErrorDismiss, logger)
}
