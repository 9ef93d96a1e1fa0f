package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/amishk599/atscan/internal/tui"
)

const debugLogPath = "atscan-debug.log"

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive client (TUI)",
	Long:  "Choose a résumé, submit it to the prediction service and browse the result.",
	RunE:  runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Any log output to the terminal while the alt-screen is active corrupts
	// the display, so logs go to a file in debug mode and nowhere otherwise.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if debug {
		f, err := tea.LogToFile(debugLogPath, "atscan")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = newLogger(f, true)
	}

	logger.Info("starting ui", "service", cfg.Service.URL, "start_dir", cfg.UI.StartDir)
	ctrl := newController(cfg, logger)
	if err := tui.Run(ctrl, cfg.UI.StartDir, cfg.Service.URL); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
