package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/atscan/internal/model"
	"github.com/amishk599/atscan/internal/session"
)

var predictCmd = &cobra.Command{
	Use:   "predict <file>",
	Short: "Submit one résumé and print the result",
	Long:  "One-shot: uploads the file to the prediction service, prints the result and exits. Any file type is forwarded.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	// Logs go to stderr so stdout carries only the result lines.
	logger := newLogger(cmd.ErrOrStderr(), debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl := newController(cfg, logger)
	defer ctrl.Close()

	ctrl.SelectFile(model.FileFromPath(args[0]))
	submitErr := ctrl.Submit(ctx)

	state := ctrl.State()
	if submitErr != nil {
		logger.Debug("submit failed", "error", submitErr)
		// Only the fixed user-facing message is surfaced.
		return errors.New(state.Error.Message)
	}

	out := cmd.OutOrStdout()
	for _, line := range session.ResultLines(*state.Result) {
		fmt.Fprintln(out, line)
	}
	return nil
}
