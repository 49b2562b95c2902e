//go:build windows

package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/1di210299/Music-Bingo/internal/config"
)

var shutdownSignals = []os.Signal{os.Interrupt}

var errNoDaemon = errors.New("daemon mode is not supported on Windows. Use 'run' for foreground execution")

func cmdStart(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start daemon (not supported on Windows)",
		RunE:  func(cmd *cobra.Command, args []string) error { return errNoDaemon },
	}
}

func cmdStop(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop daemon (not supported on Windows)",
		RunE:  func(cmd *cobra.Command, args []string) error { return errNoDaemon },
	}
}

func cmdStatus(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status (not supported on Windows)",
		RunE:  func(cmd *cobra.Command, args []string) error { return errNoDaemon },
	}
}
