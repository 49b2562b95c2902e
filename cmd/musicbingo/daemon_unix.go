//go:build !windows

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/1di210299/Music-Bingo/internal/config"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

const stopTimeout = 10 * time.Second

var errNotRunning = errors.New("musicbingo is not running")

// start daemonizes by re-exec with the "run" subcommand.
func cmdStart(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start daemon (background)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			if pid, ok := runningPID(cfg); ok {
				return fmt.Errorf("musicbingo is already running (PID %d)", pid)
			}

			// Forward every explicitly set flag to the child
			childArgs := append([]string{"run"}, flags.Args()...)

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to find executable: %w", err)
			}

			logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
			}
			defer logFile.Close()

			child := &exec.Cmd{
				Path:   exe,
				Args:   append([]string{filepath.Base(exe)}, childArgs...),
				Stdout: logFile,
				Stderr: logFile,
				SysProcAttr: &syscall.SysProcAttr{
					Setsid: true, // detach from terminal
				},
			}

			if err := child.Start(); err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			pid := child.Process.Pid
			if err := writePidFile(cfg.PidFile, pid); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to write PID file: %v\n", err)
			}

			// Release the child; parent exits
			child.Process.Release()

			fmt.Printf("musicbingo started (PID %d)\n", pid)
			printDaemonInfo(cfg)
			return nil
		},
	}
}

func cmdStop(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			pid, ok := runningPID(cfg)
			if !ok {
				return errNotRunning
			}

			if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
				return fmt.Errorf("signal PID %d: %w", pid, err)
			}

			deadline := time.Now().Add(stopTimeout)
			for processExists(pid) {
				if time.Now().After(deadline) {
					os.Remove(cfg.PidFile)
					return fmt.Errorf("PID %d still running after %s", pid, stopTimeout)
				}
				time.Sleep(100 * time.Millisecond)
			}
			os.Remove(cfg.PidFile)
			fmt.Printf("musicbingo stopped (PID %d)\n", pid)
			return nil
		},
	}
}

func cmdStatus(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			pid, ok := runningPID(cfg)
			if !ok {
				return errNotRunning
			}
			fmt.Printf("musicbingo is running (PID %d)\n", pid)
			printDaemonInfo(cfg)
			return nil
		},
	}
}

// runningPID reports the daemon's PID if its PID file points at a live
// process. A stale PID file is removed.
func runningPID(cfg config.Config) (int, bool) {
	pid, err := readPidFile(cfg.PidFile)
	if err != nil {
		return 0, false
	}
	if !processExists(pid) {
		os.Remove(cfg.PidFile)
		return 0, false
	}
	return pid, true
}

func printDaemonInfo(cfg config.Config) {
	fmt.Printf("  Listen : http://%s\n", cfg.Listen())
	fmt.Printf("  Base   : %s\n", cfg.BasePath)
	fmt.Printf("  Assets : %s\n", cfg.StaticDir)
	fmt.Printf("  Config : %s\n", cfg.ConfigPath)
	fmt.Printf("  PID    : %s\n", cfg.PidFile)
	fmt.Printf("  Log    : %s\n", cfg.LogFile)
}

// processExists sends signal 0, which only checks that pid is alive.
func processExists(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
