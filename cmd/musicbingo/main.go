package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/1di210299/Music-Bingo/internal/api"
	"github.com/1di210299/Music-Bingo/internal/config"
	"github.com/1di210299/Music-Bingo/internal/reload"
)

var version = "dev"

const reloadDebounce = 200 * time.Millisecond

func main() {
	log.SetOutput(os.Stdout)

	root := &cobra.Command{
		Use:          "musicbingo",
		Short:        "Music Bingo frontend server",
		Long:         "Serves the Music Bingo game assets and injects the backend URL into every HTML page.",
		SilenceUsage: true,
	}
	flags := config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		cmdRun(flags),
		cmdStart(flags),
		cmdStop(flags),
		cmdStatus(flags),
		cmdNginx(flags),
		cmdVersion(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: defaults < config.yaml < env vars < flags.
func loadConfig(flags *config.Flags) (config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath(), os.LookupEnv)
	if err != nil {
		return config.Config{}, err
	}
	flags.Apply(&cfg)
	return cfg, nil
}

func cmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("musicbingo %s\n", version)
		},
	}
}

// ---------------------------------------------------------------------------
// run: foreground server (also used by daemon child)
// ---------------------------------------------------------------------------

func cmdRun(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run in foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	if info, err := os.Stat(cfg.StaticDir); err != nil {
		return fmt.Errorf("static dir: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("static dir %s is not a directory", cfg.StaticDir)
	}
	assets := os.DirFS(cfg.StaticDir)

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	var hub *reload.Hub
	if cfg.Debug {
		hub = reload.NewHub()
		watcher := reload.NewWatcher(cfg.StaticDir, reloadDebounce, hub.Reload)
		if err := watcher.Start(ctx); err != nil {
			log.Printf("[startup] live reload disabled: %v", err)
		} else {
			defer watcher.Stop()
			log.Printf("[startup] debug mode: live reload watching %s", cfg.StaticDir)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Listen(),
		Handler:           api.NewRouter(cfg, assets, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[startup] Music Bingo %s listening on http://%s (base_path: %s)", version, cfg.Listen(), cfg.BasePath)
		if cfg.BackendURL != "" {
			log.Printf("[startup] backend URL: %s", cfg.BackendURL)
		} else {
			log.Printf("[startup] backend URL: not configured, resolved per request (local: %s)", cfg.LocalBackendURL)
		}
		log.Printf("[startup] serving %s on / from %s", cfg.IndexFile, cfg.StaticDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", cfg.Listen(), err)
	}
	log.Println("shutting down...")

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("[shutdown] %v", err)
	}

	// Only the daemon child owns the PID file
	if pid, err := readPidFile(cfg.PidFile); err == nil && pid == os.Getpid() {
		os.Remove(cfg.PidFile)
	}
	log.Println("goodbye")
	return nil
}

// ---------------------------------------------------------------------------
// nginx: print sample nginx config
// ---------------------------------------------------------------------------

func cmdNginx(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "nginx",
		Short: "Print sample nginx reverse proxy configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			fmt.Print(nginxConfig(cfg))
			return nil
		},
	}
}

func nginxConfig(cfg config.Config) string {
	var b strings.Builder

	bp := cfg.BasePath
	if bp == "/" {
		bp = "/bingo"
		b.WriteString("# base_path is \"/\" - using \"/bingo\" as example.\n")
		b.WriteString("# Set base_path in config.yaml to match your desired location.\n\n")
	}

	// Ensure trailing slash for nginx location
	loc := bp + "/"

	fmt.Fprintf(&b, `# --------------------------------------------------
# nginx reverse proxy configuration for Music Bingo
# --------------------------------------------------
# Add this inside an http { server { ... } } block.

location %s {
    proxy_pass         http://127.0.0.1:%d;
    proxy_http_version 1.1;

    # WebSocket support (live reload in debug mode)
    proxy_set_header   Upgrade $http_upgrade;
    proxy_set_header   Connection "upgrade";

    # Forward client info; the injected backend URL follows these
    proxy_set_header   Host              $host;
    proxy_set_header   X-Real-IP         $remote_addr;
    proxy_set_header   X-Forwarded-For   $proxy_add_x_forwarded_for;
    proxy_set_header   X-Forwarded-Host  $host;
    proxy_set_header   X-Forwarded-Proto $scheme;
}
`, loc, cfg.Port)

	b.WriteString("# config.yaml should have:\n")
	fmt.Fprintf(&b, "#   base_path: \"%s\"\n", bp)
	return b.String()
}

// ---------------------------------------------------------------------------
// PID file helpers
// ---------------------------------------------------------------------------

func writePidFile(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in %s", path)
	}
	return pid, nil
}
