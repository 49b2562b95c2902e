package config

import "github.com/spf13/pflag"

// Flags are the command-line overrides. They win over the file and the
// environment, but only when set explicitly.
type Flags struct {
	set *pflag.FlagSet

	configPath string
	host       string
	port       int
	staticDir  string
	backendURL string
	basePath   string
	pidFile    string
	logFile    string
	debug      bool
}

// BindFlags registers the config flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	f := &Flags{set: fs}
	fs.StringVar(&f.configPath, "config", d.ConfigPath, "Path to config.yaml")
	fs.StringVar(&f.host, "host", d.Host, "Interface to listen on")
	fs.IntVar(&f.port, "port", d.Port, "HTTP port")
	fs.StringVar(&f.staticDir, "static-dir", d.StaticDir, "Directory with the game's HTML/JS/CSS")
	fs.StringVar(&f.backendURL, "backend-url", "", "Backend API URL injected into pages")
	fs.StringVar(&f.basePath, "base-path", d.BasePath, "Base URL path for reverse proxy")
	fs.StringVar(&f.pidFile, "pid-file", d.PidFile, "PID file path")
	fs.StringVar(&f.logFile, "log-file", d.LogFile, "Log file path")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug mode (live reload)")
	return f
}

// ConfigPath returns the config file location from --config.
func (f *Flags) ConfigPath() string { return f.configPath }

// Apply copies every explicitly set flag onto cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.set.Changed("host") {
		cfg.Host = f.host
	}
	if f.set.Changed("port") {
		cfg.Port = f.port
	}
	if f.set.Changed("static-dir") {
		cfg.StaticDir = f.staticDir
	}
	if f.set.Changed("backend-url") {
		cfg.BackendURL = f.backendURL
	}
	if f.set.Changed("base-path") {
		cfg.BasePath = normalizeBasePath(f.basePath)
	}
	if f.set.Changed("pid-file") {
		cfg.PidFile = f.pidFile
	}
	if f.set.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if f.set.Changed("debug") {
		cfg.Debug = f.debug
	}
}

// Args rebuilds the flags needed to hand the resolved config to a child
// process.
func (f *Flags) Args() []string {
	var args []string
	f.set.VisitAll(func(fl *pflag.Flag) {
		if fl.Changed {
			args = append(args, "--"+fl.Name+"="+fl.Value.String())
		}
	})
	return args
}
