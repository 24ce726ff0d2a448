// Command tessera-demo runs an interactive tour of the rendering engine:
// a scene tree composited over a double-buffered cell grid, alpha
// blending, mouse dragging, cross-node text selection, and live config
// reload. It doubles as a smoke test for terminal backends.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"golang.org/x/term"

	"github.com/okanek/tessera/pkg/backend"
	tcellbackend "github.com/okanek/tessera/pkg/backend/tcell"
	"github.com/okanek/tessera/pkg/config"
	"github.com/okanek/tessera/pkg/engine"
	"github.com/okanek/tessera/pkg/logging"
	"github.com/okanek/tessera/pkg/telemetry"
)

// Version information - set via ldflags during build
var (
	version   = "1.0.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML config file, watched for changes")
		fps         = flag.Int("fps", 0, "override the target frames per second")
		metricsAddr = flag.String("metrics", "", "override the debug/metrics listen address")
		noMetrics   = flag.Bool("no-metrics", false, "disable the debug/metrics server")
		noColor     = flag.Bool("no-color", false, "plain diagnostic output")
		showCaps    = flag.Bool("caps", false, "print detected terminal capabilities and exit")
		showVersion = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	out := newOutput(*noColor)

	if *showVersion {
		printVersion()
		return
	}
	if *showCaps {
		printCapabilities(out)
		return
	}

	opts, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *fps > 0 {
		opts.TargetFPS = *fps
	}
	if *metricsAddr != "" {
		opts.MetricsAddr = *metricsAddr
	}
	if *noMetrics {
		opts.MetricsAddr = ""
	}
	// Flag overrides bypass Load's validation, so check again.
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if !isInteractiveTerminal() {
		fmt.Fprintln(os.Stderr, "Error: tessera-demo needs an interactive terminal on stdin and stdout")
		os.Exit(1)
	}

	os.Exit(run(out, opts, *configPath))
}

func run(out *output, opts config.Options, configPath string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := logging.Nop()
	if opts.Logging.Enabled {
		l, err := logging.New(resolveLogDir(opts.Logging.Dir), logging.NewSessionID())
		if err != nil {
			out.Warn("logging disabled: %v", err)
		} else {
			l.SetMinLevel(logging.Level(opts.Logging.Level))
			log = l
			defer log.Close()
		}
	}

	b, err := tcellbackend.New()
	if err != nil {
		out.Error("terminal init: %v", err)
		return 1
	}

	metrics := telemetry.NewRegistry()
	var prom *telemetry.PromExporter
	if opts.MetricsAddr != "" {
		prom = telemetry.NewPromExporter()
	}

	r, err := engine.New(engine.Config{
		Backend: b,
		Options: opts,
		Logger:  log,
		Metrics: metrics,
		Prom:    prom,
	})
	if err != nil {
		out.Error("engine init: %v", err)
		return 1
	}
	r.SetTitle("tessera demo")

	d, err := buildScene(r, opts)
	if err != nil {
		r.Close()
		out.Error("scene setup: %v", err)
		return 1
	}
	d.bind(cancel)

	var serverErr <-chan error
	if opts.MetricsAddr != "" {
		serverErr = startDebugServer(ctx, log, opts.MetricsAddr, metrics, prom)
	}

	if configPath != "" {
		watchConfig(ctx, configPath, log, r)
	}

	runErr := r.Run(ctx)

	// The terminal is restored; diagnostics are readable again.
	if runErr != nil && !stderrors.Is(runErr, context.Canceled) {
		out.Error("engine: %v", runErr)
		return 1
	}
	select {
	case err := <-serverErr:
		out.Warn("debug server: %v", err)
	default:
	}
	if d.copied != "" {
		out.Header("copied selection")
		out.Println("%s", d.copied)
	}
	stats := r.Stats()
	out.Success("clean shutdown after %d frames (%.1f fps)", stats.Frames, stats.FPS)
	return 0
}

// watchConfig applies live config edits on the frame goroutine. Watcher
// setup failure downgrades to a warning in the log; the session keeps the
// options it started with.
func watchConfig(ctx context.Context, path string, log *logging.Logger, r *engine.Renderer) {
	reloads, err := config.Watch(ctx, path, log)
	if err != nil {
		log.Warn(logging.CategoryConfig, "watch_unavailable", "config watching disabled", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	go func() {
		for opts := range reloads {
			if err := r.Do(func() { r.ApplyOptions(opts) }); err != nil {
				log.Warn(logging.CategoryConfig, "reload_dropped", "config reload not applied", map[string]any{
					"error": err.Error(),
				})
			}
		}
	}()
}

func resolveLogDir(dir string) string {
	if dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tessera")
	}
	return filepath.Join(home, ".tessera", "logs")
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) &&
		term.IsTerminal(int(os.Stdout.Fd()))
}

func printVersion() {
	fmt.Printf("tessera-demo %s\n", version)
	if commit != "unknown" {
		fmt.Printf("  Commit:     %s\n", commit)
	}
	if buildDate != "unknown" {
		fmt.Printf("  Built:      %s\n", buildDate)
	}
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

func printCapabilities(out *output) {
	caps := backend.Detect()
	out.Header("terminal capabilities")
	out.KeyValue("color mode", caps.ColorMode.String())
	out.KeyValue("mouse", fmt.Sprintf("%t", caps.Mouse))
	out.KeyValue("alternate screen", fmt.Sprintf("%t", caps.AlternateScreen))
}
