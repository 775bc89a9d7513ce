package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-cat-gallery/config"
	"github.com/aluiziolira/go-cat-gallery/fetcher"
	"github.com/aluiziolira/go-cat-gallery/gallery"
	"github.com/aluiziolira/go-cat-gallery/render"
	"github.com/aluiziolira/go-cat-gallery/stream"
	"github.com/aluiziolira/go-cat-gallery/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "Config file (default $HOME/.config/catgallery/config.yml)")

	// The config file and environment only provide flag defaults, so the
	// -config flag has to be known before the rest are declared.
	flag.CommandLine.Parse(configArgs(os.Args[1:]))
	loaded, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	endpoint := flag.String("endpoint", loaded.Endpoint, "Image-search endpoint URL")
	apiKey := flag.String("api-key", loaded.APIKey, "Optional API key sent as x-api-key")
	timeout := flag.Duration("timeout", loaded.Timeout, "HTTP request timeout")
	minLoading := flag.Duration("min-loading", loaded.MinLoading, "Minimum visible loading time after a successful fetch")
	maxBody := flag.Int("max-body-bytes", loaded.MaxBodyBytes, "Largest response body accepted, in bytes (0 = unlimited)")
	headless := flag.Bool("headless", loaded.Headless, "Write records instead of starting the terminal UI")
	count := flag.Int("count", loaded.Count, "Headless: number of photos to fetch (0 = until interrupted)")
	interval := flag.Duration("interval", loaded.Interval, "Headless: pause between attempts")
	format := flag.String("format", loaded.OutputFormat, "Headless output format: text, csv, or json")
	verify := flag.Bool("verify", loaded.Verify, "Headless: download and decode every photo")
	metricsAddr := flag.String("metrics-addr", loaded.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	logFile := flag.String("log-file", loaded.LogFile, "Log destination; the terminal UI discards logs when empty")
	verbose := flag.Bool("v", loaded.Verbose, "Enable verbose logging")

	flag.Parse()

	cfg := *loaded
	cfg.Endpoint = *endpoint
	cfg.APIKey = *apiKey
	cfg.Timeout = *timeout
	cfg.MinLoading = *minLoading
	cfg.MaxBodyBytes = *maxBody
	cfg.Headless = *headless || !isTerminal(os.Stdout)
	cfg.Count = *count
	cfg.Interval = *interval
	cfg.OutputFormat = strings.ToLower(*format)
	cfg.Verify = *verify
	cfg.MetricsAddr = *metricsAddr
	cfg.LogFile = *logFile
	cfg.Verbose = *verbose

	logger, closeLog, err := newLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg); err != nil {
		slog.Error("gallery failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	client, err := fetcher.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("initialising fetcher: %w", err)
	}
	metrics := gallery.NewMetrics()
	loader := render.NewLoader(client)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)
	defer cancelRun()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancelRun()
		if metricsServer != nil {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := metricsServer.Shutdown(shutdownCtx); err != nil {
					slog.Error("metrics server shutdown failed", slog.Any("error", err))
				}
			}()
		}
		if cfg.Headless {
			return runHeadless(runCtx, cfg, client, loader, metrics)
		}
		return runTUI(runCtx, cfg, client, loader, metrics)
	})

	return g.Wait()
}

func runTUI(ctx context.Context, cfg *config.Config, client *fetcher.Client, loader *render.Loader, metrics *gallery.Metrics) error {
	surface := tui.NewSurface()
	ctrl := gallery.New(client, surface, surface, gallery.Options{
		MinLoading: cfg.MinLoading,
		Metrics:    metrics,
	})

	model := tui.NewModel(ctx, ctrl, loader)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	surface.Attach(p)

	slog.Info("starting terminal gallery", slog.String("endpoint", cfg.Endpoint))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("terminal UI requires a real terminal, use -headless")
		}
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}

func runHeadless(ctx context.Context, cfg *config.Config, client *fetcher.Client, loader *render.Loader, metrics *gallery.Metrics) error {
	writer, err := stream.NewWriter(cfg.OutputFormat, os.Stdout)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	surface := stream.NewSurface(writer)
	ctrl := gallery.New(client, surface, surface, gallery.Options{
		MinLoading: cfg.MinLoading,
		Metrics:    metrics,
	})

	opts := stream.RunOptions{
		Count:    cfg.Count,
		Interval: cfg.Interval,
	}
	if cfg.Verify {
		opts.Loader = loader
	}

	slog.Info("starting headless gallery",
		slog.String("endpoint", cfg.Endpoint),
		slog.Int("count", cfg.Count),
		slog.String("format", cfg.OutputFormat),
	)
	summary, err := stream.Run(ctx, ctrl, surface, opts)
	if summary != nil && cfg.Verbose {
		printSummary(os.Stderr, summary)
	}
	if err != nil {
		return err
	}
	if summary.Attempts > 0 && summary.Failed == summary.Attempts {
		return fmt.Errorf("all %d attempts failed", summary.Attempts)
	}
	return nil
}

func printSummary(w io.Writer, s *stream.Summary) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "Gallery run complete")
	fmt.Fprintf(w, "  Attempts:   %d\n", s.Attempts)
	fmt.Fprintf(w, "  Succeeded:  %d\n", s.Succeeded)
	fmt.Fprintf(w, "  Failed:     %d\n", s.Failed)
	if s.Ignored > 0 {
		fmt.Fprintf(w, "  Ignored:    %d\n", s.Ignored)
	}
	fmt.Fprintf(w, "  Duration:   %v\n", s.EndTime.Sub(s.StartTime))
	fmt.Fprintln(w, separator)
}

// configArgs picks -config out of args so it can be parsed ahead of the
// flags whose defaults depend on it.
func configArgs(args []string) []string {
	for i, arg := range args {
		name := strings.TrimLeft(arg, "-")
		switch {
		case arg == "--":
			return nil
		case !strings.HasPrefix(arg, "-"):
			continue
		case strings.HasPrefix(name, "config="):
			return []string{arg}
		case name == "config" && i+1 < len(args):
			return []string{arg, args[i+1]}
		}
	}
	return nil
}

func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := &slog.LevelVar{}
	if cfg.Verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	opts := &slog.HandlerOptions{Level: level}

	closeFn := func() {}
	var out io.Writer
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { f.Close() }
	case cfg.Headless:
		// stdout carries the records
		out = os.Stderr
	default:
		out = io.Discard
	}

	var handler slog.Handler
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler), closeFn, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
