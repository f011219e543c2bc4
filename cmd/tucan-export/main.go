package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/d120/tucan-export/config"
	"github.com/d120/tucan-export/models"
	"github.com/d120/tucan-export/pipeline"
	"github.com/d120/tucan-export/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultConfig()

	baseURLDefault := defaultCfg.BaseURL
	if value, ok := config.EnvString("TUCAN_BASE_URL"); ok {
		baseURLDefault = value
	}
	booksAPIDefault := defaultCfg.BooksAPIURL
	if value, ok := config.EnvString("TUCAN_BOOKS_API_URL"); ok {
		booksAPIDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("TUCAN_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	cacheDefault := defaultCfg.CacheSize
	if value, ok, err := config.EnvInt("TUCAN_CACHE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid TUCAN_CACHE_SIZE: %v\n", err)
		os.Exit(1)
	} else if ok {
		cacheDefault = value
	}

	baseURL := flag.String("base-url", baseURLDefault, "Course catalog base URL")
	startPath := flag.String("start-path", defaultCfg.StartPath, "Catalog entry page path")
	department := flag.String("department", defaultCfg.DepartmentTitle, "Department list entry title to descend into")
	exclude := flag.String("exclude", strings.Join(defaultCfg.ExcludedPrograms, ","), "Comma-separated program names to skip while crawling")
	booksAPIURL := flag.String("books-api-url", booksAPIDefault, "Books metadata API base URL")
	pageDelayMs := flag.Int("page-delay", int(defaultCfg.PageDelay/time.Millisecond), "Delay between catalog page loads (milliseconds)")
	resolveDelayMs := flag.Int("resolve-delay", int(defaultCfg.ResolveDelay/time.Millisecond), "Delay between metadata API calls (milliseconds)")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "HTTP timeout (seconds)")
	cacheSize := flag.Int("cache-size", cacheDefault, "Resolution cache size (entries)")
	outputDir := flag.String("output-dir", "", "Output directory (defaults to the semester label)")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <semester> <api-key>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.BaseURL = *baseURL
	cfg.StartPath = *startPath
	cfg.DepartmentTitle = *department
	cfg.ExcludedPrograms = splitList(*exclude)
	cfg.BooksAPIURL = *booksAPIURL
	cfg.PageDelay = time.Duration(*pageDelayMs) * time.Millisecond
	cfg.ResolveDelay = time.Duration(*resolveDelayMs) * time.Millisecond
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.CacheSize = *cacheSize
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	cfg.Semester = args[0]
	cfg.APIKey = args[1]
	cfg.OutputDir = *outputDir
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.Semester
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting export",
		slog.String("base_url", cfg.BaseURL),
		slog.String("department", cfg.DepartmentTitle),
		slog.String("semester", cfg.Semester),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	agg := pipeline.NewAggregator()
	if err := s.Run(ctx, agg); err != nil {
		slog.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := pipeline.Export(cfg.OutputDir, agg); err != nil {
		slog.Error("writing export files", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(agg.Summary(), cfg.OutputDir)
}

func printSummary(s models.Summary, outputDir string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Export complete")
	fmt.Printf("  Modules:       %d processed, %d skipped, %d failed\n", s.ModulesProcessed, s.ModulesSkipped, s.ModulesFailed)
	fmt.Printf("  Books:         %d added, %d duplicate, %d ignored\n", s.BooksAdded, s.BooksDuplicate, s.BooksIgnored)
	fmt.Printf("  Categories:    %d\n", s.Categories)
	fmt.Printf("  Duration:      %v\n", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))
	fmt.Printf("  Output dir:    %s\n", outputDir)
	fmt.Println(separator)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
