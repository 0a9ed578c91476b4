package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gary-kim/maps/internal/cli"
	"github.com/gary-kim/maps/internal/cmd"
	"github.com/gary-kim/maps/internal/config"
	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/hook"
	"github.com/gary-kim/maps/internal/logging"
	"github.com/gary-kim/maps/internal/metrics"
	"github.com/gary-kim/maps/internal/output"
	"github.com/gary-kim/maps/internal/photos"
	"github.com/gary-kim/maps/internal/share"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.DefaultConfig()

	// Custom flag set to avoid os.Exit on parse error
	flags := flag.NewFlagSet("maps-cli", flag.ContinueOnError)
	flags.SetInterspersed(false) // Stop parsing at first non-flag arg (the command)
	cfg.RegisterFlags(flags)
	showVersion := flags.Bool("version", false, "Show version and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	cfg.Args = flags.Args()

	if *showVersion {
		fmt.Printf("maps-cli %s\n", version)
		return 0
	}

	if err := logging.Init(cfg.Logging()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: logging: %s\n", err)
		return 2
	}
	defer logging.Sync()
	logger := logging.L()

	if !cfg.ShouldColor() {
		color.NoColor = true
	}
	formatter := output.NewFormatter(cfg.JSON, cfg.ShouldColor())

	opts, err := cfg.RedisOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	ctx := context.Background()
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot connect to Redis at %s: %s\n", cfg.Addr(), err)
		return 1
	}
	defer rdb.Close()

	fsClient := fs.NewClient(rdb, cfg.Volume)
	if err := fsClient.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize volume: %s\n", err)
		return 1
	}

	shares := share.NewManager(rdb, cfg.Volume, fsClient, fsClient.Events())
	index := photos.NewService(rdb, cfg.Volume, fsClient, logging.Named("photos"), photos.WithCoverage(shares))
	hook.NewFileHooks(fsClient, index, logging.Named("hooks")).Register(fsClient.Events())

	router := cmd.NewRouter(fsClient, shares, index, cfg, formatter)
	if err := router.EnsureUser(ctx, cfg.User); err != nil {
		fmt.Fprintf(os.Stderr, "Error: user '%s': %s\n", cfg.User, err)
		return 1
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, logger)
		defer shutdown(srv)
	}

	logger.Info("started",
		zap.String("addr", cfg.Addr()),
		zap.String("volume", cfg.Volume),
		zap.String("user", cfg.User),
	)

	// Single-command mode
	if len(cfg.Args) > 0 {
		line := strings.Join(cfg.Args, " ")
		if err := router.Execute(ctx, line); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return 1
		}
		return 0
	}

	repl := cli.NewREPL(router, fsClient, cfg, formatter)
	if err := repl.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
