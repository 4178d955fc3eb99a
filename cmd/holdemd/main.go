// holdemd runs the multi-table hold'em game server: a JSON API plus a
// WebSocket event stream, with rule-based, LLM and human seats.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/feltlabs/holdemd/internal/config"
	"github.com/feltlabs/holdemd/internal/httpapi"
	"github.com/feltlabs/holdemd/internal/llm"
	"github.com/feltlabs/holdemd/internal/metrics"
	"github.com/feltlabs/holdemd/internal/registry"
)

type CLI struct {
	Config   string `short:"c" default:"holdemd.hcl" help:"Path to the HCL config file."`
	Addr     string `help:"Listen address override (host:port)."`
	LogLevel string `help:"Log level override (debug, info, warn, error)."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("holdemd"),
		kong.Description("Multi-session Texas Hold'em game server."),
	)
	kctx.FatalIfErrorf(run(cli))
}

func run(cli CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.LogLevel != "" {
		cfg.Server.LogLevel = cli.LogLevel
	}
	addr := cfg.Server.Addr()
	if cli.Addr != "" {
		addr = cli.Addr
	}

	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	m := metrics.New()

	var gw llm.Gateway
	if key := os.Getenv(cfg.LLM.APIKeyEnv); key != "" {
		gw = metrics.InstrumentGateway(
			llm.NewOpenRouter(cfg.LLM.BaseURL, key, cfg.LLM.RequestTimeout, logger), m)
		logger.Info("llm gateway enabled", "timeout", cfg.LLM.RequestTimeout)
	} else {
		logger.Warn("llm seats disabled, api key not set", "env", cfg.LLM.APIKeyEnv)
	}

	reg := registry.New(registry.Options{
		MaxGames:     cfg.Games.MaxConcurrent,
		GracePeriod:  cfg.Games.GracePeriod,
		LLMTimeout:   cfg.Games.LLMTimeout,
		HumanTimeout: cfg.Games.HumanTimeout,
		Gateway:      gw,
		Logger:       logger,
		Metrics:      m,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewServer(reg, m, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		reg.Close()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
