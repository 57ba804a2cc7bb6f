// rsaviz is a terminal front end for the RSA learning tools.
//
// Usage:
//
//	rsaviz wizard
//	rsaviz map -p 7 -q 11 -e 17 -from 0 -to 20 -speed 80 -layout elliptical
//	rsaviz mitm -p 23 -g 5 -msg "meet at noon"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/rsaviz/internal/config"
	"github.com/udisondev/rsaviz/internal/db"
)

const ConfigPath = "config/rsaviz.yaml"

var errUsage = errors.New("usage: rsaviz <wizard|map|mitm> [flags]")

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfgPath := ConfigPath
	if p := os.Getenv("RSAVIZ_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout belongs to the rendered output
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	rec := recorder{ctx: ctx}
	if cfg.Database.Enabled {
		journal, closeFn, err := openJournal(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer closeFn()
		rec.journal = journal
	}

	switch args[0] {
	case "wizard":
		return runWizard(ctx, in, out, rec.key(db.SourceWizard))
	case "map":
		return runMap(ctx, cfg, args[1:], out, rec.key(db.SourceMap))
	case "mitm":
		return runMITM(cfg.MITM, args[1:], out, rec.exchange)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}
