// Package main provides the entry point for the lume-lsp language server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lume-lang/lume-lsp/lsp"
)

var version = "dev"

// LevelTrace is a custom log level below debug for verbose tracing.
const LevelTrace = slog.Level(-8)

// isCleanShutdown checks if an error represents a normal client disconnect.
// LSP clients commonly close stdio on exit, which should not be reported as fatal.
func isCleanShutdown(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, os.ErrClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") || strings.Contains(errStr, "EPIPE")
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "lume-lsp: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("lume-lsp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		verbose int
		logFile = fs.String("log-file", "", "log file path (empty to log to stderr)")
		root    = fs.String("root", "", "workspace root to use until the client's initialize request supplies one")
		showVer = fs.Bool("version", false, "print version and exit")
	)
	fs.BoolFunc("v", "increase log verbosity (repeatable: -v info, -v -v debug, -v -v -v trace)", func(string) error {
		verbose++
		return nil
	})

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lume-lsp [options]\n\n")
		fmt.Fprintf(os.Stderr, "Language Server for Lume.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.SetOutput(os.Stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		fs.Usage()
		return fmt.Errorf("parse flags: %w", err)
	}

	if *showVer {
		fmt.Printf("lume-lsp %s\n", version)
		return nil
	}

	logger, cleanup, err := setupLogger(verbose, *logFile)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer cleanup()

	logger.Info("starting lume-lsp", slog.String("version", version))

	workspaceRoot := *root
	if workspaceRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			workspaceRoot = wd
		}
	}

	srv := lsp.NewServer(logger, workspaceRoot)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.RunStdio() }()

	logger.Info("running on stdio")

	select {
	case err := <-errCh:
		if err != nil {
			if isCleanShutdown(err) {
				logger.Debug("client closed connection")
			} else {
				return fmt.Errorf("run server: %w", err)
			}
		}
		logger.Info("server shutdown complete")
		return nil

	case sig := <-sigCh:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		if err := srv.Close(); err != nil {
			logger.Warn("error closing connection", slog.String("error", err.Error()))
		}

		// Close stdin to unblock RunStdio's read operation. The JSON-RPC
		// connection's Close() doesn't close the underlying stdin, leaving
		// RunStdio blocked on os.Stdin.Read() when nothing else is reading it.
		if err := os.Stdin.Close(); err != nil {
			logger.Debug("error closing stdin", slog.String("error", err.Error()))
		}

		select {
		case err := <-errCh:
			if err != nil {
				logger.Debug("RunStdio returned after close", slog.String("error", err.Error()))
			}
		case <-time.After(5 * time.Second):
			logger.Warn("shutdown timed out, forcing exit")
		}

		logger.Info("server shutdown complete")
		return nil
	}
}

// setupLogger maps a -v repetition count to a log level: 0 warn, 1 info,
// 2 debug, 3+ trace (spec §6's verbosity-count CLI convention).
func setupLogger(verbosity int, logFile string) (*slog.Logger, func(), error) {
	var level slog.Level
	switch {
	case verbosity <= 0:
		level = slog.LevelWarn
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity == 2:
		level = slog.LevelDebug
	default:
		level = LevelTrace
	}

	var w io.Writer = os.Stderr
	cleanup := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		cleanup = func() { _ = f.Close() }
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: true})
	return slog.New(handler), cleanup, nil
}
