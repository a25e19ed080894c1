// Command draftcast bridges an editor to a subscriber-notification service:
// it speaks the editor protocol on stdin/stdout and streams draft snapshots
// over one persistent websocket.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/draftcast/draftcast/internal/channel"
	"github.com/draftcast/draftcast/internal/config"
	"github.com/draftcast/draftcast/internal/editor"
	"github.com/draftcast/draftcast/internal/logger"
	"github.com/draftcast/draftcast/internal/relay"
)

type options struct {
	dir      string
	url      string
	token    string
	logLevel string
	logPath  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "draftcast",
		Short: "Stream live markdown drafts from your editor to a blog",
		Long: `draftcast runs as an editor language server on stdio and forwards the
document you are writing to a subscriber-notification service over a single
long-lived websocket. Snapshots go out at word boundaries and on save.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.Flags().StringVarP(&opts.dir, "dir", "d", ".", "project directory to resolve "+config.ProjectFileName+" from")
	root.Flags().StringVar(&opts.url, "url", "", "endpoint URL (overrides file and environment)")
	root.Flags().StringVar(&opts.token, "token", "", "auth token (overrides file and environment)")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error, none")
	root.Flags().StringVar(&opts.logPath, "log-file", "", "log file path")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the draftcast version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "draftcast %s\n", editor.Version)
		},
	})

	return root
}

func runServe(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.dir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.url != "" {
		cfg.URL = opts.url
	}
	if opts.token != "" {
		cfg.Token = opts.token
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logPath != "" {
		cfg.LogPath = opts.logPath
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Global().Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := channel.New(&channel.Config{URL: cfg.URL, Token: cfg.Token})
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start channel client: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		_ = client.Stop(stopCtx)
	}()

	// An unreachable endpoint at startup is not fatal: the client dials
	// again on the next join or push.
	if err := client.Connect(ctx); err != nil {
		logger.Warn("Initial connect failed, streaming paused until the endpoint is reachable: %v", err)
	}

	watcher, err := config.NewWatcher(opts.dir, func(fresh *config.Config) {
		client.SetEndpoint(fresh.URL, fresh.Token)
	})
	if err != nil {
		logger.Warn("Config watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	srv := editor.NewServer(os.Stdin, os.Stdout, relay.New(client).OnEvent)
	logger.Info("draftcast %s serving the editor protocol on stdio (endpoint %s)", editor.Version, cfg.URL)
	return srv.Run(ctx)
}
