// Package cli implements the bucket command line client. Without a
// subcommand it opens the interactive list; subcommands perform a single
// change against the document endpoint and exit.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Dias221467/bucket-list/internal/bucket"
	"github.com/Dias221467/bucket-list/internal/config"
	"github.com/Dias221467/bucket-list/internal/persistence"
	"github.com/Dias221467/bucket-list/internal/tui"
	"github.com/Dias221467/bucket-list/pkg/logger"
	"github.com/spf13/cobra"
)

// version is overridden at build time.
var version = "dev"

type options struct {
	endpoint string
	timeout  time.Duration
	logLevel string
	logFile  string
}

// NewRootCmd builds the bucket command tree with defaults taken from cfg.
func NewRootCmd(cfg *config.ClientConfig) *cobra.Command {
	opts := &options{
		endpoint: cfg.APIURL,
		timeout:  cfg.Timeout,
		logLevel: cfg.LogLevel,
		logFile:  cfg.LogFile,
	}

	root := &cobra.Command{
		Use:   "bucket",
		Short: "Keep track of the things you want to do",
		Long: `bucket keeps a bucket list of goals in a document stored on the bucket server.

Run without arguments to open the interactive list.

Examples:
  # Open the interactive list
  bucket

  # Add a goal and list what is left
  bucket add See the northern lights
  bucket ls --filter active

  # Use a different server
  bucket --endpoint http://localhost:9000/api/bucket ls`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitLogger(logger.Options{
				Level:  opts.logLevel,
				Format: "text",
				Output: cmd.ErrOrStderr(),
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", opts.endpoint, "bucket document endpoint URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", opts.timeout, "timeout for each request to the endpoint")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level (debug, info, warn, error)")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newDoneCmd(opts))
	root.AddCommand(newRmCmd(opts))
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, cfg *config.ClientConfig) int {
	root := NewRootCmd(cfg)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), errorLine(err))
		return 1
	}
	return 0
}

func runInteractive(cmd *cobra.Command, opts *options) error {
	// The terminal belongs to the TUI, so logs go to a file or nowhere.
	out := io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger.InitLogger(logger.Options{Level: opts.logLevel, Output: out})

	endpoint, err := persistence.NewHTTPEndpoint(opts.endpoint, opts.timeout)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store := bucket.NewStore()
	syncer := persistence.New(store, endpoint, persistence.WithTimeout(opts.timeout))
	syncer.Start(ctx)
	defer syncer.Stop()

	if err := tui.Run(ctx, store, syncer); err != nil {
		return err
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	if err := syncer.Flush(flushCtx); err != nil {
		return fmt.Errorf("unsaved changes: %w", err)
	}
	return nil
}
