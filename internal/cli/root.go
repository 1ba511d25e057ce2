// Package cli provides the amscrape command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handiism/applemusic-scraper/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

type settingsKey struct{}

type loggerKey struct{}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile   string
		verbose   bool
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "amscrape",
		Short: "Extract structured metadata from Apple Music catalog pages",
		Long: `amscrape fetches music.apple.com pages (songs, albums, artists, playlists,
rooms, music videos, search results and "see all" listings) and turns the data
embedded in them into JSON records.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			path := cfgFile
			if path == "" {
				path = config.DefaultPath()
			}
			settings, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), logFormat, verbose)
			if err != nil {
				return err
			}
			logger.Debug("settings loaded", "path", path, "storefront", settings.Storefront)

			ctx := context.WithValue(cmd.Context(), settingsKey{}, settings)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: "+config.DefaultPath()+")")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	flags.StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
	flags.String("storefront", "", "Storefront country code used to build search URLs")
	flags.String("user-agent", "", "User-Agent header sent with every request")
	flags.Float64("timeout", 0, "Request timeout in seconds")
	flags.Float64("requests-per-second", 0, "Request rate limit (0 disables)")
	flags.Int("max-retries", 0, "Retries of failed or throttled requests")
	flags.Int("max-concurrent", 0, "Pages processed in parallel")
	flags.Int("artwork-size", 0, "Edge length substituted into artwork URL templates")
	flags.Bool("notes-markdown", false, "Convert HTML in captions and biographies to Markdown")
	flags.StringP("output-path", "o", "", "Output directory template ({kind}, {artist}, {title})")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newExtractCommand())
	for _, cmd := range newKindCommands() {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newSinglesCommand())
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newDownloadCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newTUICommand())

	return rootCmd
}

// Execute runs the root command, canceling its context on SIGINT or SIGTERM.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if ctx.Err() != nil {
			return 130
		}
		return 1
	}
	return 0
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}

// getSettings returns the settings loaded by the root command.
func getSettings(ctx context.Context) *config.Settings {
	if s, ok := ctx.Value(settingsKey{}).(*config.Settings); ok {
		return s
	}
	return config.DefaultSettings()
}

// getLogger returns the logger created by the root command.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
