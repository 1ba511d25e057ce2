package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/applemusic-scraper/internal/applemusic"
	"github.com/handiism/applemusic-scraper/internal/download"
	"github.com/handiism/applemusic-scraper/internal/model"
)

func newExtractCommand() *cobra.Command {
	var (
		kindName string
		compact  bool
	)

	cmd := &cobra.Command{
		Use:   "extract <url>...",
		Short: "Fetch catalog pages and print their records as JSON",
		Long: `Fetch one or more music.apple.com pages and print the extracted records.

The kind of each page is derived from its URL unless --kind is given.`,
		Example: `  amscrape extract https://music.apple.com/us/album/1965/1817707266
  amscrape extract --kind see-all "https://music.apple.com/us/artist/x/1/see-all?section=singles"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.KindUnknown
			if kindName != "" {
				var err error
				if kind, err = model.ParseKind(kindName); err != nil {
					return err
				}
			}
			return extractAndPrint(cmd, args, kind, compact)
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", "", "Page kind (song|album|artist|playlist|room|video|search|see-all)")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON without indentation")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)

	return cmd
}

// newKindCommands creates one shortcut command per URL-addressed kind.
func newKindCommands() []*cobra.Command {
	var cmds []*cobra.Command
	for _, kind := range model.Kinds() {
		if kind == model.KindSearch {
			continue
		}

		var compact bool
		cmd := &cobra.Command{
			Use:   kind.String() + " <url>...",
			Short: fmt.Sprintf("Extract %s pages", kind),
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return extractAndPrint(cmd, args, kind, compact)
			},
		}
		if kind == model.KindVideo {
			cmd.Aliases = []string{"music-video"}
		}
		cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON without indentation")
		cmds = append(cmds, cmd)
	}
	return cmds
}

func newSearchCommand() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:     "search <term>...",
		Short:   "Search the catalog and print the results",
		Example: `  amscrape search hiatus kaiyote --storefront gb`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := getSettings(cmd.Context())
			pageURL := applemusic.SearchURL(settings.Storefront, strings.Join(args, " "))
			return extractAndPrint(cmd, []string{pageURL}, model.KindSearch, compact)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON without indentation")
	return cmd
}

func newSinglesCommand() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "singles <artist-url>",
		Short: `Extract the "singles & EPs" listing of an artist`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return extractAndPrint(cmd, []string{applemusic.SinglesURL(args[0])}, model.KindSeeAll, compact)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON without indentation")
	return cmd
}

func newParseCommand() *cobra.Command {
	var (
		kindName string
		compact  bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Extract a record from a saved HTML page",
		Long: `Extract a record from an HTML page on disk, or from stdin when no file
(or "-") is given. No network requests are made.`,
		Example: `  curl -s https://music.apple.com/us/song/x/1 | amscrape parse --kind song`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(kindName)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			page, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			rec, err := applemusic.NewExtractor(getSettings(cmd.Context()).ToOptions()).Extract(string(page), kind)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec, compact)
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", "", "Page kind (required)")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON without indentation")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)

	return cmd
}

// extractAndPrint fetches every URL and prints the records: a single object
// for one URL, an array otherwise. The first failure aborts.
func extractAndPrint(cmd *cobra.Command, urls []string, kind model.Kind, compact bool) error {
	ctx := cmd.Context()
	logger := getLogger(ctx)
	manager := download.NewManager(getSettings(ctx), logger, nil)

	records := make([]model.Record, 0, len(urls))
	for _, u := range urls {
		logger.Debug("extracting", "url", u, "kind", kind)
		rec, err := manager.Extract(ctx, u, kind)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	if len(records) == 1 {
		return printJSON(cmd.OutOrStdout(), records[0], compact)
	}
	return printJSON(cmd.OutOrStdout(), records, compact)
}

func printJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func completeKinds(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, k := range model.Kinds() {
		names = append(names, k.String())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
