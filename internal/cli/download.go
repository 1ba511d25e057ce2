package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/handiism/applemusic-scraper/internal/download"
)

func newDownloadCommand() *cobra.Command {
	var (
		inputFile string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "download [url]...",
		Short: "Extract pages and save records, artwork, previews and playlists",
		Long: `Extract every page and save it under the output path: the record as JSON,
and depending on settings the artwork, the preview audio and a playlist.

A page that fails does not stop the others; the command exits non-zero if
any page failed.`,
		Example: `  amscrape download https://music.apple.com/us/album/1965/1817707266 --create-playlist
  amscrape download -i urls.txt --save-preview`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, "\n")
			if inputFile != "" {
				data, err := readInput(cmd.InOrStdin(), inputFile)
				if err != nil {
					return err
				}
				input += "\n" + data
			}
			if len(download.ParseInputURLs(input)) == 0 {
				return fmt.Errorf("no URLs given")
			}

			ctx := cmd.Context()
			settings := getSettings(ctx)
			verbose, _ := cmd.Flags().GetBool("verbose")
			errOut := cmd.ErrOrStderr()

			manager := download.NewManager(settings, getLogger(ctx), func(event download.ProgressEvent) {
				if event.Level == download.LevelVerbose && !verbose {
					return
				}
				fmt.Fprintln(errOut, prefix(event.Level)+event.Message)
			})

			if err := manager.Initialize(ctx, input); err != nil {
				return err
			}

			if !dryRun {
				if err := manager.StartDownloads(ctx); err != nil {
					return err
				}
			}

			return summarize(cmd.OutOrStdout(), manager.Jobs(), dryRun)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&inputFile, "input", "i", "", `File with URLs, one per line ("-" for stdin)`)
	flags.BoolVar(&dryRun, "dry-run", false, "Extract pages without saving anything")
	flags.Bool("save-artwork", false, "Save artwork")
	flags.Int("artwork-max-size", 0, "Scale artwork down to this edge length (0 keeps it)")
	flags.Bool("convert-artwork-to-jpg", false, "Re-encode artwork as JPEG")
	flags.Bool("save-preview", false, "Save preview audio")
	flags.Bool("create-playlist", false, "Create a playlist of each record's songs")
	flags.String("playlist-format", "", "Playlist format (m3u|pls|wpl|zpl)")

	_ = cmd.RegisterFlagCompletionFunc("playlist-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"m3u", "pls", "wpl", "zpl"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		in = f
	}

	var b strings.Builder
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), scanner.Err()
}

func prefix(level download.ProgressLevel) string {
	switch level {
	case download.LevelError:
		return "✗ "
	case download.LevelWarning:
		return "! "
	case download.LevelSuccess:
		return "✓ "
	case download.LevelInfo:
		return "› "
	default:
		return "  "
	}
}

// summarize prints one row per job and reports failed pages as an error.
func summarize(w io.Writer, jobs []*download.Job, dryRun bool) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Record", "Status", "Saved to"})

	var failed int
	for _, job := range jobs {
		switch {
		case job.Err != nil:
			failed++
			t.AppendRow(table.Row{job.Kind, job.URL, "failed", job.Err.Error()})
		case dryRun:
			t.AppendRow(table.Row{job.Kind, job.Record.Title(), "extracted", ""})
		default:
			t.AppendRow(table.Row{job.Kind, job.Record.Title(), "saved", job.Paths.RecordPath})
		}
	}
	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(jobs))
	}
	return nil
}
