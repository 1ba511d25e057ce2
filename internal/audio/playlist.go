package audio

import (
	"fmt"
	"strings"

	"github.com/handiism/applemusic-scraper/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat = model.PlaylistFormat

const (
	FormatM3U = model.PlaylistFormatM3U
	FormatPLS = model.PlaylistFormatPLS
	FormatWPL = model.PlaylistFormatWPL
	FormatZPL = model.PlaylistFormatZPL
)

// Entry is one playlist line: a song page URL, or a local preview file.
type Entry struct {
	Location string
	Title    string
	Artist   string
	Duration int64 // milliseconds, 0 when unknown
}

// Entries collects the songs of an extracted record.
//
// Album records list song sub-records; playlist and room records list bare
// song URLs. A song record yields a single entry for its own page, or for
// its downloaded preview when previewPath is set.
func Entries(kind model.Kind, rec model.Record, previewPath string) []Entry {
	switch kind {
	case model.KindAlbum:
		var out []Entry
		for _, s := range rec.Records("songs") {
			d, _ := s.Int("duration")
			out = append(out, Entry{
				Location: s.String("url"),
				Title:    s.String("title"),
				Artist:   rec.String("artist"),
				Duration: d,
			})
		}
		return out
	case model.KindPlaylist, model.KindRoom, model.KindSeeAll:
		key := "songs"
		if kind == model.KindSeeAll {
			key = "items"
		}
		var out []Entry
		for _, u := range rec.Strings(key) {
			out = append(out, Entry{Location: u})
		}
		return out
	case model.KindSong:
		loc := previewPath
		if loc == "" {
			loc = rec.String("preview")
		}
		if loc == "" {
			return nil
		}
		d, _ := rec.Int("duration")
		return []Entry{{Location: loc, Title: rec.String("title"), Artist: rec.String("artist"), Duration: d}}
	}
	return nil
}

// PlaylistCreator generates playlist files in various formats.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(rec.Title(), audio.Entries(kind, rec, ""))
//	os.WriteFile(paths.PlaylistPath, []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:184,Chappell Roan - California
//	// https://music.apple.com/us/song/california/1821538031
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only affects
// the M3U format.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content named title for entries.
func (p *PlaylistCreator) CreatePlaylist(title string, entries []Entry) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	case FormatWPL:
		return p.createWPL(title, entries)
	case FormatZPL:
		return p.createZPL(title, entries)
	default:
		return p.createM3U(entries)
	}
}

// createM3U generates an M3U playlist. Extended M3U uses -1 for unknown
// durations.
func (p *PlaylistCreator) createM3U(entries []Entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", seconds(e.Duration), displayName(e))
		}
		sb.WriteString(e.Location + "\n")
	}

	return sb.String()
}

func (p *PlaylistCreator) createPLS(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.Location)
		if name := displayName(e); name != "" {
			fmt.Fprintf(&sb, "Title%d=%s\n", idx, name)
		}
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, seconds(e.Duration))
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.Location))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL is WPL with per-entry track metadata.
func (p *PlaylistCreator) createZPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("    <meta name=\"Generator\" content=\"amscrape\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(e.Location),
			escapeXML(e.Title),
			escapeXML(e.Artist),
			e.Duration)
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

func seconds(ms int64) int64 {
	if ms <= 0 {
		return -1
	}
	return (ms + 500) / 1000
}

func displayName(e Entry) string {
	switch {
	case e.Artist != "" && e.Title != "":
		return e.Artist + " - " + e.Title
	case e.Title != "":
		return e.Title
	}
	return ""
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
