package model

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// PathConfig holds output path formatting settings for saved records.
//
// All fields support placeholders that are replaced with record values:
//   - {kind} - Entity kind ("song", "album", ...)
//   - {artist} - Artist name (or the artist's own name for artist records)
//   - {title} - Record title (or name)
//
// Example configuration:
//
//	cfg := &PathConfig{
//	    OutputPath:             "/home/user/Music/AppleMusic/{kind}/{artist}/{title}",
//	    ArtworkFileNameFormat:  "cover",
//	    PlaylistFileNameFormat: "{title}",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
type PathConfig struct {
	// OutputPath is the directory template records are saved under.
	OutputPath string

	// ArtworkFileNameFormat is the filename template for artwork (without extension).
	ArtworkFileNameFormat string

	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a config value ("m3u", "pls", "wpl", "zpl") to a
// PlaylistFormat. Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// Paths are the computed local file locations for one saved record.
type Paths struct {
	// Dir is the directory all files of the record are written to.
	Dir string

	// RecordPath is where the JSON record is written.
	RecordPath string

	// ArtworkPath is where the artwork is written. Empty when the record
	// has no image.
	ArtworkPath string

	// PreviewPath is where the preview audio is written. Empty when the
	// record has no preview.
	PreviewPath string

	// PlaylistPath is where a playlist of the record's songs is written.
	PlaylistPath string
}

// NewPaths computes output paths for a record of the given kind fetched
// from pageURL.
//
// A record without a title or name is named after its page: the search
// term for search pages, otherwise the last segment of the URL path, so
// untitled records of one batch do not share a file.
//
// Invalid filename characters are replaced with underscores and paths are
// truncated to stay within Windows path length limits (248 for folders,
// 260 for files).
func NewPaths(kind Kind, rec Record, pageURL string, cfg *PathConfig) Paths {
	title := rec.Title()
	if strings.TrimSpace(title) == "" {
		title = untitledName(kind, pageURL)
	}
	artist := rec.Artist()

	dirVars := strings.NewReplacer(
		"{kind}", sanitizeFileName(kind.String()),
		"{artist}", sanitizeFileName(artist),
		"{title}", sanitizeFileName(title),
	)
	nameVars := strings.NewReplacer(
		"{kind}", kind.String(),
		"{artist}", artist,
		"{title}", title,
	)

	dir := truncate(dirVars.Replace(cfg.OutputPath), 247)

	p := Paths{
		Dir:        dir,
		RecordPath: joinLimited(dir, formatName("{title}", nameVars), ".json"),
	}
	p.PlaylistPath = joinLimited(dir, formatName(cfg.PlaylistFileNameFormat, nameVars), cfg.PlaylistFormat.Extension())

	if image := rec.String("image"); image != "" {
		ext := filepath.Ext(stripQuery(image))
		if ext == "" {
			ext = ".jpg"
		}
		p.ArtworkPath = joinLimited(dir, formatName(cfg.ArtworkFileNameFormat, nameVars), ext)
	}
	if preview := rec.String("preview"); preview != "" {
		ext := filepath.Ext(stripQuery(preview))
		if ext == "" {
			ext = ".m4a"
		}
		p.PreviewPath = joinLimited(dir, formatName("{title}", nameVars), ext)
	}

	return p
}

// WithSuffix returns p with suffix appended to every file name, before the
// extension. Dir is unchanged.
func (p Paths) WithSuffix(suffix string) Paths {
	add := func(path string) string {
		if path == "" {
			return ""
		}
		ext := filepath.Ext(path)
		return strings.TrimSuffix(path, ext) + suffix + ext
	}
	p.RecordPath = add(p.RecordPath)
	p.ArtworkPath = add(p.ArtworkPath)
	p.PreviewPath = add(p.PreviewPath)
	p.PlaylistPath = add(p.PlaylistPath)
	return p
}

// untitledName names a record that has no title of its own.
func untitledName(kind Kind, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return kind.String()
	}
	if term := strings.TrimSpace(u.Query().Get("term")); term != "" {
		return kind.String() + " " + term
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := segments[len(segments)-1]; last != "" {
		return kind.String() + " " + last
	}
	return kind.String()
}

func formatName(format string, vars *strings.Replacer) string {
	return sanitizeFileName(vars.Replace(format))
}

// joinLimited joins dir and name+ext, shortening name when the full path
// would exceed MAX_PATH.
func joinLimited(dir, name, ext string) string {
	p := filepath.Join(dir, name+ext)
	if len(p) >= 260 {
		if maxLen := 259 - len(filepath.Join(dir, ext)); maxLen > 0 && maxLen < len(name) {
			p = filepath.Join(dir, truncate(name, maxLen)+ext)
		}
	}
	return p
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - The name is normalized to Unicode NFC
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
//
// Example:
//
//	sanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func sanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
