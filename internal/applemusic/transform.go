package applemusic

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/handiism/applemusic-scraper/internal/model"
)

// Transform converts a resolved node into an output value.
//
// Transforms never fail: a node that cannot be used yields nil, which the
// record stores as null. List transforms return an empty list instead of
// nil so every list field marshals as [].
type Transform func(n Node, o *Options) any

// Identity copies a scalar as-is. Numbers become int64 when integral and
// float64 otherwise; containers yield nil.
func Identity(n Node, _ *Options) any {
	switch n.Kind() {
	case String:
		s, _ := n.Str()
		return s
	case Bool:
		b, _ := n.Boolean()
		return b
	case Number:
		if i, ok := n.Int(); ok {
			return i
		}
		f, _ := n.Float()
		return f
	}
	return nil
}

// AsString yields a trimmed non-empty string, or nil.
func AsString(n Node, _ *Options) any {
	s, ok := n.Str()
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// AsText is AsString for editorial notes. With Options.Markdown set, notes
// containing HTML markup are converted to Markdown; a note that fails to
// convert is kept as is.
func AsText(n Node, o *Options) any {
	v := AsString(n, o)
	s, ok := v.(string)
	if !ok || o == nil || !o.Markdown || !strings.Contains(s, "<") {
		return v
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	if md = strings.TrimSpace(md); md != "" {
		return md
	}
	return s
}

// AsNumber yields a float64 for Number nodes, or nil.
func AsNumber(n Node, _ *Options) any {
	f, ok := n.Float()
	if !ok {
		return nil
	}
	return f
}

// AsInt yields an int64 for integral Number nodes and numeric strings, or nil.
func AsInt(n Node, _ *Options) any {
	if i, ok := n.Int(); ok {
		return i
	}
	if s, ok := n.Str(); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i
		}
	}
	return nil
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// AsDuration yields a duration in milliseconds. Numbers are taken to be
// milliseconds already; strings are parsed as ISO 8601 durations
// ("PT3M25S"), the form used by the JSON-LD blocks.
func AsDuration(n Node, _ *Options) any {
	if f, ok := n.Float(); ok {
		if f < 0 {
			return nil
		}
		return durationMillis(f)
	}
	s, ok := n.Str()
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return nil
	}
	var ms float64
	units := []float64{24 * 3600e3, 3600e3, 60e3, 1e3}
	for i, u := range units {
		if m[i+1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return nil
		}
		ms += v * u
	}
	return durationMillis(ms)
}

// durationMillis truncates ms, or yields nil when it does not fit an int64.
func durationMillis(ms float64) any {
	i, ok := floatToInt64(ms)
	if !ok {
		return nil
	}
	return i
}

// AsURL yields a cleaned absolute http(s) URL, or nil. Protocol-relative
// URLs get https; site-relative paths are resolved against BaseURL.
func AsURL(n Node, _ *Options) any {
	s, ok := n.Str()
	if !ok {
		return nil
	}
	if u, ok := cleanURL(s); ok {
		return u
	}
	return nil
}

// AsSongURL is AsURL that also rewrites album-track URLs
// (".../album/<name>/<id>?i=<song>") into direct song URLs.
func AsSongURL(n Node, o *Options) any {
	u, ok := AsURL(n, o).(string)
	if !ok {
		return nil
	}
	if song, ok := SongURLFromAlbumTrack(u); ok {
		return song
	}
	return u
}

// AsArtwork fills an artwork template with a concrete size.
//
// Artwork is delivered either as a template string
// ("https://.../{w}x{h}bb.{f}") or as a dictionary with url, width and
// height. Dictionaries use their own dimensions when present; otherwise
// the configured Options.ArtworkSize is used.
func AsArtwork(n Node, o *Options) any {
	size := o.artworkSize()
	w, h := size, size

	tmpl, ok := n.Str()
	if !ok {
		tmpl, ok = n.Get("url").Str()
		if !ok {
			return nil
		}
		if v, ok := n.Get("width").Int(); ok && v > 0 {
			w = int(v)
		}
		if v, ok := n.Get("height").Int(); ok && v > 0 {
			h = int(v)
		}
	}

	filled := strings.NewReplacer(
		"{w}", strconv.Itoa(w),
		"{h}", strconv.Itoa(h),
		"{c}", "",
		"{f}", o.artworkFormat(),
	).Replace(tmpl)

	if u, ok := cleanURL(filled); ok {
		return u
	}
	return nil
}

// AsList applies sub to every element of a sequence, skipping elements
// whose required fields are missing.
func AsList(sub *Normalizer) Transform {
	return func(n Node, o *Options) any {
		out := []model.Record{}
		for _, it := range n.Items() {
			rec, err := sub.normalize(Document{Data: it}, o)
			if err != nil {
				continue
			}
			out = append(out, rec)
		}
		return out
	}
}

// URLList converts every element of a sequence with conv, trying subPaths
// in order on each element, and drops elements that yield nothing.
func URLList(conv Transform, subPaths ...string) Transform {
	paths := make([]Path, len(subPaths))
	for i, s := range subPaths {
		paths[i] = MustPath(s)
	}
	if len(paths) == 0 {
		paths = []Path{{}}
	}

	return func(n Node, o *Options) any {
		out := []string{}
		for _, it := range n.Items() {
			for _, p := range paths {
				if u, ok := conv(Resolve(it, p), o).(string); ok {
					out = append(out, u)
					break
				}
			}
		}
		return out
	}
}

func cleanURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return "", false
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case strings.HasPrefix(s, "/"):
		s = BaseURL + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}
