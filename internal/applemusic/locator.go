package applemusic

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	payloadMarker = `id="serialized-server-data"`
	payloadEnd    = `</script>`
	bodyMarker    = `<body`
)

// Locate extracts the serialized server data embedded in a catalog page.
//
// Catalog pages embed their data like this:
//
//	<script type="application/json" id="serialized-server-data">[{...}]</script>
//
// The first marker after the opening <body tag wins; pages that render the
// script in <head> are handled by falling back to the first marker
// anywhere. The payload ends at the nearest following </script>.
//
// Returns *PayloadNotFoundError when the marker, the end of its tag or the
// closing </script> cannot be found.
func Locate(rawPage string) (string, error) {
	from := 0
	if body := strings.Index(rawPage, bodyMarker); body >= 0 && strings.Contains(rawPage[body:], payloadMarker) {
		from = body
	}

	idx := strings.Index(rawPage[from:], payloadMarker)
	if idx == -1 {
		return "", &PayloadNotFoundError{Marker: payloadMarker}
	}
	start := from + idx + len(payloadMarker)

	tagEnd := strings.IndexByte(rawPage[start:], '>')
	if tagEnd == -1 {
		return "", &PayloadNotFoundError{Marker: "end of serialized-server-data tag"}
	}
	start += tagEnd + 1

	end := strings.Index(rawPage[start:], payloadEnd)
	if end == -1 {
		return "", &PayloadNotFoundError{Marker: payloadEnd}
	}

	return rawPage[start : start+end], nil
}

// LocateSchema returns the JSON-LD block with id "schema:<name>", e.g.
// "schema:song" or "schema:music-video". These blocks carry the preview
// audio and playable video URLs that the serialized server data omits.
func LocateSchema(rawPage, name string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawPage))
	if err != nil {
		return "", err
	}

	id := "schema:" + name
	sel := doc.Find(`script[type="application/ld+json"]`).FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	})
	if sel.Length() == 0 {
		return "", &PayloadNotFoundError{Marker: `id="` + id + `"`}
	}

	return sel.First().Text(), nil
}
