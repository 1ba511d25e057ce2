package applemusic

import (
	"errors"
	"fmt"

	"github.com/handiism/applemusic-scraper/internal/model"
)

// ErrUnsupportedKind is returned when no normalizer exists for the
// requested kind.
var ErrUnsupportedKind = errors.New("unsupported kind")

// Extractor turns raw catalog pages into records.
//
// An Extractor holds no per-call state; one value can serve any number of
// goroutines concurrently.
//
// Example usage:
//
//	ex := NewExtractor(Options{ArtworkSize: 1000})
//
//	html, _ := client.GetString(ctx, "https://music.apple.com/us/album/1965/1817707266")
//	rec, err := ex.Extract(html, model.KindAlbum)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rec.Title(), len(rec.Records("songs")))
type Extractor struct {
	opts Options
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

var defaultExtractor = NewExtractor(Options{})

// Extract runs Extractor.Extract with default options.
func Extract(rawPage string, kind model.Kind) (model.Record, error) {
	return defaultExtractor.Extract(rawPage, kind)
}

// Extract locates the embedded payload of rawPage, parses it and
// normalizes it with the table for kind.
//
// Errors from each stage are returned unchanged so callers can tell them
// apart with errors.As:
//   - *PayloadNotFoundError: the page has no embedded data
//   - *MalformedPayloadError: the embedded data is not valid
//   - *RequiredFieldMissingError, *TypeMismatchError: the page is not of kind
//
// The JSON-LD block some kinds read as fallback is optional; a missing or
// broken one leaves the fields it feeds null.
func (e *Extractor) Extract(rawPage string, kind model.Kind) (model.Record, error) {
	nz, ok := normalizers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	payload, err := Locate(rawPage)
	if err != nil {
		return nil, err
	}

	data, err := Parse(payload)
	if err != nil {
		return nil, err
	}

	doc := Document{Data: data}
	if nz.Schema != "" {
		if block, err := LocateSchema(rawPage, nz.Schema); err == nil {
			if tree, err := Parse(block); err == nil {
				doc.Schema = tree
			}
		}
	}

	return nz.Normalize(doc, &e.opts)
}
