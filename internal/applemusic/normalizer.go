package applemusic

import (
	"github.com/handiism/applemusic-scraper/internal/model"
)

// DefaultArtworkSize is the edge length substituted into artwork templates
// that carry no dimensions of their own.
const DefaultArtworkSize = 3000

// Options tune how values are normalized.
type Options struct {
	// ArtworkSize is substituted for {w} and {h} in artwork templates
	// without dimensions. Zero means DefaultArtworkSize.
	ArtworkSize int

	// ArtworkFormat is substituted for {f}. Empty means "jpg".
	ArtworkFormat string

	// Markdown converts HTML in editorial notes (captions, biographies)
	// to Markdown.
	Markdown bool
}

func (o *Options) artworkSize() int {
	if o == nil || o.ArtworkSize <= 0 {
		return DefaultArtworkSize
	}
	return o.ArtworkSize
}

func (o *Options) artworkFormat() string {
	if o == nil || o.ArtworkFormat == "" {
		return "jpg"
	}
	return o.ArtworkFormat
}

// Document is the parsed input of one normalization: the serialized server
// data and, when the page has one, its JSON-LD schema block.
type Document struct {
	Data   Node
	Schema Node
}

// Field maps one output key to the paths it is read from.
//
// Paths are tried in order against the server data, then SchemaPaths
// against the JSON-LD block; the first path whose transformed value is
// usable wins. When nothing is usable the field holds the transform's
// result for Absent: nil for scalars, an empty list for lists.
type Field struct {
	Name        string
	Paths       []Path
	SchemaPaths []Path
	Transform   Transform
	Required    bool
}

// F declares a field read from the server data.
func F(name string, t Transform, paths ...string) Field {
	f := Field{Name: name, Transform: t}
	for _, p := range paths {
		f.Paths = append(f.Paths, MustPath(p))
	}
	return f
}

// Anchor marks the field as required: a record without it is rejected.
func (f Field) Anchor() Field {
	f.Required = true
	return f
}

// OrSchema adds fallback paths resolved against the JSON-LD block.
func (f Field) OrSchema(paths ...string) Field {
	for _, p := range paths {
		f.SchemaPaths = append(f.SchemaPaths, MustPath(p))
	}
	return f
}

// Normalizer is the declarative field table of one entity kind.
type Normalizer struct {
	Kind model.Kind

	// Root lists container paths of which at least one must resolve;
	// otherwise the page is not of this kind. Empty means no check.
	Root []Path

	// Schema names the JSON-LD block ("song", "music-video") the
	// dispatcher should locate for SchemaPaths. Empty means none.
	Schema string

	Fields []Field
}

// Normalize builds the record for doc.
func (nz *Normalizer) Normalize(doc Document, o *Options) (model.Record, error) {
	if len(nz.Root) > 0 {
		found := false
		for _, p := range nz.Root {
			if !Resolve(doc.Data, p).IsAbsent() {
				found = true
				break
			}
		}
		if !found {
			return nil, &RequiredFieldMissingError{Kind: nz.Kind, Field: nz.Root[0].String()}
		}
	}
	return nz.normalize(doc, o)
}

func (nz *Normalizer) normalize(doc Document, o *Options) (model.Record, error) {
	rec := make(model.Record, len(nz.Fields))
	for _, f := range nz.Fields {
		v, err := nz.field(doc, f, o)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func (nz *Normalizer) field(doc Document, f Field, o *Options) (any, error) {
	var present Node
	try := func(root Node, paths []Path) any {
		for _, p := range paths {
			n := Resolve(root, p)
			if n.IsAbsent() {
				continue
			}
			if present.IsAbsent() && !n.IsNull() {
				present = n
			}
			if v := f.Transform(n, o); v != nil {
				return v
			}
		}
		return nil
	}

	if v := try(doc.Data, f.Paths); v != nil {
		return v, nil
	}
	if v := try(doc.Schema, f.SchemaPaths); v != nil {
		return v, nil
	}

	if f.Required {
		if present.IsAbsent() {
			return nil, &RequiredFieldMissingError{Kind: nz.Kind, Field: f.Name}
		}
		return nil, &TypeMismatchError{Kind: nz.Kind, Field: f.Name, Want: "usable value", Got: present.Kind()}
	}
	return f.Transform(Node{}, o), nil
}
