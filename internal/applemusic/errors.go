package applemusic

import (
	"errors"
	"fmt"

	"github.com/handiism/applemusic-scraper/internal/model"
)

// ErrPayloadNotFound matches every *PayloadNotFoundError via errors.Is.
var ErrPayloadNotFound = errors.New("embedded payload not found on page")

// PayloadNotFoundError is returned when the page carries no embedded data
// block. This usually means the site changed its markup, or the page is an
// error or redirect page rather than a catalog page.
type PayloadNotFoundError struct {
	Marker string // marker that could not be found
}

func (e *PayloadNotFoundError) Error() string {
	return fmt.Sprintf("embedded payload not found: missing %s", e.Marker)
}

func (e *PayloadNotFoundError) Is(target error) bool { return target == ErrPayloadNotFound }

// MalformedPayloadError is returned when the payload was found but is not a
// valid serialized document. Offset is the byte offset within the payload
// where parsing stopped; Context is a short excerpt around it.
type MalformedPayloadError struct {
	Offset  int64
	Context string
	Err     error
}

func (e *MalformedPayloadError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("malformed payload at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("malformed payload at offset %d near %q: %v", e.Offset, e.Context, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// RequiredFieldMissingError is returned when a field that defines the
// record's identity cannot be resolved. The page is most likely not of the
// requested kind.
type RequiredFieldMissingError struct {
	Kind  model.Kind
	Field string
}

func (e *RequiredFieldMissingError) Error() string {
	return fmt.Sprintf("%s: required field %q missing", e.Kind, e.Field)
}

// TypeMismatchError is returned when a required value resolves but cannot
// be coerced to the type its field needs.
type TypeMismatchError struct {
	Kind  model.Kind
	Field string
	Want  string
	Got   NodeKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: field %q: want %s, got %s", e.Kind, e.Field, e.Want, e.Got)
}
