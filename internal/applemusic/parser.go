package applemusic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// contextRadius is how many bytes around a parse failure are quoted in
// MalformedPayloadError.Context.
const contextRadius = 24

// maxDepth bounds container nesting, as encoding/json.Unmarshal does.
const maxDepth = 10000

var errMaxDepth = errors.New("exceeded max nesting depth")

// Parse deserializes a located payload into a Node tree.
//
// Parsing is all-or-nothing: invalid UTF-8, syntax errors, unterminated
// structures and trailing data after the top-level value all fail with
// *MalformedPayloadError, and no partial tree is returned.
func Parse(payload string) (Node, error) {
	if off := invalidUTF8Offset(payload); off >= 0 {
		return Node{}, malformed(payload, int64(off), errors.New("invalid UTF-8 encoding"))
	}
	if strings.TrimSpace(payload) == "" {
		return Node{}, malformed(payload, 0, errors.New("empty payload"))
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	p := &treeParser{dec: dec}
	root, err := p.value()
	if err != nil {
		return Node{}, p.fail(payload, err)
	}

	// The decoder happily reads concatenated values; a payload must hold
	// exactly one.
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected trailing data %v", tok)
		}
		return Node{}, p.fail(payload, err)
	}

	return root, nil
}

type treeParser struct {
	dec   *json.Decoder
	depth int
}

func (p *treeParser) value() (Node, error) {
	tok, err := p.dec.Token()
	if err != nil {
		if err == io.EOF && p.depth > 0 {
			err = io.ErrUnexpectedEOF
		}
		return Node{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.mapping()
		case '[':
			return p.sequence()
		}
		return Node{}, fmt.Errorf("unexpected %q", rune(t))
	case string:
		return Node{kind: String, scalar: t}, nil
	case json.Number:
		return Node{kind: Number, scalar: t.String()}, nil
	case bool:
		return Node{kind: Bool, flag: t}, nil
	case nil:
		return Node{kind: Null}, nil
	}
	return Node{}, fmt.Errorf("unexpected token %v", tok)
}

func (p *treeParser) enter() error {
	if p.depth >= maxDepth {
		return errMaxDepth
	}
	p.depth++
	return nil
}

func (p *treeParser) mapping() (Node, error) {
	if err := p.enter(); err != nil {
		return Node{}, err
	}
	defer func() { p.depth-- }()

	n := Node{kind: Mapping, fields: map[string]Node{}}
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return Node{}, p.eof(err)
		}
		key, ok := tok.(string)
		if !ok {
			return Node{}, fmt.Errorf("expected object key, got %v", tok)
		}
		v, err := p.value()
		if err != nil {
			return Node{}, err
		}
		if _, seen := n.fields[key]; !seen {
			n.keys = append(n.keys, key)
		}
		n.fields[key] = v
	}
	return n, p.closing('}')
}

func (p *treeParser) sequence() (Node, error) {
	if err := p.enter(); err != nil {
		return Node{}, err
	}
	defer func() { p.depth-- }()

	n := Node{kind: Sequence, items: []Node{}}
	for p.dec.More() {
		v, err := p.value()
		if err != nil {
			return Node{}, err
		}
		n.items = append(n.items, v)
	}
	return n, p.closing(']')
}

func (p *treeParser) closing(want json.Delim) error {
	tok, err := p.dec.Token()
	if err != nil {
		return p.eof(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", rune(want), tok)
	}
	return nil
}

func (p *treeParser) eof(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// fail converts a decoder error into a MalformedPayloadError, preferring
// the exact offset reported by a *json.SyntaxError.
func (p *treeParser) fail(payload string, err error) error {
	off := p.dec.InputOffset()
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		off = syn.Offset
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = errors.New("unterminated structure")
		off = int64(len(payload))
	}
	return malformed(payload, off, err)
}

func malformed(payload string, off int64, err error) *MalformedPayloadError {
	start := max(0, int(off)-contextRadius)
	end := min(len(payload), int(off)+contextRadius)
	if start > end {
		start = end
	}
	return &MalformedPayloadError{
		Offset:  off,
		Context: strings.ToValidUTF8(payload[start:end], "�"),
		Err:     err,
	}
}

// invalidUTF8Offset returns the byte offset of the first invalid UTF-8
// sequence in s, or -1.
func invalidUTF8Offset(s string) int {
	if utf8.ValidString(s) {
		return -1
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
