package applemusic

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

type segmentKind uint8

const (
	segKey segmentKind = iota
	segIndex
	segEach
	segMatch
)

// Segment is one navigation step of a Path.
type Segment struct {
	kind  segmentKind
	key   string
	index int
	value string
}

// Path is a parsed field path.
//
// Paths are written as dot separated keys with bracket steps:
//
//	[0].data.sections[id~=track-list].items[*].contentDescriptor.url
//
//   - key       descend into a mapping key
//   - [n]       sequence index; negative indexes count from the end
//   - [*]       wildcard: apply the rest of the path to every element
//   - [k~=sub]  first sequence element whose string field k contains sub
//
// Paths are declared once in the normalizer tables and never mutated.
type Path struct {
	raw  string
	segs []Segment
}

// String returns the source text of the path.
func (p Path) String() string { return p.raw }

// HasWildcard reports whether the path contains a [*] step.
func (p Path) HasWildcard() bool {
	for _, s := range p.segs {
		if s.kind == segEach {
			return true
		}
	}
	return false
}

// MustPath parses a path and panics on a syntax error. It is meant for the
// static normalizer tables.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePath parses the path syntax described on Path. The empty string is
// the identity path.
func ParsePath(s string) (Path, error) {
	p := Path{raw: s}
	rest := s
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			if rest == "" || rest[0] == '.' || rest[0] == '[' {
				return Path{}, fmt.Errorf("path %q: empty key", s)
			}
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return Path{}, fmt.Errorf("path %q: unterminated '['", s)
			}
			seg, err := parseBracket(rest[1:end])
			if err != nil {
				return Path{}, fmt.Errorf("path %q: %w", s, err)
			}
			p.segs = append(p.segs, seg)
			rest = rest[end+1:]
			if rest != "" && rest[0] != '.' && rest[0] != '[' {
				return Path{}, fmt.Errorf("path %q: expected '.' or '[' after ']'", s)
			}
		default:
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			p.segs = append(p.segs, Segment{kind: segKey, key: rest[:end]})
			rest = rest[end:]
		}
	}
	return p, nil
}

func parseBracket(body string) (Segment, error) {
	if body == "*" {
		return Segment{kind: segEach}, nil
	}
	if key, value, ok := strings.Cut(body, "~="); ok {
		if key == "" {
			return Segment{}, fmt.Errorf("match %q: empty key", body)
		}
		return Segment{kind: segMatch, key: key, value: value}, nil
	}
	i, err := strconv.Atoi(body)
	if err != nil {
		return Segment{}, fmt.Errorf("bad index %q", body)
	}
	return Segment{kind: segIndex, index: i}, nil
}

// Resolve walks node along path.
//
// Missing keys, out of range indexes and type mismatches resolve to Absent;
// Absent propagates through the remaining steps. A wildcard step yields a
// Sequence node with one result per element, Absent results kept in place.
func Resolve(node Node, path Path) Node {
	return resolve(node, path.segs)
}

func resolve(n Node, segs []Segment) Node {
	for i, s := range segs {
		if n.IsAbsent() {
			return Node{}
		}
		if s.kind == segEach {
			if n.kind != Sequence {
				return Node{}
			}
			out := Node{kind: Sequence, items: make([]Node, len(n.items))}
			for j, it := range n.items {
				out.items[j] = resolve(it, segs[i+1:])
			}
			return out
		}
		n = step(n, s)
	}
	return n
}

// Each lazily resolves a wildcard path, yielding one result per element
// reached. Nested wildcards are flattened in document order. A path without
// a wildcard yields exactly one result. The returned sequence can be ranged
// over any number of times.
func Each(node Node, path Path) iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		i := 0
		each(node, path.segs, func(n Node) bool {
			ok := yield(i, n)
			i++
			return ok
		})
	}
}

func each(n Node, segs []Segment, yield func(Node) bool) bool {
	for i, s := range segs {
		if s.kind == segEach {
			if n.kind != Sequence {
				return true
			}
			for _, it := range n.items {
				if !each(it, segs[i+1:], yield) {
					return false
				}
			}
			return true
		}
		n = step(n, s)
	}
	return yield(n)
}

func step(n Node, s Segment) Node {
	switch s.kind {
	case segKey:
		return n.Get(s.key)
	case segIndex:
		return n.Index(s.index)
	case segMatch:
		if n.kind != Sequence {
			return Node{}
		}
		for _, it := range n.items {
			if v, ok := it.Get(s.key).Str(); ok && strings.Contains(v, s.value) {
				return it
			}
		}
	}
	return Node{}
}
