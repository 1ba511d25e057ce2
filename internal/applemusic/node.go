package applemusic

import (
	"encoding/json"
	"math"
	"strconv"
)

// NodeKind tags the variant held by a Node.
type NodeKind uint8

const (
	// Absent means a path did not resolve. It is distinct from Null,
	// which is a JSON null that was actually present in the payload.
	Absent NodeKind = iota
	Null
	Bool
	Number
	String
	Mapping
	Sequence
)

func (k NodeKind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	default:
		return "absent"
	}
}

// Node is one value of a parsed payload tree.
//
// The zero Node is Absent. Accessors never panic: asking a Node for
// something it does not hold returns an Absent Node or a zero value.
// Nodes are immutable once parsed and safe to share between goroutines.
type Node struct {
	kind   NodeKind
	scalar string // string value, or the literal text of a number
	flag   bool
	keys   []string // mapping keys in payload order
	fields map[string]Node
	items  []Node
}

// Kind reports which variant n holds.
func (n Node) Kind() NodeKind { return n.kind }

// IsAbsent reports whether n is the Absent sentinel.
func (n Node) IsAbsent() bool { return n.kind == Absent }

// IsNull reports whether n is a JSON null.
func (n Node) IsNull() bool { return n.kind == Null }

// Get returns the value stored under key, or Absent when n is not a
// Mapping or lacks the key.
func (n Node) Get(key string) Node {
	if n.kind != Mapping {
		return Node{}
	}
	return n.fields[key]
}

// Index returns the i-th element of a Sequence. Negative indexes count
// from the end. Out of range or non-Sequence yields Absent.
func (n Node) Index(i int) Node {
	if n.kind != Sequence {
		return Node{}
	}
	if i < 0 {
		i += len(n.items)
	}
	if i < 0 || i >= len(n.items) {
		return Node{}
	}
	return n.items[i]
}

// Len returns the number of elements of a Sequence or keys of a Mapping.
func (n Node) Len() int {
	switch n.kind {
	case Sequence:
		return len(n.items)
	case Mapping:
		return len(n.keys)
	}
	return 0
}

// Keys returns the mapping keys in payload order.
func (n Node) Keys() []string {
	if n.kind != Mapping {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Items returns the elements of a Sequence.
func (n Node) Items() []Node {
	if n.kind != Sequence {
		return nil
	}
	return append([]Node(nil), n.items...)
}

// Str returns the string value of a String node.
func (n Node) Str() (string, bool) {
	if n.kind != String {
		return "", false
	}
	return n.scalar, true
}

// Float returns the value of a Number node.
func (n Node) Float() (float64, bool) {
	if n.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.scalar, 64)
	return f, err == nil
}

// Int returns the value of a Number node holding an integer.
func (n Node) Int() (int64, bool) {
	if n.kind != Number {
		return 0, false
	}
	if i, err := strconv.ParseInt(n.scalar, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(n.scalar, 64)
	if err != nil {
		return 0, false
	}
	i, ok := floatToInt64(f)
	if !ok || f != float64(i) {
		return 0, false
	}
	return i, true
}

// floatToInt64 truncates f, reporting false outside the int64 range.
func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Boolean returns the value of a Bool node.
func (n Node) Boolean() (bool, bool) {
	if n.kind != Bool {
		return false, false
	}
	return n.flag, true
}

// Interface converts n back into plain Go values (map[string]any, []any,
// string, json.Number, bool, nil). Absent converts to nil.
func (n Node) Interface() any {
	switch n.kind {
	case Bool:
		return n.flag
	case Number:
		return json.Number(n.scalar)
	case String:
		return n.scalar
	case Mapping:
		m := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			m[k] = n.fields[k].Interface()
		}
		return m
	case Sequence:
		s := make([]any, len(n.items))
		for i, it := range n.items {
			s[i] = it.Interface()
		}
		return s
	}
	return nil
}

// MarshalJSON encodes n back into JSON, keeping mapping keys in payload
// order. Absent encodes as null.
func (n Node) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case Bool:
		return strconv.AppendBool(nil, n.flag), nil
	case Number:
		return []byte(n.scalar), nil
	case String:
		return json.Marshal(n.scalar)
	case Mapping:
		buf := []byte{'{'}
		for i, k := range n.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			vb, err := n.fields[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		return append(buf, '}'), nil
	case Sequence:
		buf := []byte{'['}
		for i, it := range n.items {
			if i > 0 {
				buf = append(buf, ',')
			}
			vb, err := it.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		return append(buf, ']'), nil
	}
	return []byte("null"), nil
}
