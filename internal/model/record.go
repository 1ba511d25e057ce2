package model

// Record is the canonical output of one extraction.
//
// Keys are fixed per Kind and are always present. Values are one of:
//   - nil (source data absent or null)
//   - string, float64 or int64 scalars
//   - []string for lists of URLs
//   - []Record for lists of nested records
//
// Lists are never nil, so a Record marshals to JSON with [] rather than null
// for empty lists.
type Record map[string]any

// String returns the string stored under key, or "" when the value is
// absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Strings returns the URL list stored under key, or nil.
func (r Record) Strings(key string) []string {
	s, _ := r[key].([]string)
	return s
}

// Records returns the nested record list stored under key, or nil.
func (r Record) Records(key string) []Record {
	s, _ := r[key].([]Record)
	return s
}

// Int returns the integer stored under key and whether it was present.
func (r Record) Int(key string) (int64, bool) {
	n, ok := r[key].(int64)
	return n, ok
}

// Title returns the display name of the record: its title, or its name
// for artists.
func (r Record) Title() string {
	if t := r.String("title"); t != "" {
		return t
	}
	return r.String("name")
}

// Artist returns the artist name of the record, or "" when there is none.
// For artist records this is the artist's own name.
func (r Record) Artist() string {
	if a := r.String("artist"); a != "" {
		return a
	}
	return r.String("name")
}
