package applemusic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(head, body string) string {
	return "<!DOCTYPE html><html><head>" + head + "</head><body>" + body + "</body></html>"
}

func serverData(payload string) string {
	return `<script type="application/json" id="serialized-server-data">` + payload + `</script>`
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "body script",
			html: page("", serverData(`[{"a":1}]`)),
			want: `[{"a":1}]`,
		},
		{
			name: "head script",
			html: page(serverData(`[1]`), "<p>hi</p>"),
			want: `[1]`,
		},
		{
			name: "body marker preferred over head",
			html: page(serverData(`"head"`), serverData(`"body"`)),
			want: `"body"`,
		},
		{
			name: "first marker in body wins",
			html: page("", serverData(`1`)+serverData(`2`)),
			want: `1`,
		},
		{
			name: "attribute order",
			html: page("", `<script id="serialized-server-data" type="application/json">{}</script>`),
			want: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocate_NotFound(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no marker", page("", "<p>Page not found</p>")},
		{"unclosed tag", `<body><script id="serialized-server-data"`},
		{"no closing script", `<body><script id="serialized-server-data">[1,2,3]`},
		{"empty page", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Locate(tt.html)
			require.Error(t, err)

			var nf *PayloadNotFoundError
			assert.True(t, errors.As(err, &nf))
			assert.ErrorIs(t, err, ErrPayloadNotFound)
		})
	}
}

func TestLocateSchema(t *testing.T) {
	html := page(
		`<script type="application/ld+json" id="schema:song">{"name":"Echoes"}</script>`+
			`<script type="application/ld+json" id="schema:breadcrumbs">{}</script>`,
		serverData(`[]`),
	)

	got, err := LocateSchema(html, "song")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Echoes"}`, got)

	_, err = LocateSchema(html, "music-video")
	assert.ErrorIs(t, err, ErrPayloadNotFound)
}
