package applemusic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handiism/applemusic-scraper/internal/model"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{`"Echoes"`, "Echoes"},
		{`"  Echoes "`, "Echoes"},
		{`"   "`, nil},
		{`""`, nil},
		{`12`, nil},
		{`null`, nil},
		{`{"name":"x"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, AsString(mustParse(t, tt.src), nil))
		})
	}
	assert.Nil(t, AsString(Node{}, nil))
}

func TestAsText(t *testing.T) {
	note := mustParse(t, `"<b>1965</b> is the fourth album."`)

	assert.Equal(t, "<b>1965</b> is the fourth album.", AsText(note, nil))
	assert.Equal(t, "**1965** is the fourth album.", AsText(note, &Options{Markdown: true}))
	assert.Equal(t, "Plain note.", AsText(mustParse(t, `"Plain note."`), &Options{Markdown: true}))
	assert.Nil(t, AsText(mustParse(t, `"  "`), &Options{Markdown: true}))
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, int64(3), Identity(mustParse(t, `3`), nil))
	assert.Equal(t, 3.5, Identity(mustParse(t, `3.5`), nil))
	assert.Equal(t, true, Identity(mustParse(t, `true`), nil))
	assert.Equal(t, "", Identity(mustParse(t, `""`), nil))
	assert.Nil(t, Identity(mustParse(t, `[]`), nil))
}

func TestAsInt(t *testing.T) {
	assert.Equal(t, int64(7), AsInt(mustParse(t, `7`), nil))
	assert.Equal(t, int64(7), AsInt(mustParse(t, `" 7"`), nil))
	assert.Nil(t, AsInt(mustParse(t, `7.5`), nil))
	assert.Nil(t, AsInt(mustParse(t, `"seven"`), nil))
	assert.Nil(t, AsInt(mustParse(t, `1e30`), nil))
	assert.Nil(t, AsInt(mustParse(t, `9223372036854775808`), nil))
	assert.Equal(t, 7.5, AsNumber(mustParse(t, `7.5`), nil))
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{`205000`, int64(205000)},
		{`"PT3M25S"`, int64(205000)},
		{`"PT1H2M"`, int64(3720000)},
		{`"PT0.5S"`, int64(500)},
		{`"P1D"`, int64(86400000)},
		{`"PT"`, nil},
		{`"P"`, nil},
		{`"3:25"`, nil},
		{`-1`, nil},
		{`1e30`, nil},
		{`9223372036854775808`, nil},
		{`"P999999999999999D"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, AsDuration(mustParse(t, tt.src), nil))
		})
	}
}

func TestAsURL(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{`"https://music.apple.com/us/song/x/1"`, "https://music.apple.com/us/song/x/1"},
		{`"//is1-ssl.mzstatic.com/a.jpg"`, "https://is1-ssl.mzstatic.com/a.jpg"},
		{`"/us/album/x/2"`, "https://music.apple.com/us/album/x/2"},
		{`" https://a.b/c "`, "https://a.b/c"},
		{`"javascript:alert(1)"`, nil},
		{`"not a url"`, nil},
		{`""`, nil},
		{`null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, AsURL(mustParse(t, tt.src), nil))
		})
	}
}

func TestAsSongURL(t *testing.T) {
	got := AsSongURL(mustParse(t, `"https://music.apple.com/us/album/1965/1817707266?i=1817707585"`), nil)
	assert.Equal(t, "https://music.apple.com/us/song/1965/1817707585", got)

	got = AsSongURL(mustParse(t, `"https://music.apple.com/us/song/1965/1817707585"`), nil)
	assert.Equal(t, "https://music.apple.com/us/song/1965/1817707585", got)
}

func TestAsArtwork(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts *Options
		want any
	}{
		{
			name: "template default size",
			src:  `"https://x/{w}x{h}.jpg"`,
			want: "https://x/3000x3000.jpg",
		},
		{
			name: "template all tokens",
			src:  `"https://x/{w}x{h}bb{c}.{f}"`,
			opts: &Options{ArtworkSize: 600, ArtworkFormat: "webp"},
			want: "https://x/600x600bb.webp",
		},
		{
			name: "dictionary own dimensions",
			src:  `{"url":"https://x/{w}x{h}.{f}","width":1400,"height":1000}`,
			want: "https://x/1400x1000.jpg",
		},
		{
			name: "dictionary without dimensions",
			src:  `{"url":"https://x/{w}x{h}.jpg"}`,
			opts: &Options{ArtworkSize: 100},
			want: "https://x/100x100.jpg",
		},
		{
			name: "plain url",
			src:  `"https://x/cover.jpg"`,
			want: "https://x/cover.jpg",
		},
		{
			name: "dictionary without url",
			src:  `{"width":10}`,
			want: nil,
		},
		{
			name: "null",
			src:  `null`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AsArtwork(mustParse(t, tt.src), tt.opts))
		})
	}
}

func TestAsList(t *testing.T) {
	items := mustParse(t, `[
		{"title":"A","url":"https://a/1"},
		{"title":"B"},
		{"title":"C","url":"https://a/3"}
	]`)

	got := AsList(shallow)(items, nil).([]model.Record)
	assert.Len(t, got, 2, "elements without url are skipped")
	assert.Equal(t, "A", got[0].String("title"))
	assert.Equal(t, "C", got[1].String("title"))

	empty := AsList(shallow)(Node{}, nil)
	assert.Equal(t, []model.Record{}, empty)
}

func TestURLList(t *testing.T) {
	items := mustParse(t, `[
		"https://a/1",
		{"url":"https://a/2"},
		{"contentDescriptor":{"url":"https://a/3"},"url":"https://a/ignored"},
		{"title":"no url"}
	]`)

	got := URLList(AsURL, "contentDescriptor.url", "url", "")(items, nil)
	assert.Equal(t, []string{"https://a/1", "https://a/2", "https://a/3"}, got)

	assert.Equal(t, []string{}, URLList(AsURL)(Node{}, nil))
}
