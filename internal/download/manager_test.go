package download

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/applemusic-scraper/internal/config"
	"github.com/handiism/applemusic-scraper/internal/model"
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 200, 200))))
	art := buf.Bytes()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/us/album/"):
			payload := fmt.Sprintf(`{"title":"1965","artist":{"name":"Hiatus Kaiyote"},"artwork":"%s/art/{w}x{h}.png","songs":[
				{"title":"Intro","url":"https://music.apple.com/us/song/intro/101","duration":60000},
				{"title":"Outro","url":"https://music.apple.com/us/song/outro/103"}
			]}`, srv.URL)
			fmt.Fprintf(w, `<html><body><script type="application/json" id="serialized-server-data">%s</script></body></html>`, payload)
		case strings.HasPrefix(r.URL.Path, "/art/"):
			w.Write(art)
		case strings.HasPrefix(r.URL.Path, "/us/song/broken/"):
			fmt.Fprint(w, `<html><body>no data</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testSettings(t *testing.T) *config.Settings {
	s := config.DefaultSettings()
	s.OutputPath = filepath.Join(t.TempDir(), "{kind}", "{artist}", "{title}")
	s.RequestsPerSecond = 0
	s.MaxRetries = 0
	s.ArtworkMaxSize = 50
	s.CreatePlaylist = true
	return s
}

func TestParseInputURLs(t *testing.T) {
	input := `
		https://music.apple.com/us/album/a/1
		not a url
		http://music.apple.com/us/song/b/2   https://music.apple.com/us/room/3
	`
	assert.Equal(t, []string{
		"https://music.apple.com/us/album/a/1",
		"http://music.apple.com/us/song/b/2",
		"https://music.apple.com/us/room/3",
	}, ParseInputURLs(input))
}

func TestManager_Extract(t *testing.T) {
	srv := catalogServer(t)
	m := NewManager(testSettings(t), nil, nil)

	rec, err := m.Extract(context.Background(), srv.URL+"/us/album/1965/100", model.KindUnknown)
	require.NoError(t, err)
	assert.Equal(t, "1965", rec.Title())
	assert.Len(t, rec.Records("songs"), 2)
}

func TestManager_InitializeAndDownload(t *testing.T) {
	srv := catalogServer(t)
	settings := testSettings(t)

	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	m := NewManager(settings, nil, func(e ProgressEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	input := strings.Join([]string{
		srv.URL + "/us/album/1965/100",
		srv.URL + "/us/song/broken/1",
		srv.URL + "/us/browse",
	}, "\n")

	require.NoError(t, m.Initialize(context.Background(), input))

	jobs := m.Jobs()
	require.Len(t, jobs, 3)
	assert.NoError(t, jobs[0].Err)
	assert.Equal(t, model.KindAlbum, jobs[0].Kind)
	assert.Error(t, jobs[1].Err, "page without payload")
	assert.Error(t, jobs[2].Err, "unknown kind")
	assert.Equal(t, []string{"album: Hiatus Kaiyote - 1965 (2 songs)"}, m.GetRecordNames())

	require.NoError(t, m.StartDownloads(context.Background()))

	extracted, saved, total := m.GetProgress()
	assert.Equal(t, int32(3), extracted)
	assert.Equal(t, int32(1), saved)
	assert.Equal(t, int32(3), total)

	paths := jobs[0].Paths
	assert.Equal(t, "1965.json", filepath.Base(paths.RecordPath))
	assert.Equal(t, "1965.jpg", filepath.Base(paths.ArtworkPath), "artwork converted to jpeg")
	assert.Equal(t, "1965.m3u", filepath.Base(paths.PlaylistPath))
	assert.Empty(t, paths.PreviewPath)

	data, err := os.ReadFile(paths.RecordPath)
	require.NoError(t, err)
	var saved1 map[string]any
	require.NoError(t, json.Unmarshal(data, &saved1))
	assert.Equal(t, "1965", saved1["title"])
	assert.Contains(t, saved1, "caption")
	assert.Nil(t, saved1["caption"])

	artwork, err := os.ReadFile(paths.ArtworkPath)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(artwork))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 50, cfg.Width)

	playlist, err := os.ReadFile(paths.PlaylistPath)
	require.NoError(t, err)
	assert.Contains(t, string(playlist), "#EXTINF:60,Hiatus Kaiyote - Intro")
	assert.Contains(t, string(playlist), "https://music.apple.com/us/song/outro/103")

	mu.Lock()
	defer mu.Unlock()
	var errorsSeen int
	for _, e := range events {
		if e.Level == LevelError {
			errorsSeen++
		}
	}
	assert.Equal(t, 2, errorsSeen)
}

func TestManager_InitializeCanceled(t *testing.T) {
	srv := catalogServer(t)
	m := NewManager(testSettings(t), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Initialize(ctx, srv.URL+"/us/album/1965/100")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_SaveFailureKeepsBatchGoing(t *testing.T) {
	srv := catalogServer(t)
	settings := testSettings(t)
	root := t.TempDir()
	settings.OutputPath = filepath.Join(root, "{kind}", "{title}")

	// A plain file where the album directory should go.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "album"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "album", "1965"), []byte("x"), 0644))

	var (
		mu       sync.Mutex
		failures []string
	)
	m := NewManager(settings, nil, func(e ProgressEvent) {
		if e.Level == LevelError {
			mu.Lock()
			failures = append(failures, e.Message)
			mu.Unlock()
		}
	})

	input := srv.URL + "/us/album/1965/100\n" + srv.URL + "/us/song/broken/1"
	require.NoError(t, m.Initialize(context.Background(), input))
	require.NoError(t, m.StartDownloads(context.Background()))

	jobs := m.Jobs()
	require.Len(t, jobs, 2)
	assert.ErrorContains(t, jobs[0].Err, "creating directory")
	assert.Error(t, jobs[1].Err)

	_, saved, _ := m.GetProgress()
	assert.Equal(t, int32(0), saved)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, failures, 2)
}

func TestManager_SameRecordTwice(t *testing.T) {
	srv := catalogServer(t)
	settings := testSettings(t)
	settings.OutputPath = filepath.Join(t.TempDir(), "{kind}")
	m := NewManager(settings, nil, nil)

	input := srv.URL + "/us/album/1965/100\n" + srv.URL + "/us/album/1965/100?l=en"
	require.NoError(t, m.Initialize(context.Background(), input))
	require.NoError(t, m.StartDownloads(context.Background()))

	var names []string
	for _, job := range m.Jobs() {
		require.NoError(t, job.Err)
		assert.FileExists(t, job.Paths.RecordPath)
		names = append(names, filepath.Base(job.Paths.RecordPath))
	}
	assert.ElementsMatch(t, []string{"1965.json", "1965 (2).json"}, names)
}
