package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const songPage = `<html><body><script type="application/json" id="serialized-server-data">` +
	`{"title":"Echoes","artist":{"name":"Night Tapes"},"artwork":"https://x/{w}x{h}.jpg","preview":null}` +
	`</script></body></html>`

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))

	base := []string{
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--requests-per-second=0",
		"--max-retries=0",
	}
	cmd.SetArgs(append(base, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "amscrape", cmd.Use)
	for _, name := range []string{"extract", "song", "album", "artist", "playlist", "room", "video", "see-all", "search", "singles", "parse", "download", "config", "tui"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.NotEmpty(t, sub.Short, "%s should have a description", name)
	}
	for _, flag := range []string{"config", "verbose", "log-format", "storefront", "max-concurrent", "output-path"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, songPage, "parse", "--kind", "song")
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Echoes", rec["title"])
	assert.Equal(t, "https://x/3000x3000.jpg", rec["image"])
	assert.Nil(t, rec["preview"])
}

func TestParseCommand_ArtworkSizeFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.html")
	require.NoError(t, os.WriteFile(path, []byte(songPage), 0644))

	out, err := run(t, "", "--artwork-size", "600", "parse", "-k", "song", "--compact", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"image":"https://x/600x600.jpg"`)
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := run(t, songPage, "parse", "--kind", "podcast")
	assert.Error(t, err)

	_, err = run(t, "<html></html>", "parse", "--kind", "song")
	assert.Error(t, err)

	_, err = run(t, songPage, "--log-format", "xml", "parse", "--kind", "song")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestExtractCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/us/song/") {
			fmt.Fprint(w, songPage)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	out, err := run(t, "", "song", srv.URL+"/us/song/echoes/1")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Echoes"`)

	out, err = run(t, "", "extract", "--compact", srv.URL+"/us/song/echoes/1", srv.URL+"/us/song/echoes/2")
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 2)

	_, err = run(t, "", "album", srv.URL+"/us/album/missing/1")
	assert.Error(t, err)
}

func TestDownloadCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/us/song/") {
			fmt.Fprint(w, songPage)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	urls := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(urls, []byte("# songs\n"+srv.URL+"/us/song/echoes/1\n"), 0644))

	out, err := run(t, "",
		"download", "-i", urls,
		"--output-path", filepath.Join(dir, "{kind}", "{title}"),
		"--save-artwork=false",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Echoes")
	assert.FileExists(t, filepath.Join(dir, "song", "Echoes", "Echoes.json"))

	out, err = run(t, "", "download", "--dry-run", srv.URL+"/us/browse")
	assert.ErrorContains(t, err, "1 of 1 pages failed")
	assert.Contains(t, out, "failed")

	_, err = run(t, "", "download")
	assert.ErrorContains(t, err, "no URLs")
}

func TestDownloadCommand_SaveFailureIsSummarized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, songPage)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song"), []byte("x"), 0644))

	out, err := run(t, "",
		"download", srv.URL+"/us/song/echoes/1",
		"--output-path", filepath.Join(dir, "{kind}", "{title}"),
		"--save-artwork=false",
	)
	assert.ErrorContains(t, err, "1 of 1 pages failed")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "creating directory")
}

func TestConfigCommands(t *testing.T) {
	out, err := run(t, "", "--storefront", "gb", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "storefront: gb")

	path := filepath.Join(t.TempDir(), "saved.yaml")
	_, err = run(t, "", "--max-concurrent", "9", "config", "save", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_concurrent: 9")
}
