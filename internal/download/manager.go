package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/applemusic-scraper/internal/applemusic"
	"github.com/handiism/applemusic-scraper/internal/audio"
	"github.com/handiism/applemusic-scraper/internal/config"
	"github.com/handiism/applemusic-scraper/internal/http"
	ioutils "github.com/handiism/applemusic-scraper/internal/io"
	"github.com/handiism/applemusic-scraper/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Job is one input URL and the outcome of extracting it.
type Job struct {
	URL    string
	Kind   model.Kind
	Record model.Record

	// Err is the extraction or save failure of the job.
	Err error

	// Paths is set once the record has been saved.
	Paths model.Paths
}

// Manager coordinates fetching, extracting and saving a batch of pages.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	extractor    *applemusic.Extractor
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService
	pathCfg      *model.PathConfig

	jobs      []*Job
	claimed   map[string]bool
	doneJobs  int32
	totalJobs int32
	savedJobs int32

	onProgress func(ProgressEvent)
	progressMu sync.Mutex
	mu         sync.Mutex
}

// NewManager creates a new Manager. logger may be nil.
func NewManager(settings *config.Settings, logger *slog.Logger, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings: settings,
		httpClient: http.NewClient(http.Options{
			UserAgent:         settings.UserAgent,
			Timeout:           settings.TimeoutDuration(),
			RequestsPerSecond: settings.RequestsPerSecond,
			Burst:             settings.Burst,
			MaxRetries:        settings.MaxRetries,
			Backoff:           settings.RetryDelay,
			Logger:            logger,
		}),
		extractor:    applemusic.NewExtractor(settings.ToOptions()),
		playlist:     audio.NewPlaylistCreator(model.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		pathCfg:      settings.ToPathConfig(),
		onProgress:   onProgress,
	}
}

// Extract fetches one page and extracts a record of kind from it. A
// KindUnknown kind is derived from the URL.
func (m *Manager) Extract(ctx context.Context, pageURL string, kind model.Kind) (model.Record, error) {
	if kind == model.KindUnknown {
		var err error
		if kind, err = applemusic.KindFromURL(pageURL); err != nil {
			return nil, err
		}
	}

	html, err := m.httpClient.GetString(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	rec, err := m.extractor.Extract(html, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}
	return rec, nil
}

// Initialize fetches and extracts every URL in inputURLs, one per line,
// with at most MaxConcurrent pages in flight. Failed pages are reported
// through progress events and kept in Jobs with their error; only a
// canceled context fails Initialize itself.
func (m *Manager) Initialize(ctx context.Context, inputURLs string) error {
	urls := ParseInputURLs(inputURLs)

	m.mu.Lock()
	m.claimed = map[string]bool{}
	m.jobs = make([]*Job, len(urls))
	for i, u := range urls {
		m.jobs[i] = &Job{URL: u}
	}
	m.totalJobs = int32(len(urls))
	m.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrent))

	for _, job := range m.jobs {
		g.Go(func() error {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching %s", job.URL), Level: LevelVerbose})

			kind, err := applemusic.KindFromURL(job.URL)
			if err == nil {
				job.Kind = kind
				job.Record, err = m.Extract(ctx, job.URL, kind)
			}
			atomic.AddInt32(&m.doneJobs, 1)

			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				job.Err = err
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error extracting %s: %v", job.URL, err), Level: LevelError})
				return nil
			}

			m.progress(ProgressEvent{Message: fmt.Sprintf("Found %s: %s", job.Kind, describe(job.Record)), Level: LevelInfo})
			return nil
		})
	}

	return g.Wait()
}

// StartDownloads saves every successfully extracted record: the JSON
// record, and depending on settings the artwork, the preview audio and a
// playlist of its songs. A record that cannot be saved keeps the error in
// its Job and the others continue; only a canceled context fails
// StartDownloads itself.
func (m *Manager) StartDownloads(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrent))

	for _, job := range m.Jobs() {
		if job.Err != nil {
			continue
		}
		g.Go(func() error {
			return m.save(ctx, job)
		})
	}

	return g.Wait()
}

// Jobs returns the jobs created by Initialize in input order.
func (m *Manager) Jobs() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Job(nil), m.jobs...)
}

// GetProgress returns how many pages were extracted and saved so far.
func (m *Manager) GetProgress() (extracted, saved, total int32) {
	return atomic.LoadInt32(&m.doneJobs), atomic.LoadInt32(&m.savedJobs), atomic.LoadInt32(&m.totalJobs)
}

// GetRecordNames returns a display line per successfully extracted record.
func (m *Manager) GetRecordNames() []string {
	var names []string
	for _, job := range m.Jobs() {
		if job.Err == nil && job.Record != nil {
			names = append(names, fmt.Sprintf("%s: %s", job.Kind, describe(job.Record)))
		}
	}
	return names
}

// ParseInputURLs returns the http(s) URLs of input, one per line or
// separated by whitespace.
func ParseInputURLs(input string) []string {
	var urls []string
	for _, field := range strings.Fields(input) {
		if strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") {
			urls = append(urls, field)
		}
	}
	return urls
}

func (m *Manager) save(ctx context.Context, job *Job) error {
	paths := m.claim(model.NewPaths(job.Kind, job.Record, job.URL, m.pathCfg))

	if err := ioutils.EnsureDir(paths.Dir); err != nil {
		return m.saveFailed(job, fmt.Errorf("creating directory: %w", err))
	}

	if m.settings.SaveArtwork && paths.ArtworkPath != "" {
		if path, err := m.downloadArtwork(ctx, job.Record.String("image"), paths.ArtworkPath); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading artwork for %s: %v", job.Record.Title(), err), Level: LevelWarning})
			paths.ArtworkPath = ""
		} else {
			paths.ArtworkPath = path
		}
	} else {
		paths.ArtworkPath = ""
	}

	if m.settings.SavePreview && paths.PreviewPath != "" {
		if err := m.httpClient.DownloadFile(ctx, job.Record.String("preview"), paths.PreviewPath, nil); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading preview for %s: %v", job.Record.Title(), err), Level: LevelWarning})
			paths.PreviewPath = ""
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(paths.PreviewPath)), Level: LevelVerbose})
		}
	} else {
		paths.PreviewPath = ""
	}

	if err := ioutils.WriteJSON(paths.RecordPath, job.Record); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return m.saveFailed(job, fmt.Errorf("saving %s: %w", paths.RecordPath, err))
	}

	if m.settings.CreatePlaylist {
		if entries := audio.Entries(job.Kind, job.Record, paths.PreviewPath); len(entries) > 0 {
			content := m.playlist.CreatePlaylist(job.Record.Title(), entries)
			if err := ioutils.WriteFile(paths.PlaylistPath, []byte(content)); err != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
				paths.PlaylistPath = ""
			} else {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", job.Record.Title()), Level: LevelSuccess})
			}
		} else {
			paths.PlaylistPath = ""
		}
	} else {
		paths.PlaylistPath = ""
	}

	job.Paths = paths
	atomic.AddInt32(&m.savedJobs, 1)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Saved %s", paths.RecordPath), Level: LevelSuccess})
	return nil
}

func (m *Manager) saveFailed(job *Job, err error) error {
	job.Err = err
	m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving %s: %v", job.URL, err), Level: LevelError})
	return nil
}

// claim reserves the record path of paths for this batch. A path already
// taken by another record gets a numbered suffix.
func (m *Manager) claim(paths model.Paths) model.Paths {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimed == nil {
		m.claimed = map[string]bool{}
	}
	candidate := paths
	for n := 2; m.claimed[candidate.RecordPath]; n++ {
		candidate = paths.WithSuffix(fmt.Sprintf(" (%d)", n))
	}
	m.claimed[candidate.RecordPath] = true
	return candidate
}

// downloadArtwork fetches, scales and writes the artwork. The extension of
// path is replaced by the one of the encoded image.
func (m *Manager) downloadArtwork(ctx context.Context, artworkURL, path string) (string, error) {
	data, err := m.httpClient.DownloadBytes(ctx, artworkURL)
	if err != nil {
		return "", err
	}

	out, ext, err := m.imageService.Process(ctx, data, ioutils.ImageOptions{
		MaxSize: m.settings.ArtworkMaxSize,
		JPEG:    m.settings.ConvertArtworkToJPG,
	})
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Keeping original artwork: %v", err), Level: LevelVerbose})
		out, ext = data, filepath.Ext(path)
	}

	path = strings.TrimSuffix(path, filepath.Ext(path)) + ext
	if err := ioutils.WriteFile(path, out); err != nil {
		return "", err
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded artwork: %s", filepath.Base(path)), Level: LevelVerbose})
	return path, nil
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.progressMu.Lock()
		defer m.progressMu.Unlock()
		m.onProgress(event)
	}
}

func describe(rec model.Record) string {
	name := rec.Title()
	if artist := rec.String("artist"); artist != "" && artist != name {
		name = artist + " - " + name
	}
	if name == "" {
		name = "(untitled)"
	}
	if songs, ok := rec["songs"]; ok {
		switch s := songs.(type) {
		case []model.Record:
			name += fmt.Sprintf(" (%d songs)", len(s))
		case []string:
			name += fmt.Sprintf(" (%d songs)", len(s))
		}
	}
	return name
}
