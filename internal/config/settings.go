package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/handiism/applemusic-scraper/internal/applemusic"
	"github.com/handiism/applemusic-scraper/internal/model"
)

// EnvPrefix is the prefix of environment variables read by Load.
// AMSCRAPE_MAX_CONCURRENT maps to max_concurrent.
const EnvPrefix = "AMSCRAPE_"

// Settings holds all configuration options.
type Settings struct {
	// Fetch settings
	Storefront        string  `koanf:"storefront" yaml:"storefront"`
	UserAgent         string  `koanf:"user_agent" yaml:"user_agent"`
	Timeout           float64 `koanf:"timeout" yaml:"timeout"` // seconds
	RequestsPerSecond float64 `koanf:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `koanf:"burst" yaml:"burst"`
	MaxRetries        int     `koanf:"max_retries" yaml:"max_retries"`
	RetryCooldown     float64 `koanf:"retry_cooldown" yaml:"retry_cooldown"` // seconds
	RetryExponent     float64 `koanf:"retry_exponent" yaml:"retry_exponent"`
	MaxConcurrent     int     `koanf:"max_concurrent" yaml:"max_concurrent"`

	// Extraction
	ArtworkSize   int  `koanf:"artwork_size" yaml:"artwork_size"`
	NotesMarkdown bool `koanf:"notes_markdown" yaml:"notes_markdown"`

	// Output
	OutputPath             string `koanf:"output_path" yaml:"output_path"`
	ArtworkFileNameFormat  string `koanf:"artwork_file_name_format" yaml:"artwork_file_name_format"`
	PlaylistFileNameFormat string `koanf:"playlist_file_name_format" yaml:"playlist_file_name_format"`

	// Artwork
	SaveArtwork         bool `koanf:"save_artwork" yaml:"save_artwork"`
	ArtworkMaxSize      int  `koanf:"artwork_max_size" yaml:"artwork_max_size"`
	ConvertArtworkToJPG bool `koanf:"convert_artwork_to_jpg" yaml:"convert_artwork_to_jpg"`

	// Preview audio
	SavePreview bool `koanf:"save_preview" yaml:"save_preview"`

	// Playlist settings
	CreatePlaylist bool   `koanf:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat string `koanf:"playlist_format" yaml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `koanf:"m3u_extended" yaml:"m3u_extended"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Storefront:        "us",
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
		Timeout:           60,
		RequestsPerSecond: 2,
		Burst:             2,
		MaxRetries:        7,
		RetryCooldown:     0.2,
		RetryExponent:     4.0,
		MaxConcurrent:     4,

		ArtworkSize: applemusic.DefaultArtworkSize,

		OutputPath:             filepath.Join(homeDir, "Music", "AppleMusic", "{kind}", "{artist}", "{title}"),
		ArtworkFileNameFormat:  "{title}",
		PlaylistFileNameFormat: "{title}",

		SaveArtwork:         true,
		ArtworkMaxSize:      1000,
		ConvertArtworkToJPG: true,

		SavePreview: false,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// DefaultPath is where the settings file lives when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "amscrape.yaml"
	}
	return filepath.Join(dir, "amscrape", "config.yaml")
}

// Load reads settings, layering (lowest to highest precedence) defaults, the
// YAML or JSON file at path, AMSCRAPE_* environment variables and the flags
// in flags that were explicitly set. A missing file is not an error.
//
// Flag names map to keys by replacing dashes with underscores, so
// --max-concurrent sets max_concurrent.
func Load(path string, flags *pflag.FlagSet) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &s, nil
}

// defaultMap flattens DefaultSettings into koanf keys.
func defaultMap() map[string]interface{} {
	d := DefaultSettings()
	return map[string]interface{}{
		"storefront":                d.Storefront,
		"user_agent":                d.UserAgent,
		"timeout":                   d.Timeout,
		"requests_per_second":       d.RequestsPerSecond,
		"burst":                     d.Burst,
		"max_retries":               d.MaxRetries,
		"retry_cooldown":            d.RetryCooldown,
		"retry_exponent":            d.RetryExponent,
		"max_concurrent":            d.MaxConcurrent,
		"artwork_size":              d.ArtworkSize,
		"notes_markdown":            d.NotesMarkdown,
		"output_path":               d.OutputPath,
		"artwork_file_name_format":  d.ArtworkFileNameFormat,
		"playlist_file_name_format": d.PlaylistFileNameFormat,
		"save_artwork":              d.SaveArtwork,
		"artwork_max_size":          d.ArtworkMaxSize,
		"convert_artwork_to_jpg":    d.ConvertArtworkToJPG,
		"save_preview":              d.SavePreview,
		"create_playlist":           d.CreatePlaylist,
		"playlist_format":           d.PlaylistFormat,
		"m3u_extended":              d.M3UExtended,
	}
}

// Save writes settings to a YAML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yamlv3.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		OutputPath:             s.OutputPath,
		ArtworkFileNameFormat:  s.ArtworkFileNameFormat,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         model.ParsePlaylistFormat(s.PlaylistFormat),
	}
}

// ToOptions converts settings to extraction options.
func (s *Settings) ToOptions() applemusic.Options {
	return applemusic.Options{ArtworkSize: s.ArtworkSize, Markdown: s.NotesMarkdown}
}

// TimeoutDuration returns Timeout as a time.Duration.
func (s *Settings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout * float64(time.Second))
}

// RetryDelay returns the backoff before retry number tries (zero based):
// RetryCooldown * RetryExponent^tries seconds.
func (s *Settings) RetryDelay(tries int) time.Duration {
	cooldown := s.RetryCooldown
	for range tries {
		cooldown *= s.RetryExponent
	}
	return time.Duration(cooldown * float64(time.Second))
}
