package applemusic

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/handiism/applemusic-scraper/internal/model"
)

// BaseURL is the catalog origin. Site-relative URLs found in payloads are
// resolved against it.
const BaseURL = "https://music.apple.com"

// KindFromURL derives the entity kind from a catalog URL's path shape:
//
//	/us/song/<name>/<id>            song
//	/us/album/<name>/<id>           album
//	/us/artist/<name>/<id>          artist
//	/us/artist/<name>/<id>/see-all  see-all
//	/us/playlist/<name>/<id>        playlist
//	/us/room/<id>                   room
//	/us/music-video/<name>/<id>     video
//	/us/search?term=...             search
func KindFromURL(rawURL string) (model.Kind, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return model.KindUnknown, err
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) > 0 && segs[len(segs)-1] == "see-all" {
		return model.KindSeeAll, nil
	}
	for _, s := range segs {
		switch s {
		case "song":
			return model.KindSong, nil
		case "album":
			return model.KindAlbum, nil
		case "artist":
			return model.KindArtist, nil
		case "playlist":
			return model.KindPlaylist, nil
		case "room":
			return model.KindRoom, nil
		case "music-video":
			return model.KindVideo, nil
		case "search":
			return model.KindSearch, nil
		}
	}
	return model.KindUnknown, fmt.Errorf("cannot derive kind from %q", rawURL)
}

// SongURLFromAlbumTrack rewrites an album-track URL
//
//	https://music.apple.com/us/album/1965/1817707266?i=1817707585
//
// into the song URL
//
//	https://music.apple.com/us/song/1965/1817707585
//
// It reports false when rawURL has no "i" parameter or too short a path.
func SongURLFromAlbumTrack(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	songID := u.Query().Get("i")
	if songID == "" {
		return "", false
	}

	parts := strings.Split(u.Path, "/")
	if len(parts) < 4 {
		return "", false
	}
	country, title := parts[1], parts[3]

	return fmt.Sprintf("%s/%s/song/%s/%s", BaseURL, country, title, songID), true
}

// SearchURL builds the search page URL for term in a storefront ("us").
func SearchURL(storefront, term string) string {
	if storefront == "" {
		storefront = "us"
	}
	return fmt.Sprintf("%s/%s/search?term=%s", BaseURL, storefront, url.QueryEscape(term))
}

// SinglesURL builds the "singles & EPs" listing URL of an artist page.
func SinglesURL(artistURL string) string {
	return strings.TrimRight(artistURL, "/") + "/see-all?section=singles"
}
