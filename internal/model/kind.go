package model

import (
	"fmt"
	"strings"
)

// Kind identifies which kind of catalog page a record was extracted from.
//
// The kind is always supplied by the caller (usually derived from the page
// URL); extraction never guesses it from page content.
type Kind int

const (
	// KindUnknown is the zero value and is rejected by the extractor.
	KindUnknown Kind = iota

	// KindSong is a single song page (/song/...).
	KindSong

	// KindAlbum is an album page (/album/...).
	KindAlbum

	// KindArtist is an artist page (/artist/...).
	KindArtist

	// KindPlaylist is a curated or user playlist page (/playlist/...).
	KindPlaylist

	// KindRoom is a shared room page (/room/...).
	KindRoom

	// KindVideo is a music video page (/music-video/...).
	KindVideo

	// KindSearch is a search results page (/search?term=...).
	KindSearch

	// KindSeeAll is an artist "see all" listing, e.g. singles & EPs.
	KindSeeAll
)

var kindNames = map[Kind]string{
	KindSong:     "song",
	KindAlbum:    "album",
	KindArtist:   "artist",
	KindPlaylist: "playlist",
	KindRoom:     "room",
	KindVideo:    "video",
	KindSearch:   "search",
	KindSeeAll:   "see-all",
}

// Kinds returns every extractable kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindSong, KindAlbum, KindArtist, KindPlaylist, KindRoom, KindVideo, KindSearch, KindSeeAll}
}

// String returns the lower-case name used on the command line and in output paths.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind converts a kind name back into a Kind.
//
// "music-video" is accepted as an alias of "video", "singles" as an alias
// of "see-all".
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "music-video":
		return KindVideo, nil
	case "singles", "see_all":
		return KindSeeAll, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown kind %q", s)
}
