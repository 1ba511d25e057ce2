package applemusic

import (
	"strings"

	"github.com/handiism/applemusic-scraper/internal/model"
)

// Every catalog page embeds a one-element array whose data.sections list
// holds the page content; sections are identified by their id prefix.
const (
	sections  = "[0].data.sections"
	actionURL = "segue.actionMetrics.data[0].fields.actionUrl"
	playURL   = "playAction.actionMetrics.data[0].fields.actionUrl"
)

func section(id string) string { return sections + "[id~=" + id + "]" }

// shallow is the cross-reference record used for related entities.
var shallow = &Normalizer{
	Fields: []Field{
		F("title", AsString, "title", "titleLinks[0].title", "name"),
		F("url", AsURL, actionURL, "contentDescriptor.url", playURL, "url").Anchor(),
		F("image", AsArtwork, "artwork.dictionary", "artwork", "image"),
	},
}

// searchItem is a search bucket entry; unlike shallow records it carries
// the subtitle (artist) line.
var searchItem = &Normalizer{
	Fields: []Field{
		F("title", AsString, "title", "titleLinks[0].title"),
		F("artist", AsString, "subtitleLinks[0].title"),
		F("url", AsURL, "contentDescriptor.url", actionURL).Anchor(),
		F("image", AsArtwork, "artwork.dictionary", "artwork"),
	},
}

var albumTrack = &Normalizer{
	Fields: []Field{
		F("title", AsString, "title"),
		F("url", AsSongURL, "contentDescriptor.url", playURL, "url").Anchor(),
		F("track_number", AsInt, "trackNumber", "track_number"),
		F("duration", AsDuration, "duration"),
	},
}

var songHeader = sections + "[0].items[0]"

var songNormalizer = &Normalizer{
	Kind:   model.KindSong,
	Schema: "song",
	Fields: []Field{
		F("title", AsString, songHeader+".title", "title").OrSchema("name").Anchor(),
		F("artist", AsString, songHeader+".artists", songHeader+".artistLinks[0].title", "artist.name", "artist").
			OrSchema("audio.byArtist[0].name"),
		F("artist_url", AsURL, songHeader+".artistLinks[0]."+actionURL, "artist.url"),
		F("album", AsString, songHeader+".album", songHeader+".albumLinks[0].title", "album.name", "album").
			OrSchema("audio.inAlbum.name"),
		F("album_url", AsURL, songHeader+".albumLinks[0]."+actionURL, "album.url"),
		F("image", AsArtwork, songHeader+".artwork.dictionary", "artwork").OrSchema("image"),
		F("preview", AsURL, "preview").OrSchema("audio.audio.contentUrl"),
		F("duration", AsDuration, songHeader+".duration", "duration").OrSchema("audio.duration"),
		F("track_number", AsInt, songHeader+".trackNumber", "trackNumber", "track_number"),
		F("kind", AsString, sections+"[0].presentation.kind", "kind"),
		F("more", URLList(AsURL, actionURL, "contentDescriptor.url"), sections+"[-1].items[*]", "more[*]"),
	},
}

var albumHeader = section("album-detail") + ".items[0]"

var albumNormalizer = &Normalizer{
	Kind: model.KindAlbum,
	Fields: []Field{
		F("title", AsString, albumHeader+".title", "title").Anchor(),
		F("artist", AsString, albumHeader+".subtitleLinks[0].title", "artist.name", "artist"),
		F("artist_url", AsURL, albumHeader+".subtitleLinks[0]."+actionURL, "artist.url"),
		F("image", AsArtwork, albumHeader+".artwork.dictionary", "artwork"),
		F("caption", AsText, albumHeader+".modalPresentationDescriptor.paragraphText", "caption"),
		F("info", AsString, section("track-list-section")+".items[0].description", "info"),
		// "track-list " with the space keeps "track-list-section" from matching.
		F("songs", AsList(albumTrack), section("track-list ")+".items[*]", "songs[*]"),
		F("more", URLList(AsURL, actionURL, "contentDescriptor.url"), section("more")+".items[*]", "more[*]"),
		F("similar", AsList(shallow), section("you-might-also-like")+".items[*]", "similar[*]"),
		F("videos", AsList(shallow), section("video")+".items[*]", "videos[*]"),
	},
}

var (
	artistHeader = section("artist-detail-header-section") + ".items[0]"
	artistBio    = section("artist-bio") + ".items[0].modalPresentationDescriptor"
	latestAndTop = section("latest-release-and-top-songs")
)

var artistNormalizer = &Normalizer{
	Kind: model.KindArtist,
	Fields: []Field{
		F("name", AsString, artistHeader+".title", "name").Anchor(),
		F("image", AsArtwork, artistHeader+".artwork.dictionary", "artwork"),
		F("biography", AsText, artistBio+".paragraphText", "biography"),
		F("info", AsString, artistBio+".headerSubtitle", "info"),
		F("latest", AsURL, latestAndTop+".pinnedLeadingItem.item."+actionURL, "latest"),
		F("top", AsList(shallow), latestAndTop+".items[*]", "top[*]"),
		F("albums", AsList(shallow), section("full-albums")+".items[*]", "albums[*]"),
		F("singles", AsList(shallow), section("singles")+".items[*]", "singles[*]"),
		F("playlists", AsList(shallow), section("playlists")+".items[*]", "playlists[*]"),
		F("videos", AsList(shallow), section("music-videos")+".items[*]", "videos[*]"),
		F("similar", AsList(shallow), section("similar-artists")+".items[*]", "similar[*]"),
		F("appears_on", AsList(shallow), section("appears-on")+".items[*]", "appears_on[*]"),
		F("more_to_see", AsList(shallow), section("more-to-see")+".items[*]", "more_to_see[*]"),
		F("more_to_hear", AsList(shallow), section("more-to-hear")+".items[*]", "more_to_hear[*]"),
	},
}

// trackListNormalizer builds the playlist-like kinds, which only expose
// song references: the page payload does not embed song metadata.
func trackListNormalizer(kind model.Kind, listID, headerID string) *Normalizer {
	header := section(headerID) + ".items[0]"
	return &Normalizer{
		Kind: kind,
		Root: []Path{MustPath(sections), MustPath("songs")},
		Fields: []Field{
			F("title", AsString, header+".title", "title"),
			F("image", AsArtwork, header+".artwork.dictionary", "artwork"),
			F("songs", URLList(AsSongURL, playURL, "contentDescriptor.url", "url", ""),
				section(listID)+".items[*]", "songs[*]"),
		},
	}
}

var videoHeader = section("music-video-header") + ".items[0]"

var videoNormalizer = &Normalizer{
	Kind:   model.KindVideo,
	Schema: "music-video",
	Fields: []Field{
		F("title", AsString, videoHeader+".title", "title").OrSchema("name").Anchor(),
		F("artist", AsString, videoHeader+".subtitleLinks[0].title", "artist.name", "artist"),
		F("artist_url", AsURL, videoHeader+".subtitleLinks[0]."+actionURL, "artist.url"),
		F("image", AsArtwork, videoHeader+".artwork.dictionary", "artwork", "thumbnail").
			OrSchema("video.thumbnailUrl", "image"),
		F("video_url", AsURL, "video_url", "url").OrSchema("video.contentUrl"),
		F("related", AsList(shallow), section("more-by-artist")+".items[*]", "related[*]"),
		F("similar", AsList(shallow), section("more-in-genre")+".items[*]", "similar[*]"),
	},
}

var searchNormalizer = &Normalizer{
	Kind: model.KindSearch,
	Root: []Path{MustPath(sections)},
	Fields: []Field{
		F("artists", searchBucket("artist"), sections),
		F("albums", searchBucket("album"), sections),
		F("songs", searchBucket("song"), sections),
		F("playlists", searchBucket("playlist"), sections),
		F("videos", searchBucket("music_video"), sections),
	},
}

// searchBuckets are tested in order against a section id; a section
// belongs to the first bucket its id contains.
var searchBuckets = []string{"artist", "album", "song", "playlist", "music_video"}

// searchBucket lists the items of the first section belonging to bucket.
func searchBucket(bucket string) Transform {
	items := AsList(searchItem)
	return func(n Node, o *Options) any {
		for _, sec := range n.Items() {
			id, _ := sec.Get("id").Str()
			for _, b := range searchBuckets {
				if strings.Contains(id, b) {
					if b == bucket {
						return items(sec.Get("items"), o)
					}
					break
				}
			}
		}
		return items(Node{}, o)
	}
}

var seeAllNormalizer = &Normalizer{
	Kind: model.KindSeeAll,
	Root: []Path{MustPath(sections), MustPath("items")},
	Fields: []Field{
		F("title", AsString, "[0].data.title", "title"),
		F("items", URLList(AsURL, actionURL, "contentDescriptor.url", "url", ""), sections+"[0].items[*]", "items[*]"),
	},
}

var normalizers = map[model.Kind]*Normalizer{
	model.KindSong:     songNormalizer,
	model.KindAlbum:    albumNormalizer,
	model.KindArtist:   artistNormalizer,
	model.KindPlaylist: trackListNormalizer(model.KindPlaylist, "track-list", "playlist-detail-header-section"),
	model.KindRoom:     trackListNormalizer(model.KindRoom, "copper-track-swoosh", "room-detail-header"),
	model.KindVideo:    videoNormalizer,
	model.KindSearch:   searchNormalizer,
	model.KindSeeAll:   seeAllNormalizer,
}

// NormalizerFor returns the field table used for kind.
func NormalizerFor(kind model.Kind) (*Normalizer, bool) {
	nz, ok := normalizers[kind]
	return nz, ok
}
