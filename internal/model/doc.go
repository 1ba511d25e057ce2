// Package model defines the core data structures used throughout
// applemusic-scraper.
//
// # Kind
//
// Kind names the entity kind of a catalog page. It selects which
// normalizer the extractor applies:
//
//	kind, err := model.ParseKind("album")
//
// # Record
//
// Record is the canonical output of an extraction. Its keys are fixed per
// kind and always present; absent data is nil or an empty list:
//
//	rec, _ := applemusic.Extract(html, model.KindSong)
//	fmt.Println(rec.Title(), rec.String("preview"))
//
// # Path Configuration
//
// PathConfig controls where downloaded records and assets are written:
//
//	cfg := &model.PathConfig{
//	    OutputPath:             "/music/{kind}/{artist}/{title}",
//	    ArtworkFileNameFormat:  "cover",
//	    PlaylistFileNameFormat: "{title}",
//	    PlaylistFormat:         model.PlaylistFormatM3U,
//	}
//	paths := model.NewPaths(model.KindAlbum, rec, pageURL, cfg)
//
// Available placeholders: {kind}, {artist}, {title}
package model
