// Package applemusic extracts structured records from Apple Music catalog
// pages.
//
// Every catalog page embeds its data as JSON in a script tag:
//
//	<script type="application/json" id="serialized-server-data">[...]</script>
//
// Extraction runs four stages:
//
//  1. Locate finds the embedded payload in the raw HTML
//  2. Parse turns it into a Node tree
//  3. Resolve walks the tree along declarative Paths
//  4. a Normalizer table per kind assembles the model.Record
//
// # Extracting a Page
//
//	html, _ := client.GetString(ctx, "https://music.apple.com/us/song/california/1821538031")
//	rec, err := applemusic.Extract(html, model.KindSong)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rec.Title(), rec.String("preview"))
//
// The kind is always supplied by the caller; KindFromURL derives it from
// the URL path.
//
// # Missing Data
//
// Pages omit fields all the time. A path that does not resolve yields the
// Absent node, which is distinct from a JSON null, and the record stores
// null or an empty list for it. Extraction fails only when the page has no
// payload, the payload is broken, or a field that identifies the record
// (a song title, an artist name) is missing.
//
// # Field Tables
//
// Kinds are tables, not code. Adding a kind means adding a Normalizer:
//
//	var lyricsNormalizer = &applemusic.Normalizer{
//	    Kind: kind,
//	    Fields: []applemusic.Field{
//	        applemusic.F("title", applemusic.AsString, "[0].data.sections[0].items[0].title").Anchor(),
//	    },
//	}
package applemusic
