// Package audio exports the song lists of extracted records as playlist
// files.
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(rec.Title(), audio.Entries(model.KindAlbum, rec, ""))
//	os.WriteFile("1965.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
