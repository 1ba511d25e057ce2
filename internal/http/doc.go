// Package http provides the HTTP client used to fetch catalog pages and
// their assets.
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{
//	    RequestsPerSecond: 2,
//	    MaxRetries:        3,
//	})
//
//	html, err := client.GetString(ctx, "https://music.apple.com/us/album/1965/1817707266")
//
//	client.DownloadFile(ctx, previewURL, "/path/to/preview.m4a", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Errors
//
// Non-200 responses are returned as *StatusError. 429 and 5xx responses and
// network errors are retried with backoff; other statuses fail at once.
package http
