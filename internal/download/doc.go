// Package download runs batches of catalog pages through the extractor
// and saves the results.
//
// # Manager
//
// The Manager coordinates the whole process:
//
//  1. Parse input URLs and derive each page's kind
//  2. Fetch and extract pages concurrently
//  3. Save each record as JSON
//  4. Download artwork and preview audio (optional)
//  5. Generate playlists of song lists (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, logger, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, "https://music.apple.com/us/album/1965/1817707266"); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := manager.StartDownloads(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// A page that fails to fetch or extract does not stop the batch: its Job
// keeps the error and the other pages continue.
//
// # Concurrency
//
// settings.MaxConcurrent bounds how many pages are fetched, and how many
// records are saved, in parallel. Requests are additionally paced by the
// HTTP client's rate limiter.
package download
