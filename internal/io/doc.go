// Package ioutils provides the file and image helpers used when saving
// extracted records.
//
//	err := ioutils.WriteJSON("/music/album/1965/1965.json", rec)
//
//	svc := ioutils.NewImageService()
//	jpg, ext, err := svc.Process(ctx, artwork, ioutils.ImageOptions{MaxSize: 1000, JPEG: true})
package ioutils
