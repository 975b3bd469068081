// Package models defines the records the gateway reconstructs from object
// store listings. Nothing here is persisted on its own: files are objects,
// folders are key prefixes.
package models

import "time"

// StoredFile describes one uploaded object.
type StoredFile struct {
	// ID is the full object key. It is opaque to clients and unique.
	ID string `json:"id"`
	// FileName is the original, human-facing file name.
	FileName string `json:"fileName"`
	// Folder is the key prefix the file lives under ("" for root, otherwise
	// ending with "/").
	Folder string `json:"folder"`
	// URL is the client-facing address of the object.
	URL string `json:"url"`
	// Size is the object size in bytes.
	Size int64 `json:"size"`
	// UploadedAt is the completion time for fresh uploads and the store's
	// last-modified time for listed objects.
	UploadedAt time.Time `json:"uploadedAt"`
}
