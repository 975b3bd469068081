package models

import "time"

// Folder is a derived view over objects sharing a key prefix.
type Folder struct {
	// ID equals Path.
	ID string `json:"id"`
	// Name is the last path segment, without delimiter.
	Name string `json:"name"`
	// Path is the full prefix, always ending with "/".
	Path string `json:"path"`
	// CreatedAt is produced at read time; object stores do not track folder
	// creation, so the value is not stable across listings.
	CreatedAt time.Time `json:"createdAt"`
	// FileCount is the number of direct child files, computed per listing.
	FileCount int `json:"fileCount"`
}
