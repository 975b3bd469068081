package files

import (
	"time"

	"github.com/dmitrijs2005/archdrive/internal/server/keys"
	"github.com/dmitrijs2005/archdrive/internal/server/models"
	"github.com/dmitrijs2005/archdrive/internal/server/objectstore"
)

// URLResolver turns an object key into a client-facing address.
type URLResolver interface {
	Resolve(key string) string
}

// toStoredFile rebuilds file metadata from a listed object.
func toStoredFile(obj objectstore.ObjectInfo, urls URLResolver) models.StoredFile {
	return models.StoredFile{
		ID:         obj.Key,
		FileName:   keys.ParseDisplayName(obj.Key),
		Folder:     keys.ParseFolder(obj.Key),
		URL:        urls.Resolve(obj.Key),
		Size:       obj.Size,
		UploadedAt: obj.LastModified,
	}
}

// mapListing converts raw objects into files. With rootOnly set, objects
// living in any folder are dropped. Placeholders never surface as files.
func mapListing(objects []objectstore.ObjectInfo, rootOnly bool, urls URLResolver) []models.StoredFile {
	out := make([]models.StoredFile, 0, len(objects))
	for _, obj := range objects {
		if keys.IsPlaceholder(obj.Key) {
			continue
		}
		f := toStoredFile(obj, urls)
		if rootOnly && f.Folder != "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func uploadedFile(key string, size int64, at time.Time, urls URLResolver) models.StoredFile {
	return toStoredFile(objectstore.ObjectInfo{Key: key, Size: size, LastModified: at}, urls)
}
