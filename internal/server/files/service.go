// Package files implements the file operations of the gateway: it names
// uploads, pushes them through the retrying executor, and rebuilds file
// metadata from object listings.
package files

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/archdrive/internal/common"
	"github.com/dmitrijs2005/archdrive/internal/logging"
	"github.com/dmitrijs2005/archdrive/internal/server/keys"
	"github.com/dmitrijs2005/archdrive/internal/server/models"
	"github.com/dmitrijs2005/archdrive/internal/server/objectstore"
)

// Uploader stores a payload under key and returns its size.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (int64, error)
}

type Service struct {
	store    objectstore.Store
	uploader Uploader
	urls     URLResolver
	maxBytes int64
	logger   logging.Logger
	now      func() time.Time
}

// NewService wires the file operations. maxBytes <= 0 disables the size limit.
func NewService(store objectstore.Store, uploader Uploader, urls URLResolver, maxBytes int64, logger logging.Logger) *Service {
	return &Service{
		store:    store,
		uploader: uploader,
		urls:     urls,
		maxBytes: maxBytes,
		logger:   logger.With("module", "files"),
		now:      time.Now,
	}
}

// UploadFile stores content under a fresh key inside folder.
func (s *Service) UploadFile(ctx context.Context, content io.Reader, originalName, contentType, folder string) (models.StoredFile, error) {
	if strings.TrimSpace(originalName) == "" {
		return models.StoredFile{}, common.InvalidInput("file name is required")
	}
	if content == nil {
		return models.StoredFile{}, common.InvalidInput("file content is required")
	}
	if contentType == "" {
		contentType = common.DefaultContentType
	}

	key, err := keys.BuildKey(originalName, folder)
	if err != nil {
		return models.StoredFile{}, err
	}

	body := content
	if s.maxBytes > 0 {
		body = &limitReader{r: content, remaining: s.maxBytes}
	}

	size, err := s.uploader.Upload(ctx, key, body, contentType)
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("upload %q: %w", originalName, err)
	}

	s.logger.Info(ctx, "file uploaded", "key", key, "size", size, "content_type", contentType)
	return uploadedFile(key, size, s.now(), s.urls), nil
}

// DownloadFile opens the object stored under key. The caller closes the reader.
func (s *Service) DownloadFile(ctx context.Context, key string) (io.ReadCloser, objectstore.ObjectInfo, error) {
	if key == "" {
		return nil, objectstore.ObjectInfo{}, common.InvalidInput("file key is required")
	}
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, objectstore.ObjectInfo{}, err
	}
	return rc, info, nil
}

// ListFiles lists files directly in the root when folder is empty, or every
// file under the folder prefix otherwise.
func (s *Service) ListFiles(ctx context.Context, folder string) ([]models.StoredFile, error) {
	prefix, err := keys.NormalizeFolder(folder)
	if err != nil {
		return nil, err
	}

	listing, err := s.store.List(ctx, objectstore.ListInput{Prefix: prefix})
	if err != nil {
		return nil, fmt.Errorf("list files under %q: %w", prefix, err)
	}

	return mapListing(listing.Objects, prefix == "", s.urls), nil
}

// DeleteFile removes the object under key. Object stores accept deletes of
// missing keys, so existence is checked first.
func (s *Service) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return common.InvalidInput("file key is required")
	}
	if _, err := s.store.Head(ctx, key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	s.logger.Info(ctx, "file deleted", "key", key)
	return nil
}

// limitReader fails with InvalidInput once more than remaining bytes are read.
type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, common.InvalidInput("file exceeds the upload size limit")
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return 0, common.InvalidInput("file exceeds the upload size limit")
	}
	return n, err
}
