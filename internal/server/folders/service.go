// Package folders emulates a directory tree on top of a flat key space.
// A folder is visible while at least one key shares its prefix; creating one
// writes a zero-byte placeholder so that an empty folder still lists.
package folders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/archdrive/internal/common"
	"github.com/dmitrijs2005/archdrive/internal/logging"
	"github.com/dmitrijs2005/archdrive/internal/server/keys"
	"github.com/dmitrijs2005/archdrive/internal/server/models"
	"github.com/dmitrijs2005/archdrive/internal/server/objectstore"
)

const defaultConcurrency = 4

type Service struct {
	store       objectstore.Store
	concurrency int
	logger      logging.Logger
	now         func() time.Time
}

// NewService returns a folder emulator. concurrency bounds the number of
// per-folder count listings in flight; values below 1 use a default.
func NewService(store objectstore.Store, concurrency int, logger logging.Logger) *Service {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Service{
		store:       store,
		concurrency: concurrency,
		logger:      logger.With("module", "folders"),
		now:         time.Now,
	}
}

// ListFolders returns the direct subfolders of parent ("" for root) in the
// store's listing order. FileCount counts direct child files only.
func (s *Service) ListFolders(ctx context.Context, parent string) ([]models.Folder, error) {
	prefix, err := keys.NormalizeFolder(parent)
	if err != nil {
		return nil, err
	}

	listing, err := s.store.List(ctx, objectstore.ListInput{Prefix: prefix, Delimiter: common.FolderDelimiter})
	if err != nil {
		return nil, fmt.Errorf("list folders under %q: %w", prefix, err)
	}

	now := s.now()
	out := make([]models.Folder, len(listing.CommonPrefixes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, cp := range listing.CommonPrefixes {
		out[i] = models.Folder{
			ID:        cp,
			Name:      keys.ChildName(cp, prefix),
			Path:      cp,
			CreatedAt: now,
		}
		g.Go(func() error {
			n, err := s.countFiles(gctx, cp)
			if err != nil {
				return err
			}
			out[i].FileCount = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Service) countFiles(ctx context.Context, prefix string) (int, error) {
	listing, err := s.store.List(ctx, objectstore.ListInput{Prefix: prefix, Delimiter: common.FolderDelimiter})
	if err != nil {
		return 0, fmt.Errorf("count files in %q: %w", prefix, err)
	}

	n := 0
	for _, obj := range listing.Objects {
		if !keys.IsPlaceholder(obj.Key) {
			n++
		}
	}
	return n, nil
}

// CreateFolder writes the placeholder for parent/name. Creating a folder
// that already exists rewrites its placeholder and succeeds.
func (s *Service) CreateFolder(ctx context.Context, name, parent string) (models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, common.InvalidInput("folder name is required")
	}

	parentPrefix, err := keys.NormalizeFolder(parent)
	if err != nil {
		return models.Folder{}, err
	}
	path, err := keys.NormalizeFolder(parentPrefix + name)
	if err != nil {
		return models.Folder{}, err
	}

	err = s.store.Put(ctx, objectstore.PutInput{
		Key:         keys.PlaceholderKey(path),
		ContentType: common.DirectoryContentType,
	})
	if err != nil {
		return models.Folder{}, fmt.Errorf("create folder %q: %w", path, err)
	}

	s.logger.Info(ctx, "folder created", "path", path)

	return models.Folder{
		ID:        path,
		Name:      keys.ChildName(path, keys.ParseFolder(strings.TrimSuffix(path, common.FolderDelimiter))),
		Path:      path,
		CreatedAt: s.now(),
	}, nil
}

// DeleteFolder removes every object under the folder, including nested
// folders, then the placeholder. It is not atomic: a failure part way leaves
// the remaining objects in place. The root cannot be deleted.
func (s *Service) DeleteFolder(ctx context.Context, name string) error {
	prefix, err := keys.NormalizeFolder(name)
	if err != nil {
		return err
	}
	if prefix == "" {
		return common.InvalidInput("refusing to delete the root folder")
	}

	listing, err := s.store.List(ctx, objectstore.ListInput{Prefix: prefix})
	if err != nil {
		return fmt.Errorf("list folder %q: %w", prefix, err)
	}

	placeholder := keys.PlaceholderKey(prefix)
	deleted := 0
	for _, obj := range listing.Objects {
		if obj.Key == placeholder {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return fmt.Errorf("delete %q: %w", obj.Key, err)
		}
		deleted++
	}

	if err := s.store.Delete(ctx, placeholder); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("delete placeholder of %q: %w", prefix, err)
	}

	s.logger.Info(ctx, "folder deleted", "path", prefix, "objects", deleted)
	return nil
}
