// Package objectstore is the outbound boundary of the gateway: the handful
// of flat-namespace operations the folder emulation is built on.
//
// Two implementations exist. S3Store talks to Cloudflare R2 (or any
// S3-compatible service) through aws-sdk-go-v2; MemoryStore keeps objects in
// process and mirrors S3 prefix/delimiter listing semantics, for local runs
// and tests.
//
// Implementations translate their native "missing object" errors to
// common.ErrorNotFound and wrap every other failure with
// common.ErrorTransport.
package objectstore

import (
	"context"
	"io"
	"time"
)

// Store is the set of object operations the core needs. Implementations
// must be safe for concurrent use.
type Store interface {
	Put(ctx context.Context, in PutInput) error
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Head(ctx context.Context, key string) (ObjectInfo, error)
	List(ctx context.Context, in ListInput) (Listing, error)
	Delete(ctx context.Context, key string) error
}

// PutInput describes a single put. Body is read exactly once per call;
// callers retrying a put must supply a fresh reader.
type PutInput struct {
	Key           string
	Body          io.Reader
	ContentType   string
	ContentLength int64
}

// ListInput mirrors list-objects-v2. An empty Prefix lists the whole bucket;
// a non-empty Delimiter folds deeper keys into CommonPrefixes.
type ListInput struct {
	Prefix    string
	Delimiter string
}

// ObjectInfo is the metadata of one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Listing is the full (all pages) result of a List call, in key order.
type Listing struct {
	Objects        []ObjectInfo
	CommonPrefixes []string
}
