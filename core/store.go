package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var (
	// ErrBlobNotFound is returned by BlobStore when no blob lives at a path.
	ErrBlobNotFound = errors.New("blob not found")
)

type (
	// SnapshotFunc receives the full current value beneath a subscribed path
	// every time anything under it changes. A nil snapshot means the path was
	// deleted to empty. Snapshots replace prior state wholesale; they are
	// never deltas.
	SnapshotFunc func(snapshot json.RawMessage)

	// Unsubscribe detaches a subscription registered with Subscribe.
	Unsubscribe func()

	// DocumentStore is a keyed hierarchical store. Paths are slash-separated
	// ("classRequests/<teacherID>/<studentID>"); values are JSON documents.
	// No write coordination is provided: multi-path sequences are the
	// caller's correctness boundary.
	DocumentStore interface {
		// Read unmarshals the value at path into dest; found is false when
		// the path is absent (dest is left untouched).
		Read(ctx context.Context, path string, dest interface{}) (found bool, err error)
		// Write fully overwrites the value at path.
		Write(ctx context.Context, path string, value interface{}) error
		// Merge shallow-updates the document at path with the given fields.
		Merge(ctx context.Context, path string, partial map[string]interface{}) error
		Delete(ctx context.Context, path string) error
		// List returns the direct children of path keyed by their last
		// path segment. An absent path yields an empty map.
		List(ctx context.Context, path string) (map[string]json.RawMessage, error)
		// Subscribe registers fn for the subtree rooted at path. fn is
		// invoked with the current snapshot on registration and after every
		// change beneath path.
		Subscribe(path string, fn SnapshotFunc) (Unsubscribe, error)
	}

	// BlobStore is content storage keyed by path.
	BlobStore interface {
		// Upload stores the content read from r at path and returns a
		// retrievable URL.
		Upload(ctx context.Context, path string, r io.Reader) (url string, err error)
		// URL resolves the URL of an existing blob; ErrBlobNotFound when the
		// path no longer resolves.
		URL(ctx context.Context, path string) (string, error)
		// Delete removes the blob at path; ErrBlobNotFound when absent.
		Delete(ctx context.Context, path string) error
	}
)

// JoinPath joins path segments with "/"; empty segments are dropped.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}
