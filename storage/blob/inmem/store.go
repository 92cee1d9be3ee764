// Package inmemblob provides an in-memory BlobStore used in tests and DEV.
package inmemblob

import (
	"context"
	"io"
	"io/ioutil"
	"sync"

	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

type Store struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	baseURL string
}

var _ core.BlobStore = (*Store)(nil)

func New() *Store {
	return &Store{
		blobs:   make(map[string][]byte),
		baseURL: "https://blobs.invalid",
	}
}

func (s *Store) Upload(_ context.Context, path string, r io.Reader) (string, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading blob content")
	}

	s.mu.Lock()
	s.blobs[path] = data
	s.mu.Unlock()
	return s.urlOf(path), nil
}

func (s *Store) URL(_ context.Context, path string) (string, error) {
	s.mu.RLock()
	_, ok := s.blobs[path]
	s.mu.RUnlock()

	if !ok {
		return "", core.ErrBlobNotFound
	}
	return s.urlOf(path), nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[path]; !ok {
		return core.ErrBlobNotFound
	}
	delete(s.blobs, path)
	return nil
}

// Content returns the stored bytes; test helper.
func (s *Store) Content(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[path]
	return data, ok
}

func (s *Store) urlOf(path string) string {
	return s.baseURL + "/" + path
}
