// Package boltdoc provides an embedded DocumentStore on top of bbolt.
// Documents live in a single bucket keyed by their slash path; subscriptions
// are tracked in-process and fired after each committed update.
package boltdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/campusconnect/backend/core"
)

type (
	Store struct {
		db     *bbolt.DB
		bucket []byte

		mu        sync.Mutex
		subs      map[int]*subscription
		nextSubID int
	}

	subscription struct {
		path string
		fn   core.SnapshotFunc
	}
)

var _ core.DocumentStore = (*Store)(nil)

func Open(conf core.StoreConfig) (*Store, error) {
	db, err := bbolt.Open(conf.Path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening document store")
	}

	bucket := []byte(conf.Bucket)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating bucket")
	}

	return &Store{
		db:     db,
		bucket: bucket,
		subs:   make(map[int]*subscription),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Read(_ context.Context, path string, dest interface{}) (bool, error) {
	var raw json.RawMessage
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw = snapshotOf(tx.Bucket(s.bucket), path)
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", path)
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.Wrapf(err, "decoding %s", path)
	}
	return true, nil
}

func (s *Store) Write(_ context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if err := deleteSubtree(b, path); err != nil {
			return err
		}
		return b.Put([]byte(path), raw)
	})
	if err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	s.notify(path)
	return nil
}

func (s *Store) Merge(_ context.Context, path string, partial map[string]interface{}) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)

		doc := make(map[string]interface{})
		if cur := b.Get([]byte(path)); cur != nil {
			if err := json.Unmarshal(cur, &doc); err != nil {
				return err
			}
		}
		for k, v := range partial {
			doc[k] = v
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return b.Put([]byte(path), raw)
	})
	if err != nil {
		return errors.Wrapf(err, "merging %s", path)
	}

	s.notify(path)
	return nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return deleteSubtree(tx.Bucket(s.bucket), path)
	})
	if err != nil {
		return errors.Wrapf(err, "deleting %s", path)
	}

	s.notify(path)
	return nil
}

func (s *Store) List(_ context.Context, path string) (map[string]json.RawMessage, error) {
	children := make(map[string]json.RawMessage)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)

		names := make(map[string]bool)
		prefix := []byte(path + "/")
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			rest := string(k[len(prefix):])
			names[strings.SplitN(rest, "/", 2)[0]] = true
		}
		for name := range names {
			children[name] = snapshotOf(b, core.JoinPath(path, name))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", path)
	}
	return children, nil
}

func (s *Store) Subscribe(path string, fn core.SnapshotFunc) (core.Unsubscribe, error) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = &subscription{path: path, fn: fn}
	s.mu.Unlock()

	// initial snapshot on registration
	var snapshot json.RawMessage
	err := s.db.View(func(tx *bbolt.Tx) error {
		snapshot = snapshotOf(tx.Bucket(s.bucket), path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "snapshotting %s", path)
	}
	fn(snapshot)

	unsub := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return unsub, nil
}

// notify delivers fresh snapshots to every subscriber whose subtree contains
// (or is contained by) the changed path. Callbacks run synchronously; they
// must not call back into the store.
func (s *Store) notify(changedPath string) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids) // deterministic delivery order
	targets := make([]*subscription, 0, len(ids))
	for _, id := range ids {
		if sub := s.subs[id]; related(sub.path, changedPath) {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		var snapshot json.RawMessage
		_ = s.db.View(func(tx *bbolt.Tx) error {
			snapshot = snapshotOf(tx.Bucket(s.bucket), sub.path)
			return nil
		})
		sub.fn(snapshot)
	}
}

func deleteSubtree(b *bbolt.Bucket, path string) error {
	if err := b.Delete([]byte(path)); err != nil {
		return err
	}
	prefix := []byte(path + "/")
	c := b.Cursor()
	var doomed [][]byte
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		doomed = append(doomed, append([]byte(nil), k...))
	}
	for _, k := range doomed {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// snapshotOf returns the full marshalled value at path: the doc itself, or
// the assembled subtree of deeper docs, or nil when absent.
func snapshotOf(b *bbolt.Bucket, path string) json.RawMessage {
	if raw := b.Get([]byte(path)); raw != nil {
		return append(json.RawMessage(nil), raw...)
	}

	prefix := []byte(path + "/")
	tree := make(map[string]interface{})
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		segments := strings.Split(string(k[len(prefix):]), "/")
		node := tree
		for _, seg := range segments[:len(segments)-1] {
			child, ok := node[seg].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[seg] = child
			}
			node = child
		}
		var val interface{}
		_ = json.Unmarshal(v, &val)
		node[segments[len(segments)-1]] = val
	}
	if len(tree) == 0 {
		return nil
	}
	raw, _ := json.Marshal(tree)
	return raw
}

func related(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}
