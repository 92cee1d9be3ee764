// Package inmemdoc provides an in-memory DocumentStore used in tests and DEV.
package inmemdoc

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

type (
	Store struct {
		mu        sync.RWMutex
		docs      map[string]json.RawMessage // written path -> marshalled value
		subs      map[int]*subscription
		nextSubID int
	}

	subscription struct {
		path string
		fn   core.SnapshotFunc
	}

	notification struct {
		fn       core.SnapshotFunc
		snapshot json.RawMessage
	}
)

var _ core.DocumentStore = (*Store)(nil)

func New() *Store {
	return &Store{
		docs: make(map[string]json.RawMessage),
		subs: make(map[int]*subscription),
	}
}

func (s *Store) Read(_ context.Context, path string, dest interface{}) (bool, error) {
	s.mu.RLock()
	raw := s.snapshotOf(path)
	s.mu.RUnlock()

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

	s.mu.Lock()
	s.deleteSubtree(path)
	s.docs[path] = raw
	notifs := s.pendingNotifications(path)
	s.mu.Unlock()

	deliver(notifs)
	return nil
}

func (s *Store) Merge(_ context.Context, path string, partial map[string]interface{}) error {
	s.mu.Lock()
	doc := make(map[string]interface{})
	if raw, ok := s.docs[path]; ok {
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.mu.Unlock()
			return errors.Wrapf(err, "decoding %s", path)
		}
	}
	for k, v := range partial {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		s.mu.Unlock()
		return errors.Wrapf(err, "encoding %s", path)
	}
	s.docs[path] = raw
	notifs := s.pendingNotifications(path)
	s.mu.Unlock()

	deliver(notifs)
	return nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	s.deleteSubtree(path)
	notifs := s.pendingNotifications(path)
	s.mu.Unlock()

	deliver(notifs)
	return nil
}

func (s *Store) List(_ context.Context, path string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := path + "/"
	children := make(map[string]json.RawMessage)
	names := make(map[string]bool)
	for p := range s.docs {
		if strings.HasPrefix(p, prefix) {
			names[strings.SplitN(p[len(prefix):], "/", 2)[0]] = true
		}
	}
	for name := range names {
		children[name] = s.snapshotOf(core.JoinPath(path, name))
	}
	return children, nil
}

func (s *Store) Subscribe(path string, fn core.SnapshotFunc) (core.Unsubscribe, error) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = &subscription{path: path, fn: fn}
	snapshot := s.snapshotOf(path)
	s.mu.Unlock()

	// initial snapshot on registration
	fn(snapshot)

	unsub := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return unsub, nil
}

// deleteSubtree removes the doc at path and everything beneath it. Callers hold mu.
func (s *Store) deleteSubtree(path string) {
	delete(s.docs, path)
	prefix := path + "/"
	for p := range s.docs {
		if strings.HasPrefix(p, prefix) {
			delete(s.docs, p)
		}
	}
}

// snapshotOf returns the full marshalled value at path: the doc itself, or
// the assembled subtree of deeper docs, or nil when absent. Callers hold mu.
func (s *Store) snapshotOf(path string) json.RawMessage {
	if raw, ok := s.docs[path]; ok {
		return raw
	}

	prefix := path + "/"
	tree := make(map[string]interface{})
	for p, raw := range s.docs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		segments := strings.Split(p[len(prefix):], "/")
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
		_ = json.Unmarshal(raw, &val)
		node[segments[len(segments)-1]] = val
	}
	if len(tree) == 0 {
		return nil
	}
	raw, _ := json.Marshal(tree)
	return raw
}

// pendingNotifications computes the snapshots owed to subscribers whose
// subtree contains (or is contained by) the changed path. Callers hold mu.
func (s *Store) pendingNotifications(changedPath string) []notification {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids) // deterministic delivery order

	var notifs []notification
	for _, id := range ids {
		sub := s.subs[id]
		if !related(sub.path, changedPath) {
			continue
		}
		notifs = append(notifs, notification{fn: sub.fn, snapshot: s.snapshotOf(sub.path)})
	}
	return notifs
}

// deliver invokes callbacks outside the store lock; callbacks must not call
// back into the store synchronously.
func deliver(notifs []notification) {
	for _, n := range notifs {
		n.fn(n.snapshot)
	}
}

func related(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}
