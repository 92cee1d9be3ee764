package boltdoc

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/backend/core"
)

var ctx = context.Background()

func setup(t *testing.T) *Store {
	t.Helper()
	s, err := Open(core.StoreConfig{
		Path:   filepath.Join(t.TempDir(), "test.db"),
		Bucket: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Store_roundtrip(t *testing.T) {
	s := setup(t)

	var out map[string]string
	found, err := s.Read(ctx, "users/teacher/t1", &out)
	require.NoError(t, err)
	assert.False(t, found)

	doc := map[string]string{"fullName": "Jane Poe"}
	require.NoError(t, s.Write(ctx, "users/teacher/t1", doc))

	found, err = s.Read(ctx, "users/teacher/t1", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, doc, out)

	// interior read assembles the subtree
	var tree map[string]map[string]map[string]string
	found, err = s.Read(ctx, "users", &tree)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Jane Poe", tree["teacher"]["t1"]["fullName"])

	require.NoError(t, s.Merge(ctx, "users/teacher/t1", map[string]interface{}{"bio": "hi"}))
	var merged map[string]string
	_, err = s.Read(ctx, "users/teacher/t1", &merged)
	require.NoError(t, err)
	assert.Equal(t, "Jane Poe", merged["fullName"])
	assert.Equal(t, "hi", merged["bio"])

	require.NoError(t, s.Delete(ctx, "users/teacher"))
	found, err = s.Read(ctx, "users/teacher/t1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Store_List(t *testing.T) {
	s := setup(t)
	require.NoError(t, s.Write(ctx, "classes/t1/s1", true))
	require.NoError(t, s.Write(ctx, "classes/t1/s2", true))
	require.NoError(t, s.Write(ctx, "classes/t2/s3", true))

	children, err := s.List(ctx, "classes/t1")
	require.NoError(t, err)
	assert.Len(t, children, 2)
	assert.Contains(t, children, "s1")
	assert.Contains(t, children, "s2")

	children, err = s.List(ctx, "classes")
	require.NoError(t, err)
	assert.Len(t, children, 2, "List returns direct children only")
}

func Test_Store_Subscribe(t *testing.T) {
	s := setup(t)

	var snapshots []json.RawMessage
	unsub, err := s.Subscribe("classRequests/t1", func(snap json.RawMessage) {
		snapshots = append(snapshots, snap)
	})
	require.NoError(t, err)
	defer unsub()

	require.Len(t, snapshots, 1)
	assert.Nil(t, snapshots[0])

	require.NoError(t, s.Write(ctx, "classRequests/t1/s1", map[string]string{"status": "pending"}))
	require.Len(t, snapshots, 2)
	var tree map[string]map[string]string
	require.NoError(t, json.Unmarshal(snapshots[1], &tree))
	assert.Equal(t, "pending", tree["s1"]["status"])

	require.NoError(t, s.Delete(ctx, "classRequests/t1/s1"))
	require.Len(t, snapshots, 3)
	assert.Nil(t, snapshots[2], "empty state is delivered as nil")
}
