package inmemdoc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func Test_Store_ReadWrite(t *testing.T) {
	s := New()

	var out string
	found, err := s.Read(ctx, "a/b", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Write(ctx, "a/b", "hello"))
	found, err = s.Read(ctx, "a/b", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hello", out)

	// reading an interior path assembles the subtree
	require.NoError(t, s.Write(ctx, "a/c/d", 1))
	var tree map[string]interface{}
	found, err = s.Read(ctx, "a", &tree)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hello", tree["b"])
	assert.Equal(t, map[string]interface{}{"d": float64(1)}, tree["c"])
}

func Test_Store_WriteReplacesSubtree(t *testing.T) {
	s := New()
	require.NoError(t, s.Write(ctx, "a/b/c", 1))
	require.NoError(t, s.Write(ctx, "a/b", "flat"))

	var out interface{}
	found, err := s.Read(ctx, "a/b", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "flat", out, "writing a path must replace the old subtree beneath it")

	found, _ = s.Read(ctx, "a/b/c", &out)
	assert.False(t, found)
}

func Test_Store_Merge(t *testing.T) {
	s := New()
	require.NoError(t, s.Write(ctx, "users/u1", map[string]interface{}{"name": "Jane", "bio": "hi"}))

	require.NoError(t, s.Merge(ctx, "users/u1", map[string]interface{}{"bio": "hello"}))

	var doc map[string]interface{}
	found, err := s.Read(ctx, "users/u1", &doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Jane", doc["name"], "merge must keep unrelated fields")
	assert.Equal(t, "hello", doc["bio"])

	// merging into a missing doc creates it
	require.NoError(t, s.Merge(ctx, "users/u2", map[string]interface{}{"name": "Poe"}))
	found, _ = s.Read(ctx, "users/u2", &doc)
	assert.True(t, found)
}

func Test_Store_DeleteAndList(t *testing.T) {
	s := New()
	require.NoError(t, s.Write(ctx, "classes/t1/s1", true))
	require.NoError(t, s.Write(ctx, "classes/t1/s2", true))
	require.NoError(t, s.Write(ctx, "classes/t2/s3", true))

	// List returns direct children only
	children, err := s.List(ctx, "classes")
	require.NoError(t, err)
	assert.Len(t, children, 2)
	assert.Contains(t, children, "t1")
	assert.Contains(t, children, "t2")

	children, err = s.List(ctx, "classes/t1")
	require.NoError(t, err)
	assert.Len(t, children, 2)

	// deleting an interior path removes the whole subtree
	require.NoError(t, s.Delete(ctx, "classes/t1"))
	children, _ = s.List(ctx, "classes/t1")
	assert.Empty(t, children)
	children, _ = s.List(ctx, "classes")
	assert.Len(t, children, 1)
}

func Test_Store_Subscribe(t *testing.T) {
	s := New()

	var snapshots []json.RawMessage
	unsub, err := s.Subscribe("classRequests/t1", func(snap json.RawMessage) {
		snapshots = append(snapshots, snap)
	})
	require.NoError(t, err)

	// initial snapshot: absent path delivers nil
	require.Len(t, snapshots, 1)
	assert.Nil(t, snapshots[0])

	// a deeper write re-delivers the whole subtree, not a delta
	require.NoError(t, s.Write(ctx, "classRequests/t1/s1", map[string]string{"status": "pending"}))
	require.Len(t, snapshots, 2)
	var tree map[string]map[string]string
	require.NoError(t, json.Unmarshal(snapshots[1], &tree))
	assert.Equal(t, "pending", tree["s1"]["status"])

	require.NoError(t, s.Write(ctx, "classRequests/t1/s2", map[string]string{"status": "pending"}))
	require.Len(t, snapshots, 3)
	tree = nil
	require.NoError(t, json.Unmarshal(snapshots[2], &tree))
	assert.Len(t, tree, 2)

	// unrelated writes do not notify
	require.NoError(t, s.Write(ctx, "classRequests/t2/s9", map[string]string{"status": "pending"}))
	assert.Len(t, snapshots, 3)

	// emptying the subtree delivers nil
	require.NoError(t, s.Delete(ctx, "classRequests/t1"))
	require.Len(t, snapshots, 4)
	assert.Nil(t, snapshots[3])

	unsub()
	require.NoError(t, s.Write(ctx, "classRequests/t1/s3", map[string]string{"status": "pending"}))
	assert.Len(t, snapshots, 4, "no delivery after unsubscribe")
}
