package user

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inmemblob "github.com/campusconnect/backend/storage/blob/inmem"
	inmemdoc "github.com/campusconnect/backend/storage/document/inmem"
)

var ctx = context.Background()

func setup(t *testing.T) (Service, *inmemblob.Store) {
	t.Helper()
	blobs := inmemblob.New()
	return NewService(inmemdoc.New(), blobs), blobs
}

func Test_service_CreateGet(t *testing.T) {
	svc, _ := setup(t)

	usr, err := svc.Create(ctx, User{
		ID:       "t1",
		Email:    " Jane@Test.CD ",
		FullName: "  Jane Poe ",
		Role:     RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@test.cd", usr.Email)
	assert.Equal(t, "Jane Poe", usr.FullName)
	assert.False(t, usr.CreatedAt.IsZero())

	got, err := svc.Get(ctx, RoleTeacher, "t1")
	require.NoError(t, err)
	assert.Equal(t, usr.Email, got.Email)
	assert.True(t, got.IsTeacher())

	// profiles are namespaced by role
	_, err = svc.Get(ctx, RoleStudent, "t1")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func Test_service_Update(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Create(ctx, User{ID: "s1", Email: "s1@test.cd", FullName: "Stu Dent", Role: RoleStudent, CollegeID: "COL-1"})
	require.NoError(t, err)

	// only set fields are merged
	got, err := svc.Update(ctx, RoleStudent, "s1", UpdateProfile{Bio: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, "Stu Dent", got.FullName)
	assert.Equal(t, "COL-1", got.CollegeID)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	got, err = svc.Update(ctx, RoleStudent, "s1", UpdateProfile{FullName: "Stu A. Dent"})
	require.NoError(t, err)
	assert.Equal(t, "Stu A. Dent", got.FullName)
	assert.Equal(t, "hello", got.Bio, "merge must not clear other fields")

	_, err = svc.Update(ctx, RoleStudent, "nobody", UpdateProfile{Bio: "x"})
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func Test_service_UploadPhoto(t *testing.T) {
	svc, blobs := setup(t)
	_, err := svc.Create(ctx, User{ID: "t1", Email: "t1@test.cd", FullName: "Jane Poe", Role: RoleTeacher})
	require.NoError(t, err)

	url, err := svc.UploadPhoto(ctx, RoleTeacher, "t1", "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	got, err := svc.Get(ctx, RoleTeacher, "t1")
	require.NoError(t, err)
	assert.Equal(t, url, got.PhotoURL)

	content, ok := blobs.Content("profilePhotos/teacher/t1/me.png")
	require.True(t, ok)
	assert.Equal(t, "png-bytes", string(content))

	_, err = svc.UploadPhoto(ctx, RoleTeacher, "nobody", "me.png", strings.NewReader("x"))
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}
